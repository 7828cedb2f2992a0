// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import "github.com/grailbio/hts/sam"

// fakeProvider is only for unittests. It yields the given records.
type fakeProvider struct {
	header   *sam.Header
	recs     []*sam.Record
	indexErr error
}

// NewFakeProvider creates a provider that returns header from GetHeader and
// recs (in the given order) from NewFileIterator. NewRefIterator yields the
// subset of recs aligned to the requested reference.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	return &fakeProvider{header: header, recs: recs}
}

// NewFakeProviderMissingIndex creates a fake provider whose EnsureIndex
// fails with indexErr, for exercising the missing-index setup path.
func NewFakeProviderMissingIndex(header *sam.Header, indexErr error) Provider {
	return &fakeProvider{header: header, indexErr: indexErr}
}

// GetHeader implements the Provider interface.
func (b *fakeProvider) GetHeader() (*sam.Header, error) {
	return b.header, nil
}

// EnsureIndex implements the Provider interface.
func (b *fakeProvider) EnsureIndex() error {
	return b.indexErr
}

// NewFileIterator implements the Provider interface.
func (b *fakeProvider) NewFileIterator() Iterator {
	return &fakeIterator{recs: b.recs}
}

// NewRefIterator implements the Provider interface.
func (b *fakeProvider) NewRefIterator(ref *sam.Reference) Iterator {
	var recs []*sam.Record
	for _, r := range b.recs {
		if r.Ref != nil && r.Ref.ID() == ref.ID() {
			recs = append(recs, r)
		}
	}
	return &fakeIterator{recs: recs}
}

// Close implements the Provider interface.
func (b *fakeProvider) Close() error {
	return nil
}

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record
}

func (i *fakeIterator) Scan() bool {
	if len(i.recs) == 0 {
		return false
	}
	i.rec, i.recs = i.recs[0], i.recs[1:]
	return true
}

func (i *fakeIterator) Record() *sam.Record { return i.rec }
func (i *fakeIterator) Err() error          { return nil }
func (i *fakeIterator) Close() error        { return nil }
