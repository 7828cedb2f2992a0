// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
)

// BAMProvider implements Provider for BAM files. Both the BAM and the index
// path may be S3 URLs, in which case data is read from S3; otherwise from
// the local filesystem.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	// Index is the path of the *.bam.bai file. If "", Path + ".bai".
	Index string

	err errors.Once

	mu     sync.Mutex
	header *sam.Header
	index  *bam.Index
}

// NewProvider returns a Provider for the BAM file at path.
func NewProvider(path string) *BAMProvider {
	return &BAMProvider{Path: path}
}

func (b *BAMProvider) indexPath() string {
	if b.Index != "" {
		return b.Index
	}
	return b.Path + ".bai"
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header != nil {
		return b.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, b.Path)
	if err != nil {
		b.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		b.err.Set(err)
		return nil, err
	}
	defer reader.Close() // nolint: errcheck
	b.header = reader.Header()
	return b.header, nil
}

// EnsureIndex implements the Provider interface.
func (b *BAMProvider) EnsureIndex() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index != nil {
		return nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, b.indexPath())
	if err != nil {
		return fmt.Errorf("bam index %s: %v", b.indexPath(), err)
	}
	defer in.Close(ctx) // nolint: errcheck
	idx, err := bam.ReadIndex(in.Reader(ctx))
	if err != nil {
		return fmt.Errorf("bam index %s: %v", b.indexPath(), err)
	}
	b.index = idx
	return nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	return b.err.Err()
}

// NewFileIterator implements the Provider interface.
func (b *BAMProvider) NewFileIterator() Iterator {
	iter := &bamIterator{provider: b, wholeFile: true}
	iter.open()
	return iter
}

// NewRefIterator implements the Provider interface.
func (b *BAMProvider) NewRefIterator(ref *sam.Reference) Iterator {
	iter := &bamIterator{provider: b, ref: ref}
	b.mu.Lock()
	idx := b.index
	b.mu.Unlock()
	if idx == nil {
		iter.err = fmt.Errorf("bamprovider: NewRefIterator(%s) called before EnsureIndex", ref.Name())
		return iter
	}
	iter.open()
	if iter.err != nil {
		return iter
	}

	// Find the file offset of the first chunk overlapping [0, ref.Len()).
	// index.ErrInvalid means the index holds no reads for this reference;
	// the iterator is then empty rather than in error.
	chunks, err := idx.Chunks(ref, 0, ref.Len())
	if err == index.ErrInvalid || (err == nil && len(chunks) == 0) {
		iter.err = io.EOF
		return iter
	}
	if err != nil {
		iter.err = err
		return iter
	}
	iter.err = iter.reader.Seek(chunks[0].Begin)
	return iter
}

type bamIterator struct {
	provider  *BAMProvider
	wholeFile bool
	ref       *sam.Reference

	in     file.File
	reader *bam.Reader

	rec *sam.Record
	err error
}

func (i *bamIterator) open() {
	ctx := vcontext.Background()
	if i.in, i.err = file.Open(ctx, i.provider.Path); i.err != nil {
		return
	}
	i.reader, i.err = bam.NewReader(i.in.Reader(ctx), 1)
}

// Scan implements the Iterator interface. For a per-reference iterator, the
// seek above may conservatively land before the reference's first record, so
// earlier records are skipped and the scan stops at the first record past
// the reference (or at the unmapped tail, which has a nil Ref).
func (i *bamIterator) Scan() bool {
	if i.err != nil {
		return false
	}
	for {
		i.rec, i.err = i.reader.Read()
		if i.err != nil {
			return false
		}
		if i.wholeFile {
			return true
		}
		if i.rec.Ref == nil || i.rec.Ref.ID() > i.ref.ID() {
			i.err = io.EOF
			return false
		}
		if i.rec.Ref.ID() < i.ref.ID() {
			continue
		}
		return true
	}
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record {
	return i.rec
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	if i.reader != nil {
		if err := i.reader.Close(); err != nil && i.err == nil {
			i.err = err
		}
		i.reader = nil
	}
	if i.in != nil {
		if err := i.in.Close(vcontext.Background()); err != nil && i.err == nil {
			i.err = err
		}
		i.in = nil
	}
	i.provider.err.Set(i.Err())
	return i.Err()
}
