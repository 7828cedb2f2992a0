// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"errors"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProvider(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 100, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 200, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)

	newRec := func(name string, ref *sam.Reference, pos int) *sam.Record {
		r := sam.GetFromFreePool()
		r.Name = name
		r.Ref = ref
		r.Pos = pos
		return r
	}
	recs := []*sam.Record{
		newRec("a", chr1, 0),
		newRec("b", chr2, 5),
		newRec("c", chr1, 10),
	}
	p := NewFakeProvider(header, recs)

	got, err := p.GetHeader()
	require.NoError(t, err)
	assert.Equal(t, header, got)
	require.NoError(t, p.EnsureIndex())

	var names []string
	iter := p.NewFileIterator()
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	require.NoError(t, iter.Err())
	require.NoError(t, iter.Close())
	assert.Equal(t, []string{"a", "b", "c"}, names)

	names = nil
	iter = p.NewRefIterator(chr1)
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	require.NoError(t, iter.Close())
	assert.Equal(t, []string{"a", "c"}, names)

	iter = p.NewRefIterator(chr2)
	require.True(t, iter.Scan())
	assert.Equal(t, "b", iter.Record().Name)
	assert.False(t, iter.Scan())
	require.NoError(t, iter.Close())

	require.NoError(t, p.Close())
}

func TestFakeProviderMissingIndex(t *testing.T) {
	header, err := sam.NewHeader(nil, nil)
	require.NoError(t, err)
	indexErr := errors.New("no index")
	p := NewFakeProviderMissingIndex(header, indexErr)
	assert.Equal(t, indexErr, p.EnsureIndex())
}
