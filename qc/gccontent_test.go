// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCContentFacet(t *testing.T) {
	facet := NewGCContentFacet()

	// 50% GC, 100% GC, and one record with an ambiguous base.
	for _, seq := range []string{"ACGT", "GGCC", "CNTT"} {
		rec := newRecordSeq("r", testChr1, 0, 0, cigarM(len(seq)), seq, "####")
		require.NoError(t, facet.Process(rec))
	}
	// Secondary alignments repeat template bases and are skipped.
	require.NoError(t, facet.Process(
		newRecordSeq("sec", testChr1, 0, sam.Secondary, cigarM(4), "GGGG", "####")))
	require.NoError(t, facet.Summarize())

	m := facet.metrics
	assert.Equal(t, int64(3), m.Records.Processed)
	assert.Equal(t, int64(1), m.Records.Ignored)
	assert.Equal(t, int64(1), m.Histogram.Get(50)) // ACGT
	assert.Equal(t, int64(1), m.Histogram.Get(100))
	assert.Equal(t, int64(1), m.Histogram.Get(25)) // 1 GC base of 4 total

	assert.Equal(t, int64(7), m.Nucleobases.GC)
	assert.Equal(t, int64(4), m.Nucleobases.AT)
	assert.Equal(t, int64(1), m.Nucleobases.Other)

	require.NotNil(t, m.Summary)
	assert.InEpsilon(t, 7.0/11.0*100.0, m.Summary.GCContentPct, 1e-12)
}

func TestGCContentFacetNoSequence(t *testing.T) {
	facet := NewGCContentFacet()
	require.NoError(t, facet.Process(newRecord("r", testChr1, 0, 0, cigarM(5))))
	assert.Equal(t, int64(1), facet.metrics.Records.Ignored)
	assert.Equal(t, int64(0), facet.metrics.Records.Processed)
}
