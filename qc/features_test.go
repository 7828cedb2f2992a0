// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"strings"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGFF = `chr1	test	gene	1	100	.	+	.	ID=gene:g1
chr1	test	exon	1	50	.	+	.	ID=exon:g1.1;Parent=gene:g1
chr1	test	CDS	10	40	.	+	.	ID=CDS:g1.1;Parent=gene:g1
chr1	test	five_prime_UTR	1	9	.	+	.	Parent=gene:g1
chr1	test	three_prime_UTR	41	50	.	+	.	Parent=gene:g1
chr1	test	ignored_type	1	100	.	+	.	Parent=gene:g1
`

func TestGenomicFeaturesFacet(t *testing.T) {
	facet, err := NewGenomicFeaturesFacet(strings.NewReader(testGFF), DefaultFeatureNames)
	require.NoError(t, err)

	// Within the 5' UTR and the exon, upstream of the CDS.
	require.NoError(t, facet.Process(newRecord("utr5", testChr1, 0, 0, cigarM(5))))
	// Overlapping the CDS.
	require.NoError(t, facet.Process(newRecord("cds", testChr1, 15, 0, cigarM(5))))
	// Within the 3' UTR.
	require.NoError(t, facet.Process(newRecord("utr3", testChr1, 45, 0, cigarM(5))))
	// Inside the gene but past the exon.
	require.NoError(t, facet.Process(newRecord("intron", testChr1, 60, 0, cigarM(5))))
	// Past the gene entirely.
	require.NoError(t, facet.Process(newRecord("inter", testChr1, 200, 0, cigarM(5))))
	// Unmapped records cannot be placed.
	require.NoError(t, facet.Process(newRecord("unmapped", nil, -1, sam.Unmapped, nil)))
	require.NoError(t, facet.Summarize())

	m := facet.metrics
	assert.Equal(t, int64(5), m.Records.Processed)
	assert.Equal(t, int64(1), m.Records.Skipped)
	assert.Equal(t, int64(1), m.Records.InFivePrimeUTR)
	assert.Equal(t, int64(1), m.Records.InThreePrimeUTR)
	assert.Equal(t, int64(1), m.Records.InCodingSequence)
	assert.Equal(t, int64(3), m.Records.InExon)
	assert.Equal(t, int64(4), m.Records.InGene)
	assert.Equal(t, int64(1), m.Records.Intergenic)

	require.NotNil(t, m.Summary)
	assert.Equal(t, 60.0, m.Summary.ExonicPct)
	assert.Equal(t, 20.0, m.Summary.IntergenicPct)
}

func TestGenomicFeaturesFacetEmptyAnnotation(t *testing.T) {
	facet, err := NewGenomicFeaturesFacet(strings.NewReader(""), DefaultFeatureNames)
	require.NoError(t, err)
	require.NoError(t, facet.Process(newRecord("r", testChr1, 0, 0, cigarM(5))))
	require.NoError(t, facet.Summarize())
	assert.Equal(t, int64(1), facet.metrics.Records.Intergenic)
	assert.Equal(t, 100.0, facet.metrics.Summary.IntergenicPct)
}
