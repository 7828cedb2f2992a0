// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	g, ok := Get("GRCh38_no_alt")
	require.True(t, ok)
	assert.Equal(t, "GRCh38_no_alt", g.Name())
	assert.Equal(t, "GRCh38", g.Basis())

	_, ok = Get("grch38_no_alt")
	assert.True(t, ok, "lookup is case-insensitive")

	_, ok = Get("TAIR10")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	g, ok := Get("hg19")
	require.True(t, ok)

	chr1, ok := g.Lookup("chr1")
	require.True(t, ok)
	assert.Equal(t, 249250621, chr1.Length())
	assert.True(t, chr1.PrimaryAssembly())

	_, ok = g.Lookup("chr23")
	assert.False(t, ok)
}

func TestPrimaryAssemblyExcludesDecoys(t *testing.T) {
	g, ok := Get("GRCh38_no_alt")
	require.True(t, ok)

	ebv, ok := g.Lookup("chrEBV")
	require.True(t, ok)
	assert.False(t, ebv.PrimaryAssembly())

	for _, s := range g.PrimaryAssembly() {
		assert.True(t, s.PrimaryAssembly())
		assert.NotEqual(t, "chrEBV", s.Name())
	}
	assert.Len(t, g.PrimaryAssembly(), 25)
	assert.Len(t, g.Sequences(), 26)
}

func TestSequencesOrdered(t *testing.T) {
	g, ok := Get("hg19")
	require.True(t, ok)
	seqs := g.Sequences()
	require.NotEmpty(t, seqs)
	assert.Equal(t, "chr1", seqs[0].Name())
	assert.Equal(t, "chrM", seqs[len(seqs)-1].Name())
}
