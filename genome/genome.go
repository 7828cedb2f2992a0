// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package genome is a registry of supported reference genomes. A Genome maps
// an identifier (e.g. "GRCh38_no_alt") to the authoritative ordered set of
// reference sequences, each with its length and a flag marking membership in
// the primary assembly (the canonical chromosomes, excluding decoys and
// unplaced contigs). The registry is read-only; one Genome instance is
// shared by reference among every consumer for the lifetime of a run.
package genome

import "strings"

// Sequence describes one reference sequence of a genome.
type Sequence struct {
	name    string
	length  int
	primary bool
}

// Name returns the sequence name, unique within its genome.
func (s Sequence) Name() string { return s.name }

// Length returns the sequence length in bases.
func (s Sequence) Length() int { return s.length }

// PrimaryAssembly reports whether the sequence is part of the primary
// assembly.
func (s Sequence) PrimaryAssembly() bool { return s.primary }

// Genome is an immutable reference genome descriptor.
type Genome struct {
	name      string
	source    string
	basis     string
	sequences []Sequence
}

// Name returns the registry identifier for the genome.
func (g *Genome) Name() string { return g.name }

// Source returns the organization that produced the assembly.
func (g *Genome) Source() string { return g.source }

// Basis returns the assembly the genome is based on.
func (g *Genome) Basis() string { return g.basis }

// Sequences returns all sequences in assembly order. The caller must not
// modify the returned slice.
func (g *Genome) Sequences() []Sequence { return g.sequences }

// PrimaryAssembly returns the subset of Sequences flagged as primary, in
// assembly order.
func (g *Genome) PrimaryAssembly() []Sequence {
	var seqs []Sequence
	for _, s := range g.sequences {
		if s.primary {
			seqs = append(seqs, s)
		}
	}
	return seqs
}

// Lookup returns the sequence with the given name.
func (g *Genome) Lookup(name string) (Sequence, bool) {
	for _, s := range g.sequences {
		if s.name == name {
			return s, true
		}
	}
	return Sequence{}, false
}

// primaryHuman builds chr1..chr22, chrX, chrY, chrM descriptors from the
// autosome lengths and the sex/mitochondrial lengths.
func primaryHuman(autosomes [22]int, x, y, m int) []Sequence {
	seqs := make([]Sequence, 0, 25)
	names := [...]string{
		"chr1", "chr2", "chr3", "chr4", "chr5", "chr6", "chr7", "chr8",
		"chr9", "chr10", "chr11", "chr12", "chr13", "chr14", "chr15",
		"chr16", "chr17", "chr18", "chr19", "chr20", "chr21", "chr22",
	}
	for i, n := range names {
		seqs = append(seqs, Sequence{n, autosomes[i], true})
	}
	seqs = append(seqs,
		Sequence{"chrX", x, true},
		Sequence{"chrY", y, true},
		Sequence{"chrM", m, true})
	return seqs
}

var grch38NoAlt = &Genome{
	name:   "GRCh38_no_alt",
	source: "NCBI",
	basis:  "GRCh38",
	sequences: append(primaryHuman([22]int{
		248956422, 242193529, 198295559, 190214555, 181538259, 170805979,
		159345973, 145138636, 138394717, 133797422, 135086622, 133275309,
		114364328, 107043718, 101991189, 90338345, 83257441, 80373285,
		58617616, 64444167, 46709983, 50818468,
	}, 156040895, 57227415, 16569),
		Sequence{"chrEBV", 171823, false}),
}

var hg19 = &Genome{
	name:   "hg19",
	source: "UCSC",
	basis:  "GRCh37",
	sequences: primaryHuman([22]int{
		249250621, 243199373, 198022430, 191154276, 180915260, 171115067,
		159138663, 146364022, 141213431, 135534747, 135006516, 133851895,
		115169878, 107349540, 102531392, 90354753, 81195210, 78077248,
		59128983, 63025520, 48129895, 51304566,
	}, 155270560, 59373566, 16571),
}

var registry = []*Genome{grch38NoAlt, hg19}

// All returns every supported genome.
func All() []*Genome {
	return registry
}

// Get returns the genome registered under name. The match is
// case-insensitive.
func Get(name string) (*Genome, bool) {
	for _, g := range registry {
		if strings.EqualFold(g.name, name) {
			return g, true
		}
	}
	return nil, false
}
