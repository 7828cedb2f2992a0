// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"io"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/store/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// FeatureNames selects which GFF feature types feed each category. The
// defaults are the GENCODE names.
type FeatureNames struct {
	FivePrimeUTR   string
	ThreePrimeUTR  string
	CodingSequence string
	Exon           string
	Gene           string
}

// DefaultFeatureNames are the GENCODE GFF feature type names.
var DefaultFeatureNames = FeatureNames{
	FivePrimeUTR:   "five_prime_UTR",
	ThreePrimeUTR:  "three_prime_UTR",
	CodingSequence: "CDS",
	Exon:           "exon",
	Gene:           "gene",
}

// FeaturesRecordMetrics counts records that overlapped each feature
// category. A record can land in several categories at once; Intergenic
// means it overlapped no gene.
type FeaturesRecordMetrics struct {
	Processed        int64 `json:"processed"`
	Skipped          int64 `json:"skipped"`
	InFivePrimeUTR   int64 `json:"in_five_prime_utr"`
	InThreePrimeUTR  int64 `json:"in_three_prime_utr"`
	InCodingSequence int64 `json:"in_coding_sequence"`
	InExon           int64 `json:"in_exon"`
	InGene           int64 `json:"in_gene"`
	Intergenic       int64 `json:"intergenic"`
}

// FeaturesSummaryMetrics holds percentages over processed records.
type FeaturesSummaryMetrics struct {
	ExonicPct     float64 `json:"exonic_pct"`
	IntergenicPct float64 `json:"intergenic_pct"`
}

// FeaturesMetrics is the genomic-features facet's results section.
type FeaturesMetrics struct {
	Records FeaturesRecordMetrics   `json:"records"`
	Summary *FeaturesSummaryMetrics `json:"summary,omitempty"`
}

// featureInterval is a [start, end) interval stored in a biogo interval
// tree.
type featureInterval struct {
	start, end int
	id         uintptr
}

func (i featureInterval) Overlap(b interval.IntRange) bool {
	return i.start < b.End && i.end > b.Start
}
func (i featureInterval) ID() uintptr              { return i.id }
func (i featureInterval) Range() interval.IntRange { return interval.IntRange{Start: i.start, End: i.end} }

// GenomicFeaturesFacet classifies records by overlap with annotated genomic
// features. The annotation is loaded once into per-sequence interval trees;
// each record costs one tree query per category.
type GenomicFeaturesFacet struct {
	names   FeatureNames
	trees   map[string]map[string]*interval.IntTree
	metrics FeaturesMetrics
}

// NewGenomicFeaturesFacet builds a features facet from GFF data. Feature
// lines whose type matches none of the configured names are skipped.
func NewGenomicFeaturesFacet(r io.Reader, names FeatureNames) (*GenomicFeaturesFacet, error) {
	f := &GenomicFeaturesFacet{
		names: names,
		trees: map[string]map[string]*interval.IntTree{
			names.FivePrimeUTR:   {},
			names.ThreePrimeUTR:  {},
			names.CodingSequence: {},
			names.Exon:           {},
			names.Gene:           {},
		},
	}
	reader := gff.NewReader(r)
	var nextID uintptr
	for {
		feat, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.E(err, "reading features GFF")
		}
		gf, ok := feat.(*gff.Feature)
		if !ok {
			continue
		}
		bySeq, ok := f.trees[gf.Feature]
		if !ok {
			continue
		}
		tree := bySeq[gf.SeqName]
		if tree == nil {
			tree = &interval.IntTree{}
			bySeq[gf.SeqName] = tree
		}
		iv := featureInterval{start: gf.FeatStart, end: gf.FeatEnd, id: nextID}
		nextID++
		if err := tree.Insert(iv, true); err != nil {
			return nil, errors.E(err, "inserting feature interval")
		}
	}
	for _, bySeq := range f.trees {
		for _, tree := range bySeq {
			tree.AdjustRanges()
		}
	}
	return f, nil
}

// Name implements RecordFacet.
func (f *GenomicFeaturesFacet) Name() string { return "GenomicFeatures" }

// Load implements RecordFacet.
func (f *GenomicFeaturesFacet) Load() ComputationalLoad { return LoadModerate }

// Process implements RecordFacet.
func (f *GenomicFeaturesFacet) Process(rec *sam.Record) error {
	if rec.Ref == nil || rec.Flags&sam.Unmapped != 0 {
		f.metrics.Records.Skipped++
		return nil
	}
	q := featureInterval{start: rec.Start(), end: rec.End()}
	seqName := rec.Ref.Name()
	r := &f.metrics.Records
	r.Processed++
	if f.overlaps(f.names.FivePrimeUTR, seqName, q) {
		r.InFivePrimeUTR++
	}
	if f.overlaps(f.names.ThreePrimeUTR, seqName, q) {
		r.InThreePrimeUTR++
	}
	if f.overlaps(f.names.CodingSequence, seqName, q) {
		r.InCodingSequence++
	}
	if f.overlaps(f.names.Exon, seqName, q) {
		r.InExon++
	}
	if f.overlaps(f.names.Gene, seqName, q) {
		r.InGene++
	} else {
		r.Intergenic++
	}
	return nil
}

func (f *GenomicFeaturesFacet) overlaps(kind, seqName string, q featureInterval) bool {
	tree := f.trees[kind][seqName]
	return tree != nil && len(tree.Get(q)) > 0
}

// Summarize implements RecordFacet.
func (f *GenomicFeaturesFacet) Summarize() error {
	r := f.metrics.Records
	summary := &FeaturesSummaryMetrics{}
	if r.Processed > 0 {
		summary.ExonicPct = float64(r.InExon) / float64(r.Processed) * 100.0
		summary.IntergenicPct = float64(r.Intergenic) / float64(r.Processed) * 100.0
	}
	f.metrics.Summary = summary
	return nil
}

// Aggregate implements RecordFacet.
func (f *GenomicFeaturesFacet) Aggregate(results *Results) {
	m := f.metrics
	results.Features = &m
}
