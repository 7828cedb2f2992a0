// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"github.com/grailbio/bamqc/histogram"
	"github.com/grailbio/hts/sam"
)

// gcContentBins covers integer GC percentages 0..100.
const gcContentBins = 101

// GCContentNucleobaseMetrics counts bases seen across all processed records.
type GCContentNucleobaseMetrics struct {
	GC    int64 `json:"gc"`
	AT    int64 `json:"at"`
	Other int64 `json:"other"`
}

// GCContentRecordMetrics counts processed and ignored records. Secondary
// and supplementary records, and records without sequence data, are ignored
// so each template base is counted once.
type GCContentRecordMetrics struct {
	Processed int64 `json:"processed"`
	Ignored   int64 `json:"ignored"`
}

// GCContentSummaryMetrics holds the overall GC fraction.
type GCContentSummaryMetrics struct {
	GCContentPct float64 `json:"gc_content_pct"`
}

// GCContentMetrics is the GC-content facet's results section. The histogram
// maps per-record GC percentage (0..100) to record count.
type GCContentMetrics struct {
	Histogram   *histogram.Histogram       `json:"histogram"`
	Nucleobases GCContentNucleobaseMetrics `json:"nucleobases"`
	Records     GCContentRecordMetrics     `json:"records"`
	Summary     *GCContentSummaryMetrics   `json:"summary,omitempty"`
}

// GCContentFacet computes the distribution of per-record GC content.
type GCContentFacet struct {
	metrics GCContentMetrics
}

// NewGCContentFacet returns an empty GC-content facet.
func NewGCContentFacet() *GCContentFacet {
	return &GCContentFacet{
		metrics: GCContentMetrics{Histogram: histogram.New(gcContentBins)},
	}
}

// Name implements RecordFacet.
func (f *GCContentFacet) Name() string { return "GCContent" }

// Load implements RecordFacet.
func (f *GCContentFacet) Load() ComputationalLoad { return LoadLight }

// Process implements RecordFacet.
func (f *GCContentFacet) Process(rec *sam.Record) error {
	if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
		f.metrics.Records.Ignored++
		return nil
	}
	seq := rec.Seq.Expand()
	if len(seq) == 0 {
		f.metrics.Records.Ignored++
		return nil
	}
	var gc, at int64
	for _, base := range seq {
		switch base {
		case 'G', 'C', 'g', 'c':
			gc++
		case 'A', 'T', 'a', 't':
			at++
		default:
			f.metrics.Nucleobases.Other++
		}
	}
	f.metrics.Nucleobases.GC += gc
	f.metrics.Nucleobases.AT += at
	pct := int(float64(gc) / float64(len(seq)) * 100.0)
	if err := f.metrics.Histogram.Increment(pct); err != nil {
		return err
	}
	f.metrics.Records.Processed++
	return nil
}

// Summarize implements RecordFacet.
func (f *GCContentFacet) Summarize() error {
	n := f.metrics.Nucleobases
	summary := &GCContentSummaryMetrics{}
	if acgt := n.GC + n.AT; acgt > 0 {
		summary.GCContentPct = float64(n.GC) / float64(acgt) * 100.0
	}
	f.metrics.Summary = summary
	return nil
}

// Aggregate implements RecordFacet.
func (f *GCContentFacet) Aggregate(results *Results) {
	m := f.metrics
	results.GCContent = &m
}
