// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"github.com/grailbio/bamqc/histogram"
	"github.com/grailbio/hts/sam"
)

// defaultTemplateLengthCapacity bounds the template length histogram;
// absolute template lengths at or beyond it are tallied as ignored.
const defaultTemplateLengthCapacity = 1024

// TemplateLengthRecordMetrics splits the scanned records into those whose
// template length fit the histogram and those that fell outside it.
type TemplateLengthRecordMetrics struct {
	Processed int64 `json:"processed"`
	Ignored   int64 `json:"ignored"`
}

// TemplateLengthSummaryMetrics holds the derived percentages. Unknown means
// template length zero (unpaired or mate-missing records).
type TemplateLengthSummaryMetrics struct {
	UnknownPct    float64 `json:"template_length_unknown_pct"`
	OutOfRangePct float64 `json:"template_length_out_of_range_pct"`
}

// TemplateLengthMetrics is the template-length facet's results section. The
// histogram maps absolute template length to record count, up to the
// configured threshold.
type TemplateLengthMetrics struct {
	Histogram *histogram.Histogram          `json:"histogram"`
	Records   TemplateLengthRecordMetrics   `json:"records"`
	Summary   *TemplateLengthSummaryMetrics `json:"summary,omitempty"`
}

// TemplateLengthFacet tallies the distribution of inferred insert sizes.
// Leftward-pointing mates carry a negative template length for the same
// template, so lengths are folded to their absolute value before binning.
type TemplateLengthFacet struct {
	metrics TemplateLengthMetrics
}

// NewTemplateLengthFacet returns a template-length facet with the given
// histogram capacity; capacity <= 0 selects the default (1024).
func NewTemplateLengthFacet(capacity int) *TemplateLengthFacet {
	if capacity <= 0 {
		capacity = defaultTemplateLengthCapacity
	}
	return &TemplateLengthFacet{
		metrics: TemplateLengthMetrics{Histogram: histogram.New(capacity)},
	}
}

// Name implements RecordFacet.
func (f *TemplateLengthFacet) Name() string { return "TemplateLength" }

// Load implements RecordFacet.
func (f *TemplateLengthFacet) Load() ComputationalLoad { return LoadLight }

// Process implements RecordFacet.
func (f *TemplateLengthFacet) Process(rec *sam.Record) error {
	length := rec.TempLen
	if length < 0 {
		length = -length
	}
	switch err := f.metrics.Histogram.Increment(length); err {
	case nil:
		f.metrics.Records.Processed++
	case histogram.ErrBinOutOfRange:
		f.metrics.Records.Ignored++
	default:
		return err
	}
	return nil
}

// Summarize implements RecordFacet.
func (f *TemplateLengthFacet) Summarize() error {
	total := f.metrics.Records.Processed + f.metrics.Records.Ignored
	summary := &TemplateLengthSummaryMetrics{}
	if total > 0 {
		summary.UnknownPct = float64(f.metrics.Histogram.Get(0)) / float64(total) * 100.0
		summary.OutOfRangePct = float64(f.metrics.Records.Ignored) / float64(total) * 100.0
	}
	f.metrics.Summary = summary
	return nil
}

// Aggregate implements RecordFacet.
func (f *TemplateLengthFacet) Aggregate(results *Results) {
	m := f.metrics
	results.TemplateLength = &m
}
