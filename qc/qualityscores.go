// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"github.com/grailbio/bamqc/histogram"
	"github.com/grailbio/hts/sam"
)

// qualityScoreBins covers Phred scores 0..93, the printable range of the
// BAM QUAL field.
const qualityScoreBins = 94

// missingQual is the BAM sentinel for "quality unavailable" (0xff fill).
const missingQual = 0xff

// QualityScoreRecordMetrics counts processed and ignored records. Records
// without base qualities are ignored.
type QualityScoreRecordMetrics struct {
	Processed int64 `json:"processed"`
	Ignored   int64 `json:"ignored"`
}

// QualityScoreSummaryMetrics summarizes the mean-quality distribution.
type QualityScoreSummaryMetrics struct {
	MeanQuality   float64 `json:"mean_quality"`
	MedianQuality float64 `json:"median_quality"`
}

// QualityScoreMetrics is the quality-scores facet's results section. The
// histogram maps each record's rounded mean base quality to record count.
type QualityScoreMetrics struct {
	Histogram *histogram.Histogram        `json:"histogram"`
	Records   QualityScoreRecordMetrics   `json:"records"`
	Summary   *QualityScoreSummaryMetrics `json:"summary,omitempty"`
}

// QualityScoreFacet computes the distribution of per-record mean base
// quality.
type QualityScoreFacet struct {
	metrics QualityScoreMetrics
}

// NewQualityScoreFacet returns an empty quality-scores facet.
func NewQualityScoreFacet() *QualityScoreFacet {
	return &QualityScoreFacet{
		metrics: QualityScoreMetrics{Histogram: histogram.New(qualityScoreBins)},
	}
}

// Name implements RecordFacet.
func (f *QualityScoreFacet) Name() string { return "QualityScores" }

// Load implements RecordFacet.
func (f *QualityScoreFacet) Load() ComputationalLoad { return LoadLight }

// Process implements RecordFacet.
func (f *QualityScoreFacet) Process(rec *sam.Record) error {
	qual := rec.Qual
	if len(qual) == 0 || qual[0] == missingQual {
		f.metrics.Records.Ignored++
		return nil
	}
	var sum int64
	for _, q := range qual {
		sum += int64(q)
	}
	mean := int((float64(sum) / float64(len(qual))) + 0.5)
	switch err := f.metrics.Histogram.Increment(mean); err {
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
func (f *QualityScoreFacet) Summarize() error {
	f.metrics.Summary = &QualityScoreSummaryMetrics{
		MeanQuality:   f.metrics.Histogram.Mean(),
		MedianQuality: f.metrics.Histogram.Median(),
	}
	return nil
}

// Aggregate implements RecordFacet.
func (f *QualityScoreFacet) Aggregate(results *Results) {
	m := f.metrics
	results.QualityScores = &m
}
