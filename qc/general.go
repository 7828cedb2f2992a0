// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import "github.com/grailbio/hts/sam"

// GeneralRecordMetrics tallies flag composition over the whole-file scan.
type GeneralRecordMetrics struct {
	Total      int64 `json:"total"`
	Duplicate  int64 `json:"duplicate"`
	Unmapped   int64 `json:"unmapped"`
	QCFail     int64 `json:"qc_fail"`
	Paired     int64 `json:"paired"`
	Read1      int64 `json:"read_1"`
	Read2      int64 `json:"read_2"`
	ProperPair int64 `json:"proper_pair"`
}

// GeneralDesignationMetrics splits records by alignment designation.
// Exactly one of the three buckets applies to every record.
type GeneralDesignationMetrics struct {
	Primary       int64 `json:"primary"`
	Secondary     int64 `json:"secondary"`
	Supplementary int64 `json:"supplementary"`
}

// GeneralSummaryMetrics holds percentages over the records seen in phase
// one. When the scan was capped, the capped count is the denominator.
type GeneralSummaryMetrics struct {
	DuplicationPct float64 `json:"duplication_pct"`
	UnmappedPct    float64 `json:"unmapped_pct"`
}

// GeneralMetrics is the general facet's section of the results document.
type GeneralMetrics struct {
	Records     GeneralRecordMetrics      `json:"records"`
	Designation GeneralDesignationMetrics `json:"designation"`
	Summary     *GeneralSummaryMetrics    `json:"summary,omitempty"`
}

// GeneralFacet computes read-flag composition statistics.
type GeneralFacet struct {
	metrics GeneralMetrics
}

// NewGeneralFacet returns an empty general metrics facet.
func NewGeneralFacet() *GeneralFacet {
	return &GeneralFacet{}
}

// Name implements RecordFacet.
func (f *GeneralFacet) Name() string { return "General" }

// Load implements RecordFacet.
func (f *GeneralFacet) Load() ComputationalLoad { return LoadLight }

// Process implements RecordFacet.
func (f *GeneralFacet) Process(rec *sam.Record) error {
	r := &f.metrics.Records
	r.Total++
	flags := rec.Flags
	if flags&sam.Duplicate != 0 {
		r.Duplicate++
	}
	if flags&sam.Unmapped != 0 {
		r.Unmapped++
	}
	if flags&sam.QCFail != 0 {
		r.QCFail++
	}
	if flags&sam.Paired != 0 {
		r.Paired++
		if flags&sam.Read1 != 0 {
			r.Read1++
		}
		if flags&sam.Read2 != 0 {
			r.Read2++
		}
		if flags&sam.ProperPair != 0 {
			r.ProperPair++
		}
	}
	d := &f.metrics.Designation
	switch {
	case flags&sam.Secondary != 0:
		d.Secondary++
	case flags&sam.Supplementary != 0:
		d.Supplementary++
	default:
		d.Primary++
	}
	return nil
}

// Summarize implements RecordFacet. On an empty scan the percentages are 0.
func (f *GeneralFacet) Summarize() error {
	r := f.metrics.Records
	summary := &GeneralSummaryMetrics{}
	if r.Total > 0 {
		summary.DuplicationPct = float64(r.Duplicate) / float64(r.Total) * 100.0
		summary.UnmappedPct = float64(r.Unmapped) / float64(r.Total) * 100.0
	}
	f.metrics.Summary = summary
	return nil
}

// Aggregate implements RecordFacet.
func (f *GeneralFacet) Aggregate(results *Results) {
	m := f.metrics
	results.General = &m
}
