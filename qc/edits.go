// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"github.com/grailbio/bamqc/encoding/fasta"
	"github.com/grailbio/bamqc/histogram"
	"github.com/grailbio/hts/sam"
)

// editsBins bounds the per-record edit histograms; a record with more edits
// of one kind than this is tallied as ignored.
const editsBins = 512

// EditsRecordMetrics counts how records moved through the edits facet.
// Skipped covers unmapped, secondary, supplementary, and sequence-less
// records; RefLookupFailures covers records whose span could not be fetched
// from the reference FASTA (e.g. the header declares a longer sequence than
// the FASTA holds).
type EditsRecordMetrics struct {
	Processed         int64 `json:"processed"`
	Skipped           int64 `json:"skipped"`
	Ignored           int64 `json:"ignored"`
	RefLookupFailures int64 `json:"ref_lookup_failures"`
}

// EditsMetrics is the edits facet's results section: distributions of
// per-record mismatch, inserted-base, and deleted-base counts against the
// reference.
type EditsMetrics struct {
	Mismatches *histogram.Histogram `json:"mismatches"`
	Insertions *histogram.Histogram `json:"insertions"`
	Deletions  *histogram.Histogram `json:"deletions"`
	Records    EditsRecordMetrics   `json:"records"`
}

// EditsFacet compares aligned bases against a reference FASTA, walking each
// record's CIGAR. It is the heavyweight facet of the default set: every
// aligned base triggers a reference comparison.
type EditsFacet struct {
	ref     fasta.Fasta
	metrics EditsMetrics
}

// NewEditsFacet returns an edits facet reading reference bases from ref.
func NewEditsFacet(ref fasta.Fasta) *EditsFacet {
	return &EditsFacet{
		ref: ref,
		metrics: EditsMetrics{
			Mismatches: histogram.New(editsBins),
			Insertions: histogram.New(editsBins),
			Deletions:  histogram.New(editsBins),
		},
	}
}

// Name implements SequenceFacet.
func (f *EditsFacet) Name() string { return "Edits" }

// Load implements SequenceFacet.
func (f *EditsFacet) Load() ComputationalLoad { return LoadHeavy }

// SupportsSequence implements SequenceFacet. Only sequences present in the
// FASTA can be compared.
func (f *EditsFacet) SupportsSequence(name string) bool {
	_, err := f.ref.Len(name)
	return err == nil
}

// SetupSequence implements SequenceFacet.
func (f *EditsFacet) SetupSequence(ref *sam.Reference) error { return nil }

// ProcessRecord implements SequenceFacet.
func (f *EditsFacet) ProcessRecord(ref *sam.Reference, rec *sam.Record) error {
	if rec.Flags&(sam.Unmapped|sam.Secondary|sam.Supplementary) != 0 {
		f.metrics.Records.Skipped++
		return nil
	}
	seq := rec.Seq.Expand()
	if len(seq) == 0 {
		f.metrics.Records.Skipped++
		return nil
	}

	var mismatches, insertions, deletions int
	qpos := 0
	rpos := rec.Pos
	for _, op := range rec.Cigar {
		length := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if qpos+length > len(seq) {
				f.metrics.Records.Ignored++
				return nil
			}
			refBases, err := f.ref.Get(ref.Name(), rpos, rpos+length)
			if err != nil {
				f.metrics.Records.RefLookupFailures++
				return nil
			}
			for i := 0; i < length; i++ {
				if !basesEqual(seq[qpos+i], refBases[i]) {
					mismatches++
				}
			}
			qpos += length
			rpos += length
		case sam.CigarInsertion:
			insertions += length
			qpos += length
		case sam.CigarDeletion:
			deletions += length
			rpos += length
		case sam.CigarSkipped:
			rpos += length
		case sam.CigarSoftClipped:
			qpos += length
		}
	}

	// Checked up front so a failed increment can't leave the three
	// histograms out of step with each other.
	if mismatches >= editsBins || insertions >= editsBins || deletions >= editsBins {
		f.metrics.Records.Ignored++
		return nil
	}
	if err := f.metrics.Mismatches.Increment(mismatches); err != nil {
		return err
	}
	if err := f.metrics.Insertions.Increment(insertions); err != nil {
		return err
	}
	if err := f.metrics.Deletions.Increment(deletions); err != nil {
		return err
	}
	f.metrics.Records.Processed++
	return nil
}

// TeardownSequence implements SequenceFacet. The facet accumulates across
// sequences, so there is no per-sequence state to release.
func (f *EditsFacet) TeardownSequence(ref *sam.Reference) error { return nil }

// Aggregate implements SequenceFacet.
func (f *EditsFacet) Aggregate(results *Results) {
	m := f.metrics
	results.Edits = &m
}

func basesEqual(a, b byte) bool {
	return upperBase(a) == upperBase(b)
}

func upperBase(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
