// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package qc computes quality-control metrics for aligned BAM files by
// streaming records through a set of pluggable facets. Facets come in two
// capability sets: record facets consume every record of the file once
// (phase one), and sequence facets consume one indexed per-reference record
// stream at a time (phase two). Each facet owns its private accumulation
// state and deposits its final metrics into the shared Results at the end of
// the run.
package qc

import "github.com/grailbio/hts/sam"

// ComputationalLoad classifies how expensive a facet is. The value is
// reported to the operator; it never affects scheduling.
type ComputationalLoad int

const (
	// LoadLight marks facets that do trivial per-record work.
	LoadLight ComputationalLoad = iota
	// LoadModerate marks facets with per-position or lookup work.
	LoadModerate
	// LoadHeavy marks facets that compare records against external data.
	LoadHeavy
)

// String returns the operator-facing name of the load class.
func (l ComputationalLoad) String() string {
	switch l {
	case LoadLight:
		return "light"
	case LoadModerate:
		return "moderate"
	case LoadHeavy:
		return "heavy"
	}
	return "unknown"
}

// RecordFacet is an analyzer fed every record of the file during the phase
// one whole-file scan.
type RecordFacet interface {
	// Name returns the operator-facing facet name.
	Name() string

	// Load returns the facet's computational load classification.
	Load() ComputationalLoad

	// Process consumes one record. The record is owned by the caller and
	// must not be retained. An error is treated as fatal by the pipeline:
	// a facet that kept partial state after a failed record would silently
	// corrupt the final report.
	Process(rec *sam.Record) error

	// Summarize derives summary statistics from the accumulated state. It
	// is called exactly once, after the last Process call.
	Summarize() error

	// Aggregate deposits the facet's final metrics into its own section of
	// results. Infallible by contract.
	Aggregate(results *Results)
}

// SequenceFacet is an analyzer fed per-reference record streams during the
// phase two indexed scan. For each reference sequence the pipeline calls
// SetupSequence, then ProcessRecord for every matching record, then
// TeardownSequence - the teardown runs even when the sequence matched zero
// records.
type SequenceFacet interface {
	// Name returns the operator-facing facet name.
	Name() string

	// Load returns the facet's computational load classification.
	Load() ComputationalLoad

	// SupportsSequence reports whether the facet wants to see the named
	// sequence at all (e.g. primary-assembly only).
	SupportsSequence(name string) bool

	// SetupSequence prepares per-sequence state.
	SetupSequence(ref *sam.Reference) error

	// ProcessRecord consumes one record aligned to ref.
	ProcessRecord(ref *sam.Reference, rec *sam.Record) error

	// TeardownSequence finalizes and releases per-sequence state.
	TeardownSequence(ref *sam.Reference) error

	// Aggregate deposits the facet's final metrics into its own section of
	// results. Infallible by contract.
	Aggregate(results *Results)
}
