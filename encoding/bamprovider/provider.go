// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bamprovider abstracts access to an indexed BAM file for the QC
// pipeline's two traversal shapes: a whole-file scan in file order, and a
// per-reference indexed scan that yields only the records aligned to one
// reference sequence.
package bamprovider

import "github.com/grailbio/hts/sam"

// Provider hands out record iterators over one BAM file. Thread safe.
type Provider interface {
	// GetHeader returns the BAM header. The caller must not modify the
	// returned header.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// EnsureIndex verifies that the companion positional index exists and is
	// readable. It must be called before NewRefIterator; a missing or
	// corrupt index is a setup error, not a per-sequence one.
	EnsureIndex() error

	// NewFileIterator returns an iterator over every record in the file, in
	// file order, including unmapped records.
	//
	// REQUIRES: Close has not been called.
	NewFileIterator() Iterator

	// NewRefIterator returns an iterator over the records aligned to ref,
	// spanning positions [0, ref.Len()). The iterator is empty, not in
	// error, when no record aligns to ref.
	//
	// REQUIRES: EnsureIndex has succeeded, and Close has not been called.
	NewRefIterator(ref *sam.Reference) Iterator

	// Close must be called exactly once. It returns any error encountered by
	// the provider or by any iterator it created.
	//
	// REQUIRES: All iterators created by the provider have been closed.
	Close() error
}

// Iterator yields sam.Records. Thread compatible.
type Iterator interface {
	// Scan returns whether any record remains, and if so advances the
	// iterator to it. On end of range or error, Scan returns false; the two
	// cases are distinguished by Err.
	Scan() bool

	// Record returns the current record. Valid only after a Scan call that
	// returned true.
	Record() *sam.Record

	// Err returns the error encountered during iteration, or nil. An io.EOF
	// is translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}
