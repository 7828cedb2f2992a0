// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package fasta reads FASTA-formatted reference sequence data. FASTA files
// consist of named sequences, each possibly wrapped over multiple lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// A sequence name is the stretch of characters after '>' up to the first
// space; any trailing description is ignored. The whole file is held in
// memory, which is acceptable for the edit-lookup use case (one reference
// genome per run, read once, shared read-only).
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const scanBufSize = 64 * 1024 * 1024

// Fasta provides random access to a set of named sequences.
type Fasta interface {
	// Get returns the bases of sequence seqName in the 0-based half-open
	// range [start, end). Get is thread-safe.
	Get(seqName string, start, end int) (string, error)

	// Len returns the length of the named sequence.
	Len(seqName string) (int, error)

	// SeqNames returns all sequence names in file order.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all FASTA data from r into memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, scanBufSize)
	var name string
	var seq strings.Builder
	flush := func() error {
		if name == "" {
			if seq.Len() != 0 {
				return errors.New("malformed FASTA: sequence data before any '>' header")
			}
			return nil
		}
		if _, ok := f.seqs[name]; ok {
			return errors.Errorf("malformed FASTA: duplicate sequence %s", name)
		}
		f.seqs[name] = seq.String()
		f.seqNames = append(f.seqNames, name)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.SplitN(line[1:], " ", 2)[0]
			if name == "" {
				return nil, errors.New("malformed FASTA: empty sequence name")
			}
			continue
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(f.seqNames) == 0 {
		return nil, errors.New("malformed FASTA: no sequences")
	}
	return f, nil
}

// Get implements Fasta.Get.
func (f *fasta) Get(seqName string, start, end int) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if start < 0 || end <= start || end > len(s) {
		return "", errors.Errorf("invalid range [%d, %d) for sequence %s of length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len.
func (f *fasta) Len(seqName string) (int, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return len(s), nil
}

// SeqNames implements Fasta.SeqNames.
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
