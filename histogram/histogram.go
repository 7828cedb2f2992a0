// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package histogram provides fixed-capacity, zero-based histograms over
// non-negative integer observations. Two usage shapes share the one
// mechanism: a large dense histogram sized to a reference sequence (one bin
// per genomic position) and a small capped histogram for scalar metrics such
// as template length. Sum of all bin counts always equals the number of
// successful Increment calls.
package histogram

import (
	"encoding/json"
	"errors"
)

// ErrBinOutOfRange is returned by Increment when the value does not fall
// within [0, capacity). The histogram state is unchanged in that case; the
// caller decides whether the event counts as "ignored".
var ErrBinOutOfRange = errors.New("histogram: bin out of range")

// Histogram is a fixed-capacity counter array indexed by non-negative
// integer value. The zero value is not usable; construct with New.
// Not thread safe.
type Histogram struct {
	bins  []int64
	total int64

	// First and last bin ever touched. Valid only when total > 0. Consumers
	// use these to walk only the populated sub-range of a large, mostly
	// empty histogram.
	rangeStart int
	rangeStop  int
}

// New returns a histogram with bins [0, capacity).
func New(capacity int) *Histogram {
	if capacity <= 0 {
		panic("histogram: capacity must be positive")
	}
	return &Histogram{bins: make([]int64, capacity)}
}

// Capacity returns the number of bins.
func (h *Histogram) Capacity() int {
	return len(h.bins)
}

// Increment adds one to the bin at index value. Values at or beyond the
// capacity (or negative) fail with ErrBinOutOfRange and leave every bin
// unchanged.
func (h *Histogram) Increment(value int) error {
	if value < 0 || value >= len(h.bins) {
		return ErrBinOutOfRange
	}
	if h.total == 0 || value < h.rangeStart {
		h.rangeStart = value
	}
	if h.total == 0 || value > h.rangeStop {
		h.rangeStop = value
	}
	h.bins[value]++
	h.total++
	return nil
}

// Get returns the count at bin, or 0 for any bin never touched. Out-of-range
// bins also read as 0.
func (h *Histogram) Get(bin int) int64 {
	if bin < 0 || bin >= len(h.bins) {
		return 0
	}
	return h.bins[bin]
}

// TotalCount returns the number of successful increments.
func (h *Histogram) TotalCount() int64 {
	return h.total
}

// RangeStart returns the smallest bin index ever incremented, or 0 if the
// histogram is empty.
func (h *Histogram) RangeStart() int {
	if h.total == 0 {
		return 0
	}
	return h.rangeStart
}

// RangeStop returns the largest bin index ever incremented, or 0 if the
// histogram is empty.
func (h *Histogram) RangeStop() int {
	if h.total == 0 {
		return 0
	}
	return h.rangeStop
}

// Mean returns the count-weighted average bin index. An empty histogram has
// no defined mean; 0 is returned as the documented sentinel (not NaN, so the
// value survives JSON encoding).
func (h *Histogram) Mean() float64 {
	if h.total == 0 {
		return 0
	}
	var sum int64
	for i := h.rangeStart; i <= h.rangeStop; i++ {
		sum += int64(i) * h.bins[i]
	}
	return float64(sum) / float64(h.total)
}

// Median returns the smallest bin index at which the cumulative count
// reaches ceil(total/2). For an even total this picks the lower of the two
// middle observations; the tie-break is part of the contract. An empty
// histogram returns the 0 sentinel.
func (h *Histogram) Median() float64 {
	if h.total == 0 {
		return 0
	}
	half := (h.total + 1) / 2
	var cum int64
	for i := h.rangeStart; i <= h.rangeStop; i++ {
		cum += h.bins[i]
		if cum >= half {
			return float64(i)
		}
	}
	// Unreachable: cum equals total at rangeStop.
	return float64(h.rangeStop)
}

type histogramJSON struct {
	Capacity   int           `json:"capacity"`
	TotalCount int64         `json:"total_count"`
	RangeStart int           `json:"range_start"`
	RangeStop  int           `json:"range_stop"`
	Counts     map[int]int64 `json:"counts"`
}

// MarshalJSON emits a self-describing sparse form: capacity, populated
// range, and a value→count map holding only nonzero bins.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	counts := map[int]int64{}
	if h.total > 0 {
		for i := h.rangeStart; i <= h.rangeStop; i++ {
			if h.bins[i] != 0 {
				counts[i] = h.bins[i]
			}
		}
	}
	return json.Marshal(histogramJSON{
		Capacity:   len(h.bins),
		TotalCount: h.total,
		RangeStart: h.RangeStart(),
		RangeStop:  h.RangeStop(),
		Counts:     counts,
	})
}
