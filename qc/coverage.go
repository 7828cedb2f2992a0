// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"github.com/grailbio/bamqc/genome"
	"github.com/grailbio/bamqc/histogram"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// defaultDepthCapacity is the capacity of the per-sequence depth
// distribution. Positions deeper than this are tallied as overflow rather
// than binned.
const defaultDepthCapacity = 1024

// defaultCoverageWindowSize is the per-sequence window width for windowed
// mean depths when the caller does not configure one.
const defaultCoverageWindowSize = 1000

// CoverageIgnoredMetrics records the facet-local tolerance counters:
// individually malformed data points are tallied here and never abort the
// run, unlike stream-level failures.
type CoverageIgnoredMetrics struct {
	// NonsensicalRecords counts records whose alignment span fell at least
	// partly outside the declared sequence bounds.
	NonsensicalRecords int64 `json:"nonsensical_records"`

	// OutOfRangePositions counts the individual position increments dropped
	// from those records.
	OutOfRangePositions int64 `json:"out_of_range_positions"`

	// DepthOverflowPositions counts, per sequence, positions whose depth
	// exceeded the depth distribution capacity.
	DepthOverflowPositions map[string]int64 `json:"depth_overflow_positions"`
}

// CoverageMetrics is the coverage facet's results section, keyed by
// sequence name throughout.
type CoverageMetrics struct {
	// MeanCoverage is the mean depth over every position of the sequence.
	MeanCoverage map[string]float64 `json:"mean_coverage"`

	// MedianCoverage is the median depth over every position.
	MedianCoverage map[string]float64 `json:"median_coverage"`

	// MedianOverMeanCoverage is the coverage-uniformity indicator. 0 is the
	// documented sentinel when the mean is zero (no coverage at all).
	MedianOverMeanCoverage map[string]float64 `json:"median_over_mean_coverage"`

	// MeanCoveragePerWindow holds the mean raw depth within each
	// fixed-size window, in window order. The final window may be partial
	// and is averaged only over the positions it actually contains.
	MeanCoveragePerWindow map[string][]float64 `json:"mean_coverage_per_window"`

	// CoverageDistribution maps depth to the number of positions at that
	// depth.
	CoverageDistribution map[string]*histogram.Histogram `json:"coverage_distribution"`

	Ignored CoverageIgnoredMetrics `json:"ignored"`
}

func newCoverageMetrics() *CoverageMetrics {
	return &CoverageMetrics{
		MeanCoverage:           map[string]float64{},
		MedianCoverage:         map[string]float64{},
		MedianOverMeanCoverage: map[string]float64{},
		MeanCoveragePerWindow:  map[string][]float64{},
		CoverageDistribution:   map[string]*histogram.Histogram{},
		Ignored: CoverageIgnoredMetrics{
			DepthOverflowPositions: map[string]int64{},
		},
	}
}

// CoverageFacet tallies per-position read depth for each primary-assembly
// sequence. One dense histogram sized to the current sequence is created
// lazily on first use and discarded at teardown, bounding peak memory to a
// single sequence rather than the whole genome.
type CoverageFacet struct {
	perPosition   map[string]*histogram.Histogram
	metrics       *CoverageMetrics
	primary       map[string]bool
	windowSize    int
	depthCapacity int
}

// NewCoverageFacet returns a coverage facet restricted to the primary
// assembly of g, computing windowed means with the given window size.
func NewCoverageFacet(g *genome.Genome, windowSize int) *CoverageFacet {
	if windowSize <= 0 {
		windowSize = defaultCoverageWindowSize
	}
	primary := map[string]bool{}
	for _, s := range g.PrimaryAssembly() {
		primary[s.Name()] = true
	}
	return &CoverageFacet{
		perPosition:   map[string]*histogram.Histogram{},
		metrics:       newCoverageMetrics(),
		primary:       primary,
		windowSize:    windowSize,
		depthCapacity: defaultDepthCapacity,
	}
}

// Name implements SequenceFacet.
func (f *CoverageFacet) Name() string { return "Coverage" }

// Load implements SequenceFacet.
func (f *CoverageFacet) Load() ComputationalLoad { return LoadModerate }

// SupportsSequence implements SequenceFacet.
func (f *CoverageFacet) SupportsSequence(name string) bool {
	return f.primary[name]
}

// SetupSequence implements SequenceFacet. The dense histogram is created
// lazily in ProcessRecord, so an empty sequence allocates nothing.
func (f *CoverageFacet) SetupSequence(ref *sam.Reference) error {
	return nil
}

// ProcessRecord implements SequenceFacet. Every position spanned by the
// record's alignment is incremented. Positions outside [0, ref.Len()) mean
// the record is malformed; those increments are dropped and counted, and
// processing continues - one bad record among millions must not abort the
// run.
func (f *CoverageFacet) ProcessRecord(ref *sam.Reference, rec *sam.Record) error {
	if ref.Len() <= 0 {
		f.metrics.Ignored.NonsensicalRecords++
		return nil
	}
	h, ok := f.perPosition[ref.Name()]
	if !ok {
		h = histogram.New(ref.Len())
		f.perPosition[ref.Name()] = h
	}
	var dropped int64
	for pos := rec.Start(); pos < rec.End(); pos++ {
		if err := h.Increment(pos); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		f.metrics.Ignored.NonsensicalRecords++
		f.metrics.Ignored.OutOfRangePositions += dropped
		log.Error.Printf(
			"coverage: record %s crosses the bounds of sequence %s (span %d-%d, length %d); ignoring %d positions",
			rec.Name, ref.Name(), rec.Start(), rec.End(), ref.Len(), dropped)
	}
	return nil
}

// TeardownSequence implements SequenceFacet. The raw per-position histogram
// is rebinned into a depth distribution, summarized, partitioned into
// windows, and then discarded. A sequence with zero matching records yields
// the documented 0 sentinels and an empty distribution.
func (f *CoverageFacet) TeardownSequence(ref *sam.Reference) error {
	name := ref.Name()
	positions, ok := f.perPosition[name]
	if !ok {
		f.metrics.MeanCoverage[name] = 0
		f.metrics.MedianCoverage[name] = 0
		f.metrics.MedianOverMeanCoverage[name] = 0
		f.metrics.MeanCoveragePerWindow[name] = []float64{}
		f.metrics.CoverageDistribution[name] = histogram.New(f.depthCapacity)
		return nil
	}

	depths := histogram.New(f.depthCapacity)
	var overflow int64
	windows := make([]float64, 0, ref.Len()/f.windowSize+1)
	var windowTotal int64
	windowLen := 0
	for pos := 0; pos < ref.Len(); pos++ {
		depth := positions.Get(pos)
		if err := depths.Increment(int(depth)); err != nil {
			overflow++
		}
		windowTotal += depth
		windowLen++
		if windowLen == f.windowSize {
			windows = append(windows, float64(windowTotal)/float64(windowLen))
			windowTotal = 0
			windowLen = 0
		}
	}
	// The final partial window is averaged only over the positions it
	// actually contains.
	if windowLen > 0 {
		windows = append(windows, float64(windowTotal)/float64(windowLen))
	}

	mean := depths.Mean()
	median := depths.Median()
	ratio := float64(0)
	if mean != 0 {
		ratio = median / mean
	}

	delete(f.perPosition, name)

	f.metrics.MeanCoverage[name] = mean
	f.metrics.MedianCoverage[name] = median
	f.metrics.MedianOverMeanCoverage[name] = ratio
	f.metrics.MeanCoveragePerWindow[name] = windows
	f.metrics.CoverageDistribution[name] = depths
	f.metrics.Ignored.DepthOverflowPositions[name] = overflow
	return nil
}

// Aggregate implements SequenceFacet.
func (f *CoverageFacet) Aggregate(results *Results) {
	results.Coverage = f.metrics
}
