// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"context"
	"fmt"

	"github.com/grailbio/bamqc/encoding/bamprovider"
	"github.com/grailbio/bamqc/encoding/fasta"
	"github.com/grailbio/bamqc/genome"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

const progressInterval = 1000000

// Opts configures a QC run.
type Opts struct {
	// ReferenceGenome is the registry identifier of the genome the file was
	// aligned against. Required.
	ReferenceGenome string

	// BamIndexPath is the BAM index path. Defaults to the BAM path + ".bai".
	BamIndexPath string

	// ReferenceFasta optionally enables the edits facet.
	ReferenceFasta string

	// FeaturesGFF optionally enables the genomic-features facet.
	FeaturesGFF string

	// FeatureNames selects the GFF feature type names for the features
	// facet.
	FeatureNames FeatureNames

	// OutputDir is the directory the result documents are written to.
	OutputDir string

	// OutputPrefix is the filename prefix of the result documents.
	OutputPrefix string

	// NumRecords caps the number of records processed in phase one.
	// Reaching the cap is a normal stop, not an error, and the capped count
	// becomes the denominator for summarized percentages. Values <= 0
	// disable the cap.
	NumRecords int64

	// WindowSize is the coverage facet's window width, in positions.
	WindowSize int
}

// DefaultOpts hold the default QC options.
var DefaultOpts = Opts{
	FeatureNames: DefaultFeatureNames,
	OutputDir:    ".",
	OutputPrefix: "bamqc",
	NumRecords:   -1,
	WindowSize:   1000,
}

// QC runs the full two-phase pipeline over the BAM file at bamPath and
// writes one results document per facet category.
//
// The pipeline is single-threaded by design: facets run in fixed
// registration order per record and share no state until aggregation, so
// the observable results are independent of any future parallel schedule.
func QC(ctx context.Context, bamPath string, opts Opts) error {
	g, ok := genome.Get(opts.ReferenceGenome)
	if !ok {
		return fmt.Errorf(
			"unsupported reference genome %q (use -list-genomes to see the supported set)",
			opts.ReferenceGenome)
	}

	provider := &bamprovider.BAMProvider{Path: bamPath, Index: opts.BamIndexPath}
	header, err := provider.GetHeader()
	if err != nil {
		return err
	}
	if err := validateReferences(header, g); err != nil {
		return err
	}

	// Phase one: whole-file scan.
	recordFacets, err := buildRecordFacets(ctx, &opts)
	if err != nil {
		return err
	}
	log.Printf("first pass with the following facets enabled:")
	for _, f := range recordFacets {
		log.Printf(" [*] %s (%s)", f.Name(), f.Load())
	}
	count, err := runRecordScan(provider, recordFacets, opts.NumRecords)
	if err != nil {
		return err
	}
	log.Printf("processed %d records in the first pass", count)
	for _, f := range recordFacets {
		if err := f.Summarize(); err != nil {
			return errors.E(err, "summarizing facet:", f.Name())
		}
	}

	// Phase two: indexed per-sequence scan. A missing index is a setup
	// error, surfaced before any per-sequence work starts.
	if err := provider.EnsureIndex(); err != nil {
		return err
	}
	sequenceFacets, err := buildSequenceFacets(ctx, g, &opts)
	if err != nil {
		return err
	}
	log.Printf("second pass with the following facets enabled:")
	for _, f := range sequenceFacets {
		log.Printf(" [*] %s (%s)", f.Name(), f.Load())
	}
	if err := runSequenceScan(provider, header, sequenceFacets); err != nil {
		return err
	}

	results := &Results{}
	for _, f := range recordFacets {
		f.Aggregate(results)
	}
	for _, f := range sequenceFacets {
		f.Aggregate(results)
	}
	if err := results.Write(ctx, opts.OutputDir, opts.OutputPrefix); err != nil {
		return err
	}
	return provider.Close()
}

// validateReferences checks that every sequence the file declares exists in
// the genome registry entry. A mismatch means the file was aligned against
// a different reference, which would invalidate every downstream statistic.
func validateReferences(header *sam.Header, g *genome.Genome) error {
	for _, ref := range header.Refs() {
		if _, ok := g.Lookup(ref.Name()); !ok {
			return fmt.Errorf(
				"sequence %q not found in reference genome %s; was the file aligned against a different reference?",
				ref.Name(), g.Name())
		}
	}
	return nil
}

// buildRecordFacets constructs the phase-one facets in their fixed
// registration order. The genomic-features facet joins the set only when a
// GFF file is configured.
func buildRecordFacets(ctx context.Context, opts *Opts) ([]RecordFacet, error) {
	facets := []RecordFacet{
		NewGeneralFacet(),
		NewTemplateLengthFacet(defaultTemplateLengthCapacity),
		NewGCContentFacet(),
		NewQualityScoreFacet(),
	}
	if opts.FeaturesGFF != "" {
		in, err := file.Open(ctx, opts.FeaturesGFF)
		if err != nil {
			return nil, errors.E(err, "opening features GFF:", opts.FeaturesGFF)
		}
		defer in.Close(ctx) // nolint: errcheck
		features, err := NewGenomicFeaturesFacet(in.Reader(ctx), opts.FeatureNames)
		if err != nil {
			return nil, err
		}
		facets = append(facets, features)
	}
	return facets, nil
}

// buildSequenceFacets constructs the phase-two facets in their fixed
// registration order. The edits facet joins the set only when a reference
// FASTA is configured.
func buildSequenceFacets(ctx context.Context, g *genome.Genome, opts *Opts) ([]SequenceFacet, error) {
	facets := []SequenceFacet{
		NewCoverageFacet(g, opts.WindowSize),
	}
	if opts.ReferenceFasta != "" {
		in, err := file.Open(ctx, opts.ReferenceFasta)
		if err != nil {
			return nil, errors.E(err, "opening reference FASTA:", opts.ReferenceFasta)
		}
		defer in.Close(ctx) // nolint: errcheck
		ref, err := fasta.New(in.Reader(ctx))
		if err != nil {
			return nil, err
		}
		facets = append(facets, NewEditsFacet(ref))
	}
	return facets, nil
}

// runRecordScan streams every record once, in file order, through each
// facet in registration order. A facet error or a stream read error aborts
// the scan: a corrupt stream, or a facet with partial state, would silently
// corrupt the final report. Returns the number of records processed.
func runRecordScan(provider bamprovider.Provider, facets []RecordFacet, numRecords int64) (int64, error) {
	iter := provider.NewFileIterator()
	var count int64
	for iter.Scan() {
		rec := iter.Record()
		for _, f := range facets {
			if err := f.Process(rec); err != nil {
				_ = iter.Close()
				return count, errors.E(err, "facet:", f.Name())
			}
		}
		count++
		if count%progressInterval == 0 {
			log.Printf("  [*] processed %d records", count)
		}
		if numRecords > 0 && count >= numRecords {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return count, errors.E(err, "reading records")
	}
	return count, nil
}

// runSequenceScan iterates the reference sequences in header order. For
// each sequence it brackets one indexed query with setup and teardown on
// every facet that supports the sequence; teardown runs even when the query
// matched no record.
func runSequenceScan(provider bamprovider.Provider, header *sam.Header, facets []SequenceFacet) error {
	for _, ref := range header.Refs() {
		var supporting []SequenceFacet
		for _, f := range facets {
			if f.SupportsSequence(ref.Name()) {
				supporting = append(supporting, f)
			}
		}
		if len(supporting) == 0 {
			log.Debug.Printf("sequence %s: no supporting facets, skipping", ref.Name())
			continue
		}

		log.Printf("starting sequence %s", ref.Name())
		for _, f := range supporting {
			if err := f.SetupSequence(ref); err != nil {
				return errors.E(err, "facet:", f.Name(), "sequence setup:", ref.Name())
			}
		}

		iter := provider.NewRefIterator(ref)
		var processed int64
		for iter.Scan() {
			rec := iter.Record()
			for _, f := range supporting {
				if err := f.ProcessRecord(ref, rec); err != nil {
					_ = iter.Close()
					return errors.E(err, "facet:", f.Name(), "sequence:", ref.Name())
				}
			}
			processed++
			if processed%progressInterval == 0 {
				log.Printf("  [*] processed %d records for sequence %s", processed, ref.Name())
			}
		}
		if err := iter.Close(); err != nil {
			return errors.E(err, "reading records for sequence:", ref.Name())
		}

		for _, f := range supporting {
			if err := f.TeardownSequence(ref); err != nil {
				return errors.E(err, "facet:", f.Name(), "sequence teardown:", ref.Name())
			}
		}
	}
	return nil
}
