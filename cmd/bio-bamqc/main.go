// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

/*
bio-bamqc computes quality-control metrics for an indexed BAM file: read
flag composition, template length, GC content, base quality, per-sequence
coverage, and (optionally) reference edits and genomic feature overlap. One
JSON document per facet category is written under -output-dir.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/bamqc/genome"
	"github.com/grailbio/bamqc/qc"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
)

var (
	referenceGenome = flag.String("reference-genome", "", "Reference genome the BAM was aligned against (required; see -list-genomes)")
	referenceFasta  = flag.String("reference-fasta", "", "Reference FASTA; enables the edits facet")
	featuresGFF     = flag.String("features-gff", "", "Feature annotation GFF; enables the genomic-features facet")
	bamIndexPath    = flag.String("index", "", "BAM index path. Defaults to bampath + .bai")
	outputDir       = flag.String("output-dir", qc.DefaultOpts.OutputDir, "Directory the result documents are written to")
	outputPrefix    = flag.String("output-prefix", qc.DefaultOpts.OutputPrefix, "Filename prefix for the result documents")
	numRecords      = flag.Int64("n", qc.DefaultOpts.NumRecords, "Number of records to process in the first pass; <= 0 processes all records")
	windowSize      = flag.Int("window-size", qc.DefaultOpts.WindowSize, "Window width, in positions, for per-window mean coverage")
	listGenomes     = flag.Bool("list-genomes", false, "List the supported reference genomes and exit")

	fivePrimeUTRName  = flag.String("five-prime-utr-feature-name", qc.DefaultFeatureNames.FivePrimeUTR, "GFF feature type for five prime UTR regions")
	threePrimeUTRName = flag.String("three-prime-utr-feature-name", qc.DefaultFeatureNames.ThreePrimeUTR, "GFF feature type for three prime UTR regions")
	cdsName           = flag.String("coding-sequence-feature-name", qc.DefaultFeatureNames.CodingSequence, "GFF feature type for coding sequence regions")
	exonName          = flag.String("exon-feature-name", qc.DefaultFeatureNames.Exon, "GFF feature type for exonic regions")
	geneName          = flag.String("gene-feature-name", qc.DefaultFeatureNames.Gene, "GFF feature type for gene regions")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] bampath\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func printGenomes() error {
	w := tsv.NewWriter(os.Stdout)
	w.WriteString("NAME")
	w.WriteString("SOURCE")
	w.WriteString("BASIS")
	w.WriteString("SEQUENCES")
	if err := w.EndLine(); err != nil {
		return err
	}
	for _, g := range genome.All() {
		w.WriteString(g.Name())
		w.WriteString(g.Source())
		w.WriteString(g.Basis())
		w.WriteUint32(uint32(len(g.Sequences())))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *listGenomes {
		if err := printGenomes(); err != nil {
			log.Fatalf("listing genomes: %v", err)
		}
		return
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	if *referenceGenome == "" {
		log.Fatalf("-reference-genome is required")
	}
	if err := os.MkdirAll(*outputDir, 0777); err != nil {
		log.Fatalf("creating output directory %s: %v", *outputDir, err)
	}

	opts := qc.Opts{
		ReferenceGenome: *referenceGenome,
		BamIndexPath:    *bamIndexPath,
		ReferenceFasta:  *referenceFasta,
		FeaturesGFF:     *featuresGFF,
		FeatureNames: qc.FeatureNames{
			FivePrimeUTR:   *fivePrimeUTRName,
			ThreePrimeUTR:  *threePrimeUTRName,
			CodingSequence: *cdsName,
			Exon:           *exonName,
			Gene:           *geneName,
		},
		OutputDir:    *outputDir,
		OutputPrefix: *outputPrefix,
		NumRecords:   *numRecords,
		WindowSize:   *windowSize,
	}
	ctx := vcontext.Background()
	if err := qc.QC(ctx, flag.Arg(0), opts); err != nil {
		log.Fatalf("%v", err)
	}
}
