// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

/*
bio-instrument predicts which Illumina machine(s) produced a BAM file by
parsing read names and matching instrument and flowcell identifiers against
known naming schemes. The prediction is printed to stdout as JSON.
*/

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/bamqc/derive"
	"github.com/grailbio/bamqc/encoding/bamprovider"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

var numRecords = flag.Int64("n", 10000000, "Number of records to examine; <= 0 examines all records")

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] bampath\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	provider := bamprovider.NewProvider(flag.Arg(0))
	result, err := derive.Instrument(provider, *numRecords)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := provider.Close(); err != nil {
		log.Fatalf("%v", err)
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(string(out))
}
