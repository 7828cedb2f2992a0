// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package derive backwards-computes run provenance from sequencing data.
// The instrument check parses Illumina read names, collects the unique
// instrument and flowcell identifiers, and narrows the set of machines that
// could have produced them.
package derive

import (
	"fmt"
	"strings"
)

// IlluminaReadName holds the fields of an Illumina 1.4 or 1.8 read name.
// The expected convention is
//
//	INSTRUMENT:[RUN:FLOWCELL:]LANE:TILE:X:Y
//
// where the run and flowcell segments are present only in the 1.8 format.
type IlluminaReadName struct {
	Instrument string
	Run        string
	Flowcell   string
	Lane       string
	Tile       string
	X          string
	Y          string
}

// ParseIlluminaReadName parses name. Only the 5-segment (1.4) and
// 7-segment (1.8) conventions are recognized.
func ParseIlluminaReadName(name string) (IlluminaReadName, error) {
	segments := strings.Split(name, ":")
	switch len(segments) {
	case 5:
		return IlluminaReadName{
			Instrument: segments[0],
			Lane:       segments[1],
			Tile:       segments[2],
			X:          segments[3],
			Y:          segments[4],
		}, nil
	case 7:
		return IlluminaReadName{
			Instrument: segments[0],
			Run:        segments[1],
			Flowcell:   segments[2],
			Lane:       segments[3],
			Tile:       segments[4],
			X:          segments[5],
			Y:          segments[6],
		}, nil
	}
	return IlluminaReadName{}, fmt.Errorf("read name %q is not an Illumina 1.4 or 1.8 name", name)
}
