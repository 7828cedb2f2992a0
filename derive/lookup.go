// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package derive

// Lookup tables mapping identifier patterns to the Illumina machines known
// to produce them. Instrument identifiers narrow faster; flowcell
// identifiers disambiguate machines that share naming schemes.

var instrumentLookup = map[string][]string{
	`^HWI-M[0-9]{4}$`:    {"MiSeq"},
	`^M[0-9]{5}$`:        {"MiSeq"},
	`^HWI-C[0-9]{5}$`:    {"HiSeq 1500"},
	`^C[0-9]{5}$`:        {"HiSeq 1500"},
	`^HWI-D[0-9]{5}$`:    {"HiSeq 2500"},
	`^D[0-9]{5}$`:        {"HiSeq 2500"},
	`^HWI-ST[0-9]+$`:     {"HiSeq 2000"},
	`^J[0-9]{5}$`:        {"HiSeq 3000"},
	`^K[0-9]{5}$`:        {"HiSeq 3000", "HiSeq 4000"},
	`^E[0-9]{5}$`:        {"HiSeq X"},
	`^N[BS]?[0-9]{5,6}$`: {"NextSeq 500", "NextSeq 550"},
	`^MN[0-9]{5}$`:       {"MiniSeq"},
	`^A[0-9]{5}$`:        {"NovaSeq 6000"},
	`^VH[0-9]{5}$`:       {"NextSeq 2000"},
}

var flowcellLookup = map[string][]string{
	`^[A-Z0-9]{5}ANXX$`:        {"HiSeq 2000", "HiSeq 2500"},
	`^[A-Z0-9]{5}ACXX$`:        {"HiSeq 2000", "HiSeq 2500"},
	`^[A-Z0-9]{5}BCX[XY2]$`:    {"HiSeq 1500", "HiSeq 2500"},
	`^[A-Z0-9]{5}ALXX$`:        {"HiSeq X"},
	`^[A-Z0-9]{5}CCX[XY]$`:     {"HiSeq X"},
	`^[A-Z0-9]{5}BBX[XY]$`:     {"HiSeq 4000"},
	`^[A-Z0-9]{5}BGX[A-Z0-9]$`: {"NextSeq 500", "NextSeq 550"},
	`^[A-Z0-9]{5}AFX[A-Z0-9]$`: {"NextSeq 500", "NextSeq 550"},
	`^000000000-[A-Z0-9]{5}$`:  {"MiSeq"},
	`^[A-Z0-9]{5}DMXX$`:        {"NovaSeq 6000"},
	`^[A-Z0-9]{5}DRXX$`:        {"NovaSeq 6000"},
	`^[A-Z0-9]{5}DSXX$`:        {"NovaSeq 6000"},
	`^[A-Z0-9]{5}M5$`:          {"NextSeq 2000"},
}
