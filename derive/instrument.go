// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package derive

import (
	"regexp"
	"sort"

	"github.com/grailbio/bamqc/encoding/bamprovider"
	"github.com/grailbio/base/log"
)

// InstrumentDetection narrows the set of machines compatible with a stream
// of identifier queries. The set starts unconstrained; each query
// intersects it with the machines that could have produced that query.
type InstrumentDetection struct {
	// PossibleMachines is nil until the first query arrives.
	PossibleMachines map[string]bool

	// DetectedAtLeastOne distinguishes conflicting evidence (queries whose
	// machine sets have an empty intersection) from queries matching no
	// known machine at all.
	DetectedAtLeastOne bool
}

// Update intersects the detection state with machines.
func (d *InstrumentDetection) Update(machines map[string]bool) {
	if d.PossibleMachines == nil {
		possible := map[string]bool{}
		for m := range machines {
			possible[m] = true
		}
		d.PossibleMachines = possible
	} else {
		for m := range d.PossibleMachines {
			if !machines[m] {
				delete(d.PossibleMachines, m)
			}
		}
	}
	if len(machines) > 0 {
		d.DetectedAtLeastOne = true
	}
}

// machinesForQuery returns every machine whose identifier pattern matches
// query.
func machinesForQuery(query string, lookup map[string][]string) map[string]bool {
	result := map[string]bool{}
	for pattern, machines := range lookup {
		if regexp.MustCompile(pattern).MatchString(query) {
			for _, m := range machines {
				result[m] = true
			}
		}
	}
	log.Debug.Printf("derive: query %s matched machines %v", query, result)
	return result
}

// predict runs every unique query through the lookup table and intersects
// the per-query machine sets.
func predict(queries map[string]bool, lookup map[string][]string) InstrumentDetection {
	var d InstrumentDetection
	for q := range queries {
		d.Update(machinesForQuery(q, lookup))
	}
	return d
}

// InstrumentResult is the outcome of the instrument check.
type InstrumentResult struct {
	// Succeeded reports whether a consistent, non-empty machine set was
	// found.
	Succeeded bool `json:"succeeded"`

	// Instruments lists the compatible machines, if any, sorted.
	Instruments []string `json:"instruments,omitempty"`

	// Confidence is "high" when both identifier sources yielded evidence
	// (whether they agree or are mutually exclusive), "medium" when a single
	// source pins a single machine, "low" when a single source leaves
	// several candidates, and "unknown" when the evidence conflicts within
	// one source or there is none.
	Confidence string `json:"confidence"`

	// Evidence names the identifier source(s) behind the result.
	Evidence string `json:"evidence,omitempty"`

	// Comment carries a human-readable explanation for failures.
	Comment string `json:"comment,omitempty"`
}

// resolve combines instrument-id and flowcell-id evidence into the final
// result.
func resolve(iid, fcid InstrumentDetection) InstrumentResult {
	// Conflicting evidence within one source is unrecoverable: machines
	// were detected, but no single machine explains every identifier.
	if len(iid.PossibleMachines) == 0 && iid.DetectedAtLeastOne {
		return InstrumentResult{
			Confidence: "unknown",
			Evidence:   "instrument id",
			Comment:    "multiple instruments were detected in this file via the instrument id",
		}
	}
	if len(fcid.PossibleMachines) == 0 && fcid.DetectedAtLeastOne {
		return InstrumentResult{
			Confidence: "unknown",
			Evidence:   "flowcell id",
			Comment:    "multiple instruments were detected in this file via the flowcell id",
		}
	}
	if len(iid.PossibleMachines) == 0 && len(fcid.PossibleMachines) == 0 {
		return InstrumentResult{
			Confidence: "unknown",
			Comment:    "no matching instruments were found",
		}
	}
	if len(fcid.PossibleMachines) == 0 {
		return InstrumentResult{
			Succeeded:   true,
			Instruments: sortedMachines(iid.PossibleMachines),
			Confidence:  singleSourceConfidence(iid.PossibleMachines),
			Evidence:    "instrument id",
		}
	}
	if len(iid.PossibleMachines) == 0 {
		return InstrumentResult{
			Succeeded:   true,
			Instruments: sortedMachines(fcid.PossibleMachines),
			Confidence:  singleSourceConfidence(fcid.PossibleMachines),
			Evidence:    "flowcell id",
		}
	}

	overlap := map[string]bool{}
	for m := range iid.PossibleMachines {
		if fcid.PossibleMachines[m] {
			overlap[m] = true
		}
	}
	if len(overlap) > 0 {
		return InstrumentResult{
			Succeeded:   true,
			Instruments: sortedMachines(overlap),
			Confidence:  "high",
			Evidence:    "instrument and flowcell id",
		}
	}
	// Both sources produced confident but mutually exclusive answers. The
	// evidence itself is strong, so the confidence stays high even though no
	// machine can be named.
	return InstrumentResult{
		Confidence: "high",
		Evidence:   "instrument and flowcell id",
		Comment:    "case needs triaging, the instrument id and flowcell id evidence are mutually exclusive",
	}
}

// singleSourceConfidence grades a prediction backed by only one identifier
// source: medium when it pins a single machine, low when several remain.
func singleSourceConfidence(machines map[string]bool) string {
	if len(machines) == 1 {
		return "medium"
	}
	return "low"
}

func sortedMachines(set map[string]bool) []string {
	machines := make([]string, 0, len(set))
	for m := range set {
		machines = append(machines, m)
	}
	sort.Strings(machines)
	return machines
}

// Instrument derives the sequencing machine(s) that produced the file
// served by provider, optionally capped to the first numRecords records
// (<= 0 scans everything). Unparseable read names are skipped: the check is
// forensic, not a validator.
func Instrument(provider bamprovider.Provider, numRecords int64) (*InstrumentResult, error) {
	instruments := map[string]bool{}
	flowcells := map[string]bool{}

	iter := provider.NewFileIterator()
	var count int64
	for iter.Scan() {
		name, err := ParseIlluminaReadName(iter.Record().Name)
		if err == nil {
			instruments[name.Instrument] = true
			if name.Flowcell != "" {
				flowcells[name.Flowcell] = true
			}
		}
		count++
		if numRecords > 0 && count >= numRecords {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	log.Printf("derive: %d records scanned, %d unique instrument ids, %d unique flowcell ids",
		count, len(instruments), len(flowcells))

	result := resolve(predict(instruments, instrumentLookup), predict(flowcells, flowcellLookup))
	return &result, nil
}
