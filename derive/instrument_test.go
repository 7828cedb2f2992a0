// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package derive

import (
	"testing"

	"github.com/grailbio/bamqc/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIlluminaReadName(t *testing.T) {
	// Illumina 1.8: seven segments including run and flowcell.
	name, err := ParseIlluminaReadName("A00111:123:H2F5KDSXX:1:1101:1000:2000")
	require.NoError(t, err)
	assert.Equal(t, "A00111", name.Instrument)
	assert.Equal(t, "123", name.Run)
	assert.Equal(t, "H2F5KDSXX", name.Flowcell)
	assert.Equal(t, "1", name.Lane)
	assert.Equal(t, "1101", name.Tile)
	assert.Equal(t, "1000", name.X)
	assert.Equal(t, "2000", name.Y)

	// Illumina 1.4: five segments, no run or flowcell.
	name, err = ParseIlluminaReadName("HWI-ST333:4:1101:5000:6000")
	require.NoError(t, err)
	assert.Equal(t, "HWI-ST333", name.Instrument)
	assert.Empty(t, name.Run)
	assert.Empty(t, name.Flowcell)
	assert.Equal(t, "4", name.Lane)

	_, err = ParseIlluminaReadName("not-a-read-name")
	assert.Error(t, err)
	_, err = ParseIlluminaReadName("a:b:c")
	assert.Error(t, err)
}

func TestMachinesForQuery(t *testing.T) {
	assert.Equal(t, map[string]bool{"NovaSeq 6000": true},
		machinesForQuery("A00111", instrumentLookup))
	assert.Equal(t, map[string]bool{"HiSeq 3000": true, "HiSeq 4000": true},
		machinesForQuery("K00222", instrumentLookup))
	assert.Empty(t, machinesForQuery("XYZZY", instrumentLookup))
	assert.Equal(t, map[string]bool{"NovaSeq 6000": true},
		machinesForQuery("H2F5KDSXX", flowcellLookup))
}

func TestDetectionUpdate(t *testing.T) {
	var d InstrumentDetection
	d.Update(map[string]bool{"HiSeq 3000": true, "HiSeq 4000": true})
	d.Update(map[string]bool{"HiSeq 4000": true})
	assert.Equal(t, map[string]bool{"HiSeq 4000": true}, d.PossibleMachines)
	assert.True(t, d.DetectedAtLeastOne)

	// A query matching nothing empties the set but does not count as
	// detected evidence.
	var e InstrumentDetection
	e.Update(map[string]bool{})
	assert.NotNil(t, e.PossibleMachines)
	assert.Empty(t, e.PossibleMachines)
	assert.False(t, e.DetectedAtLeastOne)
}

func TestResolve(t *testing.T) {
	set := func(machines ...string) map[string]bool {
		s := map[string]bool{}
		for _, m := range machines {
			s[m] = true
		}
		return s
	}
	tests := []struct {
		name        string
		iid, fcid   InstrumentDetection
		succeeded   bool
		instruments []string
		confidence  string
	}{
		{
			name:       "conflicting instrument ids",
			iid:        InstrumentDetection{PossibleMachines: set(), DetectedAtLeastOne: true},
			fcid:       InstrumentDetection{PossibleMachines: set("MiSeq"), DetectedAtLeastOne: true},
			confidence: "unknown",
		},
		{
			name:       "conflicting flowcell ids",
			iid:        InstrumentDetection{PossibleMachines: set("MiSeq"), DetectedAtLeastOne: true},
			fcid:       InstrumentDetection{PossibleMachines: set(), DetectedAtLeastOne: true},
			confidence: "unknown",
		},
		{
			name:       "no evidence at all",
			confidence: "unknown",
		},
		{
			name:        "instrument only, single machine",
			iid:         InstrumentDetection{PossibleMachines: set("HiSeq 2500"), DetectedAtLeastOne: true},
			succeeded:   true,
			instruments: []string{"HiSeq 2500"},
			confidence:  "medium",
		},
		{
			name:        "instrument only, several machines",
			iid:         InstrumentDetection{PossibleMachines: set("HiSeq 3000", "HiSeq 4000"), DetectedAtLeastOne: true},
			succeeded:   true,
			instruments: []string{"HiSeq 3000", "HiSeq 4000"},
			confidence:  "low",
		},
		{
			name:        "flowcell only, single machine",
			fcid:        InstrumentDetection{PossibleMachines: set("HiSeq X"), DetectedAtLeastOne: true},
			succeeded:   true,
			instruments: []string{"HiSeq X"},
			confidence:  "medium",
		},
		{
			name:        "flowcell only, several machines",
			fcid:        InstrumentDetection{PossibleMachines: set("NextSeq 500", "NextSeq 550"), DetectedAtLeastOne: true},
			succeeded:   true,
			instruments: []string{"NextSeq 500", "NextSeq 550"},
			confidence:  "low",
		},
		{
			name:        "sources agree",
			iid:         InstrumentDetection{PossibleMachines: set("HiSeq 3000", "HiSeq 4000"), DetectedAtLeastOne: true},
			fcid:        InstrumentDetection{PossibleMachines: set("HiSeq 4000"), DetectedAtLeastOne: true},
			succeeded:   true,
			instruments: []string{"HiSeq 4000"},
			confidence:  "high",
		},
		{
			// Both sources are confident but name disjoint machines: the
			// check fails, yet the confidence in the evidence stays high.
			name:       "sources mutually exclusive",
			iid:        InstrumentDetection{PossibleMachines: set("MiSeq"), DetectedAtLeastOne: true},
			fcid:       InstrumentDetection{PossibleMachines: set("NovaSeq 6000"), DetectedAtLeastOne: true},
			confidence: "high",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := resolve(test.iid, test.fcid)
			assert.Equal(t, test.succeeded, result.Succeeded)
			assert.Equal(t, test.instruments, result.Instruments)
			assert.Equal(t, test.confidence, result.Confidence)
		})
	}
}

func TestInstrument(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	newRec := func(name string) *sam.Record {
		r := sam.GetFromFreePool()
		r.Name = name
		r.Ref = ref
		return r
	}
	recs := []*sam.Record{
		newRec("A00111:123:H2F5KDSXX:1:1101:1000:2000"),
		newRec("A00111:123:H2F5KDSXX:1:1101:1001:2001"),
		newRec("garbled read name"),
	}
	provider := bamprovider.NewFakeProvider(header, recs)
	result, err := Instrument(provider, -1)
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.Equal(t, []string{"NovaSeq 6000"}, result.Instruments)
	assert.Equal(t, "high", result.Confidence)
	assert.Equal(t, "instrument and flowcell id", result.Evidence)
}

func TestInstrumentCap(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	// The first record names a MiSeq, the second a NovaSeq. Capped at one
	// record, only the MiSeq evidence is seen.
	recs := make([]*sam.Record, 0, 2)
	for i, name := range []string{
		"M00333:55:000000000-A1B2C:1:1101:1000:2000",
		"A00111:123:H2F5KDSXX:1:1101:1000:2000",
	} {
		r := sam.GetFromFreePool()
		r.Name = name
		r.Ref = ref
		r.Pos = i
		recs = append(recs, r)
	}
	provider := bamprovider.NewFakeProvider(header, recs)
	result, err := Instrument(provider, 1)
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	assert.Equal(t, []string{"MiSeq"}, result.Instruments)
}
