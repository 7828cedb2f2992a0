// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsWrite(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	facet := NewGeneralFacet()
	require.NoError(t, facet.Process(newRecord("r1", testChr1, 0, 0, cigarM(5))))
	require.NoError(t, facet.Summarize())
	results := &Results{}
	facet.Aggregate(results)

	ctx := context.Background()
	require.NoError(t, results.Write(ctx, tempDir, "sample"))

	// Only the populated section gets a document.
	data, err := ioutil.ReadFile(filepath.Join(tempDir, "sample.general.json"))
	require.NoError(t, err)
	var parsed GeneralMetrics
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, int64(1), parsed.Records.Total)

	_, err = os.Stat(filepath.Join(tempDir, "sample.coverage.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestResultsWriteEmpty(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	results := &Results{}
	require.NoError(t, results.Write(context.Background(), tempDir, "sample"))
	entries, err := ioutil.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
