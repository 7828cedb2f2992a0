// Copyright 2019 Grail Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package qc

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/traverse"
)

// Results is the single collection point for facet metrics. It is created
// once, after both phases finish; each facet's Aggregate populates exactly
// one section, and no facet writes another's. After aggregation the
// structure is serialized and discarded.
type Results struct {
	General        *GeneralMetrics        `json:"general,omitempty"`
	TemplateLength *TemplateLengthMetrics `json:"template_length,omitempty"`
	GCContent      *GCContentMetrics      `json:"gc_content,omitempty"`
	QualityScores  *QualityScoreMetrics   `json:"quality_scores,omitempty"`
	Features       *FeaturesMetrics       `json:"features,omitempty"`
	Coverage       *CoverageMetrics       `json:"coverage,omitempty"`
	Edits          *EditsMetrics          `json:"edits,omitempty"`
}

// Write serializes every populated section as a pretty-printed JSON
// document named <dir>/<prefix>.<section>.json. The sections are
// independent, so they are written concurrently. Any write error is fatal
// to the run.
func (r *Results) Write(ctx context.Context, dir, prefix string) error {
	type section struct {
		name string
		data interface{}
	}
	var sections []section
	add := func(name string, data interface{}) {
		sections = append(sections, section{name, data})
	}
	if r.General != nil {
		add("general", r.General)
	}
	if r.TemplateLength != nil {
		add("template_length", r.TemplateLength)
	}
	if r.GCContent != nil {
		add("gc_content", r.GCContent)
	}
	if r.QualityScores != nil {
		add("quality_scores", r.QualityScores)
	}
	if r.Features != nil {
		add("features", r.Features)
	}
	if r.Coverage != nil {
		add("coverage", r.Coverage)
	}
	if r.Edits != nil {
		add("edits", r.Edits)
	}

	return traverse.Each(len(sections), func(i int) (err error) {
		s := sections[i]
		data, err := json.MarshalIndent(s.data, "", "  ")
		if err != nil {
			return errors.E(err, "marshaling section:", s.name)
		}
		path := filepath.Join(dir, prefix+"."+s.name+".json")
		out, err := file.Create(ctx, path)
		if err != nil {
			return errors.E(err, "creating results file:", path)
		}
		defer file.CloseAndReport(ctx, out, &err)
		if _, err := out.Writer(ctx).Write(append(data, '\n')); err != nil {
			return errors.E(err, "writing results file:", path)
		}
		return nil
	})
}
