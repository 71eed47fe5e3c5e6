// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runlog persists one localization run as line-delimited JSON: one
// record per stage call, carrying the prompt, the raw oracle output, and
// token accounting, so a run can be audited without re-running it.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// Record is one stage call in the run log.
type Record struct {
	Timestamp  time.Time               `json:"timestamp"`
	Stage      string                  `json:"stage"`
	Prompt     string                  `json:"prompt,omitempty"`
	RawOutputs []string                `json:"raw_outputs,omitempty"`
	Found      []string                `json:"found,omitempty"`
	Filtered   []string                `json:"filtered,omitempty"`
	Locations  []types.FileLocations   `json:"locations,omitempty"`
	Samples    [][]types.FileLocations `json:"samples,omitempty"`
	Usage      types.TokenUsage        `json:"usage"`
}

// Writer appends records to an output stream as JSONL.
type Writer struct {
	enc *json.Encoder
	now func() time.Time
}

// NewWriter creates a run-log writer over the given stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w), now: time.Now}
}

// Write appends one record, stamping it with the current time.
func (w *Writer) Write(rec Record) error {
	rec.Timestamp = w.now()
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("writing run log record: %w", err)
	}
	return nil
}

// FilesRecord builds a record from a files-stage result.
func FilesRecord(stage string, r *types.FilesResult) Record {
	return Record{
		Stage:      stage,
		Prompt:     r.Prompt,
		RawOutputs: rawList(r.RawOutput),
		Found:      r.Found,
		Usage:      r.Usage,
	}
}

// FoldersRecord builds a record from the irrelevant-folders stage result.
func FoldersRecord(r *types.FoldersResult) Record {
	return Record{
		Stage:      "irrelevant-folders",
		Prompt:     r.Prompt,
		RawOutputs: rawList(r.RawOutput),
		Found:      r.Kept,
		Filtered:   r.Filtered,
		Usage:      r.Usage,
	}
}

// LocationsRecord builds a record from a symbols- or lines-stage result.
func LocationsRecord(stage string, r *types.LocationsResult) Record {
	return Record{
		Stage:      stage,
		Prompt:     r.Prompt,
		RawOutputs: r.RawOutputs,
		Locations:  r.Locations,
		Samples:    r.Samples,
		Usage:      r.Usage,
	}
}

func rawList(raw string) []string {
	if raw == "" {
		return nil
	}
	return []string{raw}
}
