// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package render produces size-reduced textual views of indexed files:
// skeletons for the symbols stage and windowed excerpts for the lines stage.
package render

import (
	"strconv"
	"strings"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

const elisionMarker = "..."

// SkeletonOptions controls how much of each declaration body survives in a
// skeleton. A declaration no longer than TotalLines is kept whole.
type SkeletonOptions struct {
	TotalLines      int  // Elide declarations longer than this (default 30)
	PrefixLines     int  // Leading lines kept from an elided body (default 10)
	SuffixLines     int  // Trailing lines kept from an elided body (default 10)
	CompressStructs bool // Also elide struct-like declaration bodies
}

func (o *SkeletonOptions) defaults() {
	if o.TotalLines == 0 {
		o.TotalLines = 30
	}
	if o.PrefixLines == 0 {
		o.PrefixLines = 10
	}
	if o.SuffixLines == 0 {
		o.SuffixLines = 10
	}
}

// Skeleton renders a compressed view of the file: declaration signatures with
// large bodies elided beyond the configured prefix/suffix lines. Function
// bodies are always candidates for elision; struct-like bodies only when
// CompressStructs is set, so e.g. class bodies keep their method signatures
// (the methods elide individually). Lines outside any elided span are kept
// verbatim.
func Skeleton(record types.FileRecord, opts SkeletonOptions) string {
	opts.defaults()

	var b strings.Builder
	cursor := 1 // Next line to emit (1-based).

	for _, d := range record.Declarations {
		if d.StartLine < cursor {
			continue // Nested inside an already-elided span.
		}
		if d.Kind == types.StructDecl && !opts.CompressStructs {
			continue
		}
		span := d.EndLine - d.StartLine + 1
		if span <= opts.TotalLines {
			continue
		}

		writeLines(&b, record.Lines, cursor, d.StartLine-1)
		writeLines(&b, record.Lines, d.StartLine, d.StartLine+opts.PrefixLines-1)
		b.WriteString(elisionMarker + "\n")
		writeLines(&b, record.Lines, d.EndLine-opts.SuffixLines+1, d.EndLine)
		cursor = d.EndLine + 1
	}

	writeLines(&b, record.Lines, cursor, len(record.Lines))
	return strings.TrimRight(b.String(), "\n")
}

// writeLines emits lines from..to inclusive (1-based), clamped to the file.
func writeLines(b *strings.Builder, lines []string, from, to int) {
	if from < 1 {
		from = 1
	}
	if to > len(lines) {
		to = len(lines)
	}
	for i := from; i <= to; i++ {
		b.WriteString(lines[i-1])
		b.WriteByte('\n')
	}
}

// NumberLines renders file lines prefixed with their 1-based line number,
// the form the lines stage shows the oracle so it can answer with exact
// line mentions.
func NumberLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(strconv.Itoa(i+1) + " " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
