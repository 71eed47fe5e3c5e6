// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package render

import (
	"strconv"
	"strings"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// WindowOptions controls the excerpt view built around coarse locations.
type WindowOptions struct {
	ContextWindow int  // Lines of context either side of a hit (default 10)
	AddSpace      bool // Blank line between excerpt windows
	StickyScroll  bool // Repeat the enclosing declaration's header line
	NoLineNumber  bool // Omit line-number prefixes
}

func (o *WindowOptions) defaults() {
	if o.ContextWindow == 0 {
		o.ContextWindow = 10
	}
}

// interval is an inclusive 1-based line range.
type interval struct {
	start, end int
}

// FileWindow renders excerpts of one file around the given locations:
// each symbol location expands to its declaration span, each line location
// to the line itself, all widened by ContextWindow lines, merged, and
// rendered in file order with elision markers between gaps. An empty
// location set yields the empty string.
func FileWindow(record types.FileRecord, locs []types.Location, opts WindowOptions) string {
	opts.defaults()

	var ivs []interval
	for _, loc := range locs {
		iv, ok := resolve(record, loc)
		if !ok {
			continue
		}
		iv.start -= opts.ContextWindow
		iv.end += opts.ContextWindow
		if iv.start < 1 {
			iv.start = 1
		}
		if iv.end > len(record.Lines) {
			iv.end = len(record.Lines)
		}
		ivs = append(ivs, iv)
	}
	if len(ivs) == 0 {
		return ""
	}
	ivs = mergeIntervals(ivs)

	var b strings.Builder
	for i, iv := range ivs {
		if i > 0 {
			b.WriteString(elisionMarker + "\n")
			if opts.AddSpace {
				b.WriteByte('\n')
			}
		}
		if opts.StickyScroll {
			writeSticky(&b, record, iv, opts)
		}
		for n := iv.start; n <= iv.end; n++ {
			b.WriteString(numbered(record.Lines[n-1], n, opts) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// resolve maps a location onto the line span it names. Symbol locations
// match a declaration by exact name, by dotted suffix (Type.method answers
// both "method" and "Type.method"), or by dotted prefix.
func resolve(record types.FileRecord, loc types.Location) (interval, bool) {
	if loc.Kind == types.LineLoc {
		n := loc.Line()
		if n < 1 || n > len(record.Lines) {
			return interval{}, false
		}
		return interval{start: n, end: n}, true
	}

	name := strings.TrimSpace(loc.Identifier)
	if name == "" {
		return interval{}, false
	}
	for _, d := range record.Declarations {
		if matchName(d.Name, name) {
			return interval{start: d.StartLine, end: d.EndLine}, true
		}
	}
	return interval{}, false
}

func matchName(declName, queried string) bool {
	if declName == queried {
		return true
	}
	if strings.HasSuffix(declName, "."+queried) {
		return true
	}
	return strings.HasSuffix(queried, "."+declName)
}

// mergeIntervals sorts and coalesces overlapping or adjacent ranges.
func mergeIntervals(ivs []interval) []interval {
	for i := 1; i < len(ivs); i++ {
		for j := i; j > 0 && ivs[j].start < ivs[j-1].start; j-- {
			ivs[j], ivs[j-1] = ivs[j-1], ivs[j]
		}
	}
	merged := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end+1 {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// writeSticky prepends the header line of the declaration enclosing the
// window start, when the window does not already show it.
func writeSticky(b *strings.Builder, record types.FileRecord, iv interval, opts WindowOptions) {
	for _, d := range record.Declarations {
		if d.StartLine < iv.start && d.EndLine >= iv.start {
			b.WriteString(numbered(record.Lines[d.StartLine-1], d.StartLine, opts) + "\n")
			return
		}
	}
}

func numbered(line string, n int, opts WindowOptions) string {
	if opts.NoLineNumber {
		return line
	}
	return strconv.Itoa(n) + " " + line
}
