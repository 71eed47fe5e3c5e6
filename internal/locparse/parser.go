// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locparse extracts structured location mentions from the oracle's
// free-text responses and reconciles them against the known candidate set.
// The grammar is small and strict: one fenced block, bare path lines, and
// "indicator: value" lines that attach to the most recent path above them.
// Anything else is skipped, never fatal.
package locparse

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// indicators are the recognized location line prefixes.
var indicators = map[string]types.LocationKind{
	"class":    types.ClassLoc,
	"function": types.FunctionLoc,
	"variable": types.VariableLoc,
	"line":     types.LineLoc,
}

// similarityThreshold is the minimum diff similarity for fuzzy path
// correction; below it a mentioned path is dropped.
const similarityThreshold = 0.8

// Parser reconciles oracle output against the known file paths of one
// localization run.
type Parser struct {
	Known []string       // Candidate file paths, index order
	Log   zerolog.Logger // Warnings for dropped mentions
}

// FencedBlock returns the content of the first ``` fenced block in the
// response, or the whole text when no fence is present (some oracles skip
// the fence for short answers).
func FencedBlock(raw string) string {
	lines := strings.Split(raw, "\n")
	var block []string
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				return strings.Join(block, "\n")
			}
			inBlock = true
			continue
		}
		if inBlock {
			block = append(block, line)
		}
	}
	if inBlock {
		// Unterminated fence: take what was inside.
		return strings.Join(block, "\n")
	}
	return raw
}

// FileList parses a files-stage response: one path per line inside the
// fenced block, resolved against Known. Output preserves the order of first
// mention of each resolved path; unresolvable mentions are dropped with a
// warning.
func (p *Parser) FileList(raw string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(FencedBlock(raw), "\n") {
		mention := strings.TrimSpace(line)
		if mention == "" {
			continue
		}
		path, ok := p.correctPath(mention)
		if !ok {
			continue
		}
		if !seen[path] {
			seen[path] = true
			found = append(found, path)
		}
	}
	return found
}

// Locations parses a symbols- or lines-stage response into per-file ordered
// location strings. keepOriginalOrder preserves the oracle's emission order
// of files; otherwise files are reordered to match Known's order. Location
// strings within a file always keep emission order.
func (p *Parser) Locations(raw string, keepOriginalOrder bool) []types.FileLocations {
	perFile := make(map[string][]string)
	var emitOrder []string

	current := ""
	for _, line := range strings.Split(FencedBlock(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if kind, value, ok := splitIndicator(line); ok {
			if current == "" {
				p.Log.Warn().Str("line", line).Msg("location line before any file path, skipping")
				continue
			}
			perFile[current] = append(perFile[current], kind+": "+value)
			continue
		}

		// A bare line is a path mention.
		path, ok := p.correctPath(line)
		if !ok {
			current = ""
			continue
		}
		if _, ok := perFile[path]; !ok {
			emitOrder = append(emitOrder, path)
			perFile[path] = nil
		}
		current = path
	}

	order := emitOrder
	if !keepOriginalOrder {
		order = nil
		for _, known := range p.Known {
			if _, ok := perFile[known]; ok {
				order = append(order, known)
			}
		}
	}

	out := make([]types.FileLocations, 0, len(order))
	for _, path := range order {
		out = append(out, types.FileLocations{FilePath: path, Locations: perFile[path]})
	}
	return out
}

// splitIndicator recognizes "indicator: value" lines with a known indicator
// and a non-empty value.
func splitIndicator(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	kind := strings.ToLower(strings.TrimSpace(line[:idx]))
	value := strings.TrimSpace(line[idx+1:])
	if _, ok := indicators[kind]; !ok || value == "" {
		return "", "", false
	}
	if kind == "line" {
		if _, err := strconv.Atoi(value); err != nil {
			return "", "", false
		}
	}
	return kind, value, true
}

// correctPath resolves a mentioned path against Known: exact match first,
// then suffix match in either direction (the oracle often omits a leading
// prefix), then the closest fuzzy match above the similarity threshold.
// A mention with no plausible match is dropped with a warning.
func (p *Parser) correctPath(mention string) (string, bool) {
	mention = strings.Trim(strings.TrimSpace(mention), "`")
	if mention == "" || strings.ContainsAny(mention, " \t") {
		return "", false
	}

	for _, known := range p.Known {
		if known == mention {
			return known, true
		}
	}
	for _, known := range p.Known {
		if strings.HasSuffix(known, "/"+mention) || strings.HasSuffix(mention, "/"+known) {
			return known, true
		}
	}

	best, score := "", 0.0
	for _, known := range p.Known {
		if s := pathSimilarity(mention, known); s > score {
			best, score = known, s
		}
	}
	if score >= similarityThreshold {
		return best, true
	}

	p.Log.Warn().Str("path", mention).Msg("unresolvable path mention, dropping")
	return "", false
}

// pathSimilarity scores two paths in [0,1] from their edit distance.
func pathSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	return 1 - float64(distance)/float64(longest)
}

// ParseLocation converts a raw "indicator: value" string for a file into a
// typed Location. The boolean is false for malformed strings.
func ParseLocation(filePath, raw string) (types.Location, bool) {
	kind, value, ok := splitIndicator(strings.TrimSpace(raw))
	if !ok {
		return types.Location{}, false
	}
	return types.Location{
		FilePath:   filePath,
		Kind:       indicators[kind],
		Identifier: value,
	}, true
}
