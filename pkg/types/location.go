// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind identifies what a location string points at.
type LocationKind int

const (
	FileLoc     LocationKind = iota // A whole file
	ClassLoc                        // A struct-like declaration
	FunctionLoc                     // A function or method, possibly Type.method
	VariableLoc                     // A global variable
	LineLoc                         // An exact line number
)

// String returns the indicator word used in oracle output for this kind.
func (k LocationKind) String() string {
	switch k {
	case FileLoc:
		return "file"
	case ClassLoc:
		return "class"
	case FunctionLoc:
		return "function"
	case VariableLoc:
		return "variable"
	case LineLoc:
		return "line"
	default:
		return "unknown"
	}
}

// Location is the atomic unit a narrowing stage returns: a file plus an
// optional symbol or line inside it. Identity is (FilePath, Kind, Identifier).
type Location struct {
	FilePath   string       // File path relative to the repository root
	Kind       LocationKind // What Identifier refers to
	Identifier string       // Symbol name, or decimal line number for LineLoc
}

// Line returns the line number for a LineLoc location, or 0 for other kinds
// and unparseable identifiers.
func (l Location) Line() int {
	if l.Kind != LineLoc {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(l.Identifier))
	if err != nil {
		return 0
	}
	return n
}

func (l Location) String() string {
	if l.Kind == FileLoc {
		return l.FilePath
	}
	return fmt.Sprintf("%s %s: %s", l.FilePath, l.Kind, l.Identifier)
}

// FileLocations groups the location strings the oracle emitted for one file,
// in emission order. Location strings keep the wire form ("function: foo",
// "line: 12") so they can be fed back into later stage prompts verbatim.
type FileLocations struct {
	FilePath  string   // File path relative to the repository root
	Locations []string // Raw "indicator: value" strings, in order
}
