// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-localizer packages.
package types

// DeclKind identifies the category of a top-level declaration.
type DeclKind int

const (
	StructDecl   DeclKind = iota // Struct-like declaration (struct, union, class, type)
	FunctionDecl                 // Function-like declaration (function, method)
)

// String returns the human-readable name of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case StructDecl:
		return "struct"
	case FunctionDecl:
		return "function"
	default:
		return "unknown"
	}
}

// Declaration represents a top-level declaration extracted from a source
// file. Methods nested inside a type are emitted as separate entries with a
// dotted name (Type.method); consumers treat the list as flat.
type Declaration struct {
	Kind      DeclKind // Category (struct-like or function-like)
	Name      string   // Declaration name, dotted for methods
	StartLine int      // First line of the declaration (1-based)
	EndLine   int      // Last line of the declaration (1-based, inclusive)
	Text      []string // Raw source lines of the declaration
}

// FileRecord holds the indexed view of a single file: its top-level
// declarations and its full text split into lines. Non-source files and
// files that failed extraction have both slices empty but are still present
// in the index so path existence checks succeed uniformly.
type FileRecord struct {
	Declarations []Declaration // Top-level declarations, in source order
	Lines        []string      // File text; Lines[0] is line 1
}
