// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locator defines the public interface for go-localizer, a
// coarse-to-fine fault localization library that narrows a natural-language
// problem statement down to files, symbols, and line numbers in a
// repository.
package locator

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// Error types for the Locator API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrOracleFailure = errors.New("oracle call failed")
)

// Config configures a Locator instance.
type Config struct {
	WorkDir       string // Repository root (required)
	Model         string // Bedrock model ID (required unless Mock)
	Region        string // AWS region (required unless Mock)
	Commit        string // Revision to check out before indexing (optional)
	TopN          int    // Files-stage shortlist size (default 5)
	ContextBudget int    // Prompt token budget (default 128000)
	NumSamples    int    // Oracle samples for symbol/line stages (default 1)
	Temperature   float32
	ContextWindow int  // Lines of context around line-stage hits (default 10)
	NoLineNumber  bool // Solicit symbol names instead of line numbers
	RawFiles      bool // Send full file text instead of skeletons
	Partition     bool // Split the files stage across top-level directories
	Mock          bool // Build prompts and count tokens without an oracle

	Logger *zerolog.Logger // Logging sink (default: discard)
	RunLog io.Writer       // JSONL record of each stage (optional)
}

// Result holds the outcome of a Locator.Run invocation.
type Result struct {
	Files      []string                // Ranked files-stage shortlist
	Locations  []types.FileLocations   // Final edit locations (single sample)
	Samples    [][]types.FileLocations // Per-sample locations (NumSamples > 1)
	TokensUsed types.TokenUsage        // Total tokens consumed across stages
}

// FoldersResult holds the outcome of an EliminateFolders invocation.
type FoldersResult struct {
	Kept       []string         // Files outside every folder the oracle ruled out
	Filtered   []string         // Files excluded by a ruled-out folder
	TokensUsed types.TokenUsage // Tokens consumed by the call
}

// Locator localizes a problem statement to edit locations in a repository.
type Locator interface {
	// Run executes the full localization pipeline: pin the revision if one
	// was given, index the repository, narrow to files, then to symbols,
	// then to line-level edit locations.
	Run(ctx context.Context, problem string) (*Result, error)

	// EliminateFolders runs only the elimination stage: the oracle names
	// folders that cannot contain the fault and the remaining files are
	// returned. It is the cheap first cut for repositories too large to
	// shortlist directly.
	EliminateFolders(ctx context.Context, problem string) (*FoldersResult, error)
}
