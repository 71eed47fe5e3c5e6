// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// TokenUsage tracks token consumption for a single oracle call, or the sum
// across the samples of one stage invocation.
type TokenUsage struct {
	PromptTokens     int // Tokens in the prompt
	CompletionTokens int // Tokens in the response(s)
}

// Total returns the sum of prompt and completion tokens.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
	}
}

// FilesResult holds the outcome of the files stage: an ordered shortlist of
// candidate file paths, most important first, in the oracle's stated order.
type FilesResult struct {
	Found     []string   // Resolved file paths, oracle order preserved
	Prompt    string     // The prompt that was sent
	RawOutput string     // The oracle's raw response text
	Usage     TokenUsage // Token accounting for the call
}

// FoldersResult holds the outcome of the irrelevant-folders stage: the
// complement split of the indexed file set.
type FoldersResult struct {
	Kept      []string   // Files not under any declared-irrelevant prefix
	Filtered  []string   // Files excluded by a declared prefix
	Prompt    string     // The prompt that was sent
	RawOutput string     // The oracle's raw response text
	Usage     TokenUsage // Token accounting for the call
}

// LocationsResult holds the outcome of the symbols or lines stage.
//
// Exactly one of Locations and Samples is non-nil: Locations when one sample
// was requested, Samples when several were. Callers depend on this unwrap
// asymmetry. Usage is summed across all samples either way.
type LocationsResult struct {
	Locations  []FileLocations   // Single-sample parse, nil when N > 1
	Samples    [][]FileLocations // Per-sample parses, nil when N == 1
	Prompt     string            // The prompt that was sent
	RawOutputs []string          // Raw response text per sample
	Usage      TokenUsage        // Merged token accounting
}
