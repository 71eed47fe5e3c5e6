// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package budget fits an ordered set of context chunks into a hard token
// budget by dropping candidates from the tail until the assembled prompt
// fits. Callers supply candidates pre-sorted most relevant first.
package budget

import "fmt"

// DefaultBudget is the context budget for narrowing-stage prompts.
const DefaultBudget = 128000

// defaultBytesPerToken drives the fallback token estimator.
const defaultBytesPerToken = 4

// CountFunc measures a text in tokens. Stages receive one from the oracle
// collaborator; Estimator provides an approximation when none is available.
type CountFunc func(text string) int

// Estimator returns an approximate counter: tokens ≈ ceil(bytes/4).
func Estimator() CountFunc {
	return func(s string) int {
		n := len(s)
		if n == 0 {
			return 0
		}
		return (n + defaultBytesPerToken - 1) / defaultBytesPerToken
	}
}

// Chunk is one droppable piece of context, typically a rendered file block.
// Key identifies what was dropped (a file path).
type Chunk struct {
	Key  string
	Text string
}

// ContextTooLargeError reports that a prompt cannot fit the budget even
// after dropping every droppable chunk but one. Content is never truncated
// mid-chunk instead; a cut inside a declaration would corrupt parsing later.
type ContextTooLargeError struct {
	Stage  string // Narrowing stage that assembled the prompt
	Chunks int    // Chunks remaining when fitting gave up
	Tokens int    // Measured token total of the final attempt
	Budget int    // The budget that was exceeded
}

func (e *ContextTooLargeError) Error() string {
	return fmt.Sprintf("%s: context too large: %d tokens over a budget of %d with %d chunk(s) remaining",
		e.Stage, e.Tokens, e.Budget, e.Chunks)
}

// Fit assembles fixed+chunks and drops the lowest-priority (last) chunk
// until the total token count is under budget. It returns the surviving
// chunks, a prefix of the input, unchanged when everything already fits.
// When a single chunk still overflows, it returns a *ContextTooLargeError
// tagged with the stage name.
func Fit(stage, fixed string, chunks []Chunk, count CountFunc, limit int) ([]Chunk, error) {
	kept := shrinkUntilFits(fixed, chunks, count, limit)
	if total := count(Assemble(fixed, kept)); total >= limit {
		return nil, &ContextTooLargeError{
			Stage:  stage,
			Chunks: len(kept),
			Tokens: total,
			Budget: limit,
		}
	}
	return kept, nil
}

// Assemble concatenates the fixed text with the chunk texts in order.
func Assemble(fixed string, chunks []Chunk) string {
	text := fixed
	for _, c := range chunks {
		text += c.Text
	}
	return text
}

// shrinkUntilFits returns the longest prefix of chunks whose assembly with
// the fixed text fits under the limit, never shrinking below one chunk.
// Pure: the input slice is not mutated.
func shrinkUntilFits(fixed string, chunks []Chunk, count CountFunc, limit int) []Chunk {
	kept := chunks
	for len(kept) > 1 && count(Assemble(fixed, kept)) >= limit {
		kept = kept[:len(kept)-1]
	}
	return kept
}
