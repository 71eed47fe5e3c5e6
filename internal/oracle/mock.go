// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"fmt"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// Mock is an Oracle that replays canned responses in order. Tests and the
// offline CLI mode use it in place of Bedrock.
type Mock struct {
	Responses []string // Consumed one per Codegen call, last one repeats
	Err       error    // Returned from every Codegen call when set

	Prompts []string // Every prompt received, in order
	calls   int
	count   budget.CountFunc
}

// NewMock creates a mock oracle replaying the given responses.
func NewMock(responses ...string) *Mock {
	return &Mock{Responses: responses, count: budget.Estimator()}
}

// Codegen records the prompt and returns NumSamples copies of the next
// canned response, with estimated token usage.
func (m *Mock) Codegen(ctx context.Context, prompt string, opts Options) ([]Generation, error) {
	opts.defaults()
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleFailure, m.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleFailure, err)
	}

	response := ""
	if len(m.Responses) > 0 {
		i := m.calls
		if i >= len(m.Responses) {
			i = len(m.Responses) - 1
		}
		response = m.Responses[i]
	}
	m.calls++

	gens := make([]Generation, 0, opts.NumSamples)
	for i := 0; i < opts.NumSamples; i++ {
		gens = append(gens, Generation{
			Response: response,
			Usage: types.TokenUsage{
				PromptTokens:     m.count(prompt),
				CompletionTokens: m.count(response),
			},
		})
	}
	return gens, nil
}

// CountTokens approximates token length with the byte estimator.
func (m *Mock) CountTokens(text string) int {
	return m.count(text)
}

// Calls returns how many Codegen invocations the mock has served.
func (m *Mock) Calls() int {
	return m.calls
}
