// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package oracle wraps the relevance-ranking generative model the pipeline
// queries. The pipeline treats it as a blocking black box: prompt in, ranked
// text out, with token accounting.
package oracle

import (
	"context"
	"errors"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// ErrOracleFailure indicates the oracle call failed (network, auth, rate
// limit). It is fatal everywhere except the partition boundary.
var ErrOracleFailure = errors.New("oracle failure")

// Generation is one sampled response from the oracle.
type Generation struct {
	Response string           // Raw response text
	Usage    types.TokenUsage // Token accounting for this sample
}

// Options bound a single Codegen call.
type Options struct {
	NumSamples  int     // Independent samples to draw (default 1)
	Temperature float32 // Sampling temperature; 0 must be deterministic
	MaxTokens   int     // Output token cap (default 300, the narrowing default)
}

func (o *Options) defaults() {
	if o.NumSamples == 0 {
		o.NumSamples = 1
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = 300
	}
}

// Oracle is the external relevance judge. CountTokens measures prompt text
// against the stage budget; implementations may approximate.
type Oracle interface {
	Codegen(ctx context.Context, prompt string, opts Options) ([]Generation, error)
	CountTokens(text string) int
}

// Counter adapts an Oracle's token counting to the budget fitter.
func Counter(o Oracle) budget.CountFunc {
	return o.CountTokens
}
