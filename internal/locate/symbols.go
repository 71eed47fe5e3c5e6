// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"fmt"
	"strings"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/internal/locparse"
	"github.com/petar-djukic/go-localizer/internal/oracle"
	"github.com/petar-djukic/go-localizer/internal/render"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// SampleOptions control temperature-diversified sampling for the symbols
// and lines stages.
type SampleOptions struct {
	Temperature       float32 // Oracle sampling temperature
	NumSamples        int     // Independent samples (default 1)
	KeepOriginalOrder bool    // Preserve the oracle's file emission order
}

// SymbolsOptions configure the symbols stage.
type SymbolsOptions struct {
	SampleOptions
	Skeleton render.SkeletonOptions // Elision knobs for the skeleton variant
}

// LocalizeSymbolsFromSkeletons runs the symbols stage over compressed file
// views: declaration signatures with large bodies elided. Candidate files
// must arrive pre-sorted most relevant first; on budget overflow the least
// relevant file is dropped and the context rebuilt.
func (l *Localizer) LocalizeSymbolsFromSkeletons(ctx context.Context, fileNames []string, opts SymbolsOptions) (*types.LocationsResult, error) {
	chunks := l.fileChunks(fileNames, true, func(rec types.FileRecord) string {
		return render.Skeleton(rec, opts.Skeleton)
	})
	return l.runLocationStage(ctx, "symbols", "symbols_skeleton.tmpl", fileNames, chunks, opts.SampleOptions)
}

// LocalizeSymbolsFromRawText runs the symbols stage over full file text.
func (l *Localizer) LocalizeSymbolsFromRawText(ctx context.Context, fileNames []string, opts SampleOptions) (*types.LocationsResult, error) {
	chunks := l.fileChunks(fileNames, false, func(rec types.FileRecord) string {
		return strings.Join(rec.Lines, "\n")
	})
	return l.runLocationStage(ctx, "symbols", "symbols_raw.tmpl", fileNames, chunks, opts)
}

// fileChunks renders one droppable context chunk per candidate file that has
// a record in the index, preserving candidate order. Files the index does
// not know are skipped with a warning rather than failing the stage.
func (l *Localizer) fileChunks(fileNames []string, fenced bool, content func(types.FileRecord) string) []budget.Chunk {
	chunks := make([]budget.Chunk, 0, len(fileNames))
	for _, name := range fileNames {
		f, ok := index.Record(l.deps.Index, name)
		if !ok {
			l.deps.Log.Warn().Str("file", name).Msg("candidate file not in index, skipping")
			continue
		}
		chunks = append(chunks, fileChunk(name, content(f), fenced))
	}
	return chunks
}

// fileChunk renders one file block in the stage context, fenced for
// skeleton views and plain otherwise.
func fileChunk(name, body string, fenced bool) budget.Chunk {
	var text string
	if fenced {
		text = fmt.Sprintf("\n### File: %s ###\n```\n%s\n```\n", name, body)
	} else {
		text = fmt.Sprintf("\n### File: %s ###\n%s\n", name, body)
	}
	return budget.Chunk{Key: name, Text: text}
}

// runLocationStage is the shared fit-call-parse cycle of the symbols and
// lines stages: fit chunks to the budget, prompt the oracle N times, parse
// every sample, and merge token accounting.
func (l *Localizer) runLocationStage(ctx context.Context, stage, tmplName string, fileNames []string, chunks []budget.Chunk, opts SampleOptions) (*types.LocationsResult, error) {
	if opts.NumSamples == 0 {
		opts.NumSamples = 1
	}

	fixed, err := renderTemplate(tmplName, templateData{
		ProblemStatement: l.deps.ProblemStatement,
	})
	if err != nil {
		return nil, err
	}

	kept, err := budget.Fit(stage, fixed, chunks, oracle.Counter(l.deps.Oracle), l.deps.ContextBudget)
	if err != nil {
		return nil, err
	}
	if len(kept) < len(chunks) {
		l.deps.Log.Info().
			Str("stage", stage).
			Int("kept", len(kept)).
			Int("candidates", len(chunks)).
			Msg("reduced candidate files to fit context budget")
	}

	var contents strings.Builder
	for _, c := range kept {
		contents.WriteString(c.Text)
	}
	prompt, err := renderTemplate(tmplName, templateData{
		ProblemStatement: l.deps.ProblemStatement,
		FileContents:     contents.String(),
	})
	if err != nil {
		return nil, err
	}
	l.logPrompt(stage, prompt)

	result := &types.LocationsResult{Prompt: prompt}
	if l.deps.Mock {
		result.Usage.PromptTokens = l.deps.Oracle.CountTokens(prompt)
		return result, nil
	}

	gens, err := l.deps.Oracle.Codegen(ctx, prompt, oracle.Options{
		NumSamples:  opts.NumSamples,
		Temperature: opts.Temperature,
		MaxTokens:   l.deps.OutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}

	parser := locparse.Parser{Known: fileNames, Log: l.deps.Log}
	samples := make([][]types.FileLocations, 0, len(gens))
	for _, gen := range gens {
		result.RawOutputs = append(result.RawOutputs, gen.Response)
		result.Usage = result.Usage.Add(gen.Usage)
		samples = append(samples, parser.Locations(gen.Response, opts.KeepOriginalOrder))
	}

	// Unwrap when a single sample was requested; callers rely on this.
	if opts.NumSamples == 1 {
		result.Locations = samples[0]
	} else {
		result.Samples = samples
	}

	l.deps.Log.Info().
		Str("stage", stage).
		Int("samples", len(samples)).
		Msg("location stage complete")
	return result, nil
}
