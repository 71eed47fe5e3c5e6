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
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// subdirHit tags a files-stage hit with the partition that produced it.
type subdirHit struct {
	path   string
	subdir string
}

// LocalizeLargeRepo localizes a very large repository by divide and
// conquer: one files stage per top-level subdirectory, each scoped to that
// partition's subtree, then one final oracle call choosing the overall
// top-N across partitions. Partition failures are skipped, never fatal.
// When mock mode is on or no partition produced hits, the result is a plain
// first-N truncation of the collected hits, the deterministic fallback.
func (l *Localizer) LocalizeLargeRepo(ctx context.Context, topN int) (*types.FilesResult, error) {
	var hits []subdirHit
	var usage types.TokenUsage

	for _, subdir := range index.TopDirs(l.deps.Index) {
		sub, ok := index.Subtree(l.deps.Index, subdir)
		if !ok {
			continue
		}

		partition := New(Deps{
			Oracle:           l.deps.Oracle,
			Index:            sub,
			ProblemStatement: l.deps.ProblemStatement,
			Log:              l.deps.Log.With().Str("partition", subdir).Logger(),
			ContextBudget:    l.deps.ContextBudget,
			OutputTokens:     l.deps.OutputTokens,
			Mock:             l.deps.Mock,
		})

		res, err := partition.LocalizeFiles(ctx, topN)
		if err != nil {
			l.deps.Log.Warn().Err(err).Str("partition", subdir).Msg("partition localization failed, skipping")
			continue
		}
		usage = usage.Add(res.Usage)
		for _, path := range res.Found {
			hits = append(hits, subdirHit{path: path, subdir: subdir})
		}
	}

	if l.deps.Mock || len(hits) == 0 {
		return &types.FilesResult{Found: truncateHits(hits, topN), Usage: usage}, nil
	}

	return l.rerankAcrossPartitions(ctx, hits, topN, usage)
}

// rerankAcrossPartitions issues the final cross-partition oracle call: the
// collected hits grouped per partition, asking for the overall top-N. The
// re-rank prompt is budget-fitted like any other stage context, dropping
// whole partition groups from the tail on overflow.
func (l *Localizer) rerankAcrossPartitions(ctx context.Context, hits []subdirHit, topN int, usage types.TokenUsage) (*types.FilesResult, error) {
	chunks := groupBySubdir(hits)

	fixed, err := renderTemplate("rerank.tmpl", templateData{
		ProblemStatement: l.deps.ProblemStatement,
		TopN:             topN,
	})
	if err != nil {
		return nil, err
	}

	kept, err := budget.Fit("rerank", fixed, chunks, oracle.Counter(l.deps.Oracle), l.deps.ContextBudget)
	if err != nil {
		return nil, err
	}

	var contents strings.Builder
	for _, c := range kept {
		contents.WriteString(c.Text)
	}
	prompt, err := renderTemplate("rerank.tmpl", templateData{
		ProblemStatement: l.deps.ProblemStatement,
		FileContents:     contents.String(),
		TopN:             topN,
	})
	if err != nil {
		return nil, err
	}
	l.logPrompt("rerank", prompt)

	gens, err := l.deps.Oracle.Codegen(ctx, prompt, oracle.Options{
		MaxTokens: folderOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank stage: %w", err)
	}

	result := &types.FilesResult{
		Prompt:    prompt,
		RawOutput: gens[0].Response,
		Usage:     usage.Add(gens[0].Usage),
	}

	known := make([]string, 0, len(hits))
	for _, h := range hits {
		known = append(known, h.path)
	}
	parser := locparse.Parser{Known: known, Log: l.deps.Log}

	result.Found = parser.FileList(result.RawOutput)
	if len(result.Found) > topN {
		result.Found = result.Found[:topN]
	}
	if len(result.Found) == 0 {
		// Unparseable re-rank output: fall back to plain truncation.
		result.Found = truncateHits(hits, topN)
	}

	l.deps.Log.Info().Strs("files", result.Found).Msg("cross-partition rerank complete")
	return result, nil
}

// groupBySubdir renders one droppable prompt chunk per partition, hits
// numbered within their group, preserving partition discovery order.
func groupBySubdir(hits []subdirHit) []budget.Chunk {
	var order []string
	grouped := make(map[string][]string)
	for _, h := range hits {
		if _, ok := grouped[h.subdir]; !ok {
			order = append(order, h.subdir)
		}
		grouped[h.subdir] = append(grouped[h.subdir], h.path)
	}

	chunks := make([]budget.Chunk, 0, len(order))
	for _, subdir := range order {
		var b strings.Builder
		fmt.Fprintf(&b, "\n### %s ###\n", subdir)
		for i, path := range grouped[subdir] {
			fmt.Fprintf(&b, "%d. %s\n", i+1, path)
		}
		chunks = append(chunks, budget.Chunk{Key: subdir, Text: b.String()})
	}
	return chunks
}

func truncateHits(hits []subdirHit, topN int) []string {
	found := make([]string, 0, topN)
	for _, h := range hits {
		if len(found) == topN {
			break
		}
		found = append(found, h.path)
	}
	return found
}
