// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-localizer/internal/gitrepo"
	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/internal/oracle"
	"github.com/petar-djukic/go-localizer/internal/render"
	"github.com/petar-djukic/go-localizer/internal/runlog"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// RunnerDeps holds injected dependencies for the end-to-end pipeline.
type RunnerDeps struct {
	Oracle        oracle.Oracle  // Relevance judge (required)
	WorkDir       string         // Repository root (required)
	Commit        string         // Revision to check out first (optional)
	Log           zerolog.Logger // Pipeline logging
	RunLog        *runlog.Writer // Persisted-run log (optional)
	TopN          int            // Files-stage shortlist size (default 5)
	ContextBudget int            // Prompt token budget (default 128000)
	NumSamples    int            // Samples for symbol/line stages (default 1)
	Temperature   float32        // Sampling temperature for those samples
	ContextWindow int            // Lines of context around line-stage hits
	NoLineNumber  bool           // Solicit symbol names only in the lines stage
	RawFiles      bool           // Full file text instead of skeletons
	Partition     bool           // Divide and conquer over top-level dirs
	Mock          bool           // Build prompts but never call the oracle
}

// RunResult is the outcome of one full localization run.
type RunResult struct {
	Files      []string                // Files-stage shortlist, ranked
	Locations  []types.FileLocations   // Final per-file edit locations (N=1)
	Samples    [][]types.FileLocations // Per-sample locations (N>1)
	TokensUsed types.TokenUsage        // Total across all stages
}

// Runner orchestrates the coarse-to-fine run: checkout, index, files stage
// (partitioned or not), symbols stage, lines stage.
type Runner struct {
	deps RunnerDeps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps RunnerDeps) *Runner {
	if deps.TopN == 0 {
		deps.TopN = 5
	}
	return &Runner{deps: deps}
}

// prepare pins the revision if one was requested, indexes the working tree,
// and builds the Localizer every stage entry point runs against.
func (r *Runner) prepare(ctx context.Context, problem string) (*Localizer, error) {
	if r.deps.Commit != "" {
		repo, err := gitrepo.Open(r.deps.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("opening repository: %w", err)
		}
		if err := repo.Checkout(r.deps.Commit); err != nil {
			return nil, fmt.Errorf("pinning revision: %w", err)
		}
		r.deps.Log.Info().Str("commit", r.deps.Commit).Msg("working tree pinned")
	}

	ix := index.NewIndexer(r.deps.Log)
	root, err := ix.Build(ctx, r.deps.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("indexing repository: %w", err)
	}

	return New(Deps{
		Oracle:           r.deps.Oracle,
		Index:            root,
		ProblemStatement: problem,
		Log:              r.deps.Log,
		ContextBudget:    r.deps.ContextBudget,
		Mock:             r.deps.Mock,
	}), nil
}

// EliminateFolders runs the elimination stage on its own: the oracle names
// folders that cannot matter for the problem, and the complement of the
// indexed files comes back as the kept set.
func (r *Runner) EliminateFolders(ctx context.Context, problem string) (*types.FoldersResult, error) {
	loc, err := r.prepare(ctx, problem)
	if err != nil {
		return nil, err
	}

	res, err := loc.LocalizeIrrelevantFolders(ctx)
	if err != nil {
		return nil, err
	}
	r.writeLog(runlog.FoldersRecord(res))
	return res, nil
}

// Run executes the full pipeline for one problem statement.
func (r *Runner) Run(ctx context.Context, problem string) (*RunResult, error) {
	result := &RunResult{}

	loc, err := r.prepare(ctx, problem)
	if err != nil {
		return result, err
	}

	// Stage 1: repository → files.
	var filesRes *types.FilesResult
	if r.deps.Partition {
		filesRes, err = loc.LocalizeLargeRepo(ctx, r.deps.TopN)
	} else {
		filesRes, err = loc.LocalizeFiles(ctx, r.deps.TopN)
	}
	if err != nil {
		return result, err
	}
	r.writeLog(runlog.FilesRecord(stageName("files", r.deps.Partition), filesRes))
	result.Files = filesRes.Found
	result.TokensUsed = result.TokensUsed.Add(filesRes.Usage)

	if len(result.Files) == 0 {
		// Mock runs and empty oracle answers end here.
		return result, nil
	}

	// Stage 2: files → symbols.
	var symRes *types.LocationsResult
	if r.deps.RawFiles {
		symRes, err = loc.LocalizeSymbolsFromRawText(ctx, result.Files, r.sampleOptions())
	} else {
		symRes, err = loc.LocalizeSymbolsFromSkeletons(ctx, result.Files, SymbolsOptions{
			SampleOptions: r.sampleOptions(),
		})
	}
	if err != nil {
		return result, err
	}
	r.writeLog(runlog.LocationsRecord("symbols", symRes))
	result.TokensUsed = result.TokensUsed.Add(symRes.Usage)

	coarseSets := symRes.Samples
	if symRes.Locations != nil {
		coarseSets = [][]types.FileLocations{symRes.Locations}
	}

	// Stage 3: symbols → lines. Each symbol sample narrows independently;
	// the per-sample line sets merge afterwards.
	var lineResults []*types.LocationsResult
	for _, coarse := range coarseSets {
		if len(coarse) == 0 {
			continue
		}
		res, err := loc.LocalizeLinesFromSymbols(ctx, coarse, LinesOptions{
			SampleOptions: SampleOptions{Temperature: r.deps.Temperature, NumSamples: 1},
			Window: render.WindowOptions{
				ContextWindow: r.deps.ContextWindow,
				NoLineNumber:  r.deps.NoLineNumber,
			},
		})
		if err != nil {
			return result, err
		}
		lineResults = append(lineResults, res)
	}
	if len(lineResults) == 0 {
		return result, nil
	}

	linesRes := MergeLocations(lineResults)
	r.writeLog(runlog.LocationsRecord("lines", linesRes))
	result.TokensUsed = result.TokensUsed.Add(linesRes.Usage)
	result.Locations = linesRes.Locations
	result.Samples = linesRes.Samples

	return result, nil
}

func (r *Runner) sampleOptions() SampleOptions {
	return SampleOptions{
		Temperature: r.deps.Temperature,
		NumSamples:  r.deps.NumSamples,
	}
}

func (r *Runner) writeLog(rec runlog.Record) {
	if r.deps.RunLog == nil {
		return
	}
	if err := r.deps.RunLog.Write(rec); err != nil {
		r.deps.Log.Warn().Err(err).Msg("run log write failed")
	}
}

func stageName(base string, partitioned bool) string {
	if partitioned {
		return base + "-partitioned"
	}
	return base
}
