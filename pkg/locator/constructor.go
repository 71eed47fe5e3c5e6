// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-localizer/internal/locate"
	"github.com/petar-djukic/go-localizer/internal/oracle"
	"github.com/petar-djukic/go-localizer/internal/runlog"
)

const defaultOracleTimeout = 5 * time.Minute

// New validates the config, initializes the oracle client, and returns a
// ready-to-use Locator. It does not index the repository; that happens in
// Run.
func New(cfg Config) (Locator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	var judge oracle.Oracle
	if cfg.Mock {
		judge = oracle.NewMock()
	} else {
		client, err := oracle.NewClient(context.Background(), oracle.ClientConfig{
			ModelID: cfg.Model,
			Region:  cfg.Region,
			Timeout: defaultOracleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOracleFailure, err)
		}
		judge = client
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	var runLog *runlog.Writer
	if cfg.RunLog != nil {
		runLog = runlog.NewWriter(cfg.RunLog)
	}

	runner := locate.NewRunner(locate.RunnerDeps{
		Oracle:        judge,
		WorkDir:       cfg.WorkDir,
		Commit:        cfg.Commit,
		Log:           log,
		RunLog:        runLog,
		TopN:          cfg.TopN,
		ContextBudget: cfg.ContextBudget,
		NumSamples:    cfg.NumSamples,
		Temperature:   cfg.Temperature,
		ContextWindow: cfg.ContextWindow,
		NoLineNumber:  cfg.NoLineNumber,
		RawFiles:      cfg.RawFiles,
		Partition:     cfg.Partition,
		Mock:          cfg.Mock,
	})

	return &locatorAdapter{runner: runner}, nil
}

// locatorAdapter adapts locate.Runner to the public Locator interface.
type locatorAdapter struct {
	runner *locate.Runner
}

func (a *locatorAdapter) Run(ctx context.Context, problem string) (*Result, error) {
	ir, err := a.runner.Run(ctx, problem)
	if ir == nil {
		return &Result{}, err
	}
	return &Result{
		Files:      ir.Files,
		Locations:  ir.Locations,
		Samples:    ir.Samples,
		TokensUsed: ir.TokensUsed,
	}, err
}

func (a *locatorAdapter) EliminateFolders(ctx context.Context, problem string) (*FoldersResult, error) {
	fr, err := a.runner.EliminateFolders(ctx, problem)
	if fr == nil {
		return &FoldersResult{}, err
	}
	return &FoldersResult{
		Kept:       fr.Kept,
		Filtered:   fr.Filtered,
		TokensUsed: fr.Usage,
	}, err
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Mock {
		return nil
	}
	if cfg.Model == "" {
		return fmt.Errorf("Model is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("Region is required")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.TopN == 0 {
		cfg.TopN = 5
	}
	if cfg.ContextWindow == 0 {
		cfg.ContextWindow = 10
	}
	if cfg.NumSamples == 0 {
		cfg.NumSamples = 1
	}
}
