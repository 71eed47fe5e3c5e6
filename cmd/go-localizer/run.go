// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/pkg/locator"
)

// newLocalizeCmd creates the "localize" command.
func newLocalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "localize",
		Short: "Localize a problem statement to edit locations",
		Long:  "Localize narrows a natural language problem statement to a ranked file shortlist, then to symbols, then to line-level edit locations.",
		RunE:  runLocalize,
	}

	cmd.Flags().StringP("problem", "p", "", "Problem statement (required)")
	cmd.MarkFlagRequired("problem")

	return cmd
}

// newFoldersCmd creates the "folders" command.
func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Rule out irrelevant folders for a problem statement",
		Long:  "Folders asks the oracle which directories cannot contain the fault and prints the files that remain, the cheap first cut before a full localization run.",
		RunE:  runFolders,
	}

	cmd.Flags().StringP("problem", "p", "", "Problem statement (required)")
	cmd.MarkFlagRequired("problem")

	return cmd
}

// newLocator assembles a Locator from the bound flags. The returned cleanup
// closes the run-log file when one was opened.
func newLocator() (locator.Locator, func(), error) {
	log := newLogger(viper.GetString("log-level"))

	cleanup := func() {}
	var runLog io.Writer
	if path := viper.GetString("run-log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening run log: %w", err)
		}
		cleanup = func() { f.Close() }
		runLog = f
	}

	cfg := locator.Config{
		WorkDir:       viper.GetString("workdir"),
		Model:         viper.GetString("model"),
		Region:        viper.GetString("region"),
		Commit:        viper.GetString("commit"),
		TopN:          viper.GetInt("top-n"),
		ContextBudget: viper.GetInt("context-budget"),
		NumSamples:    viper.GetInt("num-samples"),
		Temperature:   float32(viper.GetFloat64("temperature")),
		ContextWindow: viper.GetInt("context-window"),
		NoLineNumber:  viper.GetBool("no-line-number"),
		RawFiles:      viper.GetBool("raw-files"),
		Partition:     viper.GetBool("partition"),
		Mock:          viper.GetBool("mock"),
		Logger:        &log,
		RunLog:        runLog,
	}

	l, err := locator.New(cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("initialization failed: %w", err)
	}
	return l, cleanup, nil
}

// runLocalize executes the localization pipeline.
func runLocalize(cmd *cobra.Command, args []string) error {
	problem, _ := cmd.Flags().GetString("problem")

	l, cleanup, err := newLocator()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := l.Run(ctx, problem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil {
			printJSON(result)
		}
		return err
	}

	printJSON(result)
	return nil
}

// runFolders executes the elimination stage only.
func runFolders(cmd *cobra.Command, args []string) error {
	problem, _ := cmd.Flags().GetString("problem")

	l, cleanup, err := newLocator()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := l.EliminateFolders(ctx, problem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	printJSON(result)
	return nil
}

// printJSON outputs a result as indented JSON to stdout.
func printJSON(result any) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// newStructureCmd creates the "structure" command.
func newStructureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Print the indexed repository structure",
		Long:  "Structure indexes the repository and prints the directory tree the way the files stage presents it to the oracle, or the full nested index as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(viper.GetString("log-level"))

			ix := index.NewIndexer(log)
			root, err := ix.Build(cmd.Context(), viper.GetString("workdir"))
			if err != nil {
				return fmt.Errorf("indexing repository: %w", err)
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				out, err := json.MarshalIndent(root, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling structure: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Print(index.RenderStructure(root))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Emit the nested index (declarations and lines per file) as JSON")

	return cmd
}

// newLogger builds a console logger at the given level.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
