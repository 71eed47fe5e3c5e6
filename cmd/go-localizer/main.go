// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-localizer is a test CLI for the go-localizer library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "go-localizer",
		Short: "Coarse-to-fine fault localization",
		Long:  "go-localizer takes a natural language problem statement and narrows it down to the files, symbols, and line numbers in a repository that need to change.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Repository root directory")
	rootCmd.PersistentFlags().String("model", "", "Bedrock model ID")
	rootCmd.PersistentFlags().String("region", "", "AWS region for Bedrock")
	rootCmd.PersistentFlags().String("commit", "", "Revision to check out before indexing")
	rootCmd.PersistentFlags().Int("top-n", 5, "Number of files to shortlist")
	rootCmd.PersistentFlags().Int("context-budget", 128000, "Prompt token budget")
	rootCmd.PersistentFlags().Int("num-samples", 1, "Oracle samples for symbol and line stages")
	rootCmd.PersistentFlags().Float32("temperature", 0, "Sampling temperature")
	rootCmd.PersistentFlags().Int("context-window", 10, "Lines of context around line-stage hits")
	rootCmd.PersistentFlags().Bool("no-line-number", false, "Solicit symbol names instead of line numbers")
	rootCmd.PersistentFlags().Bool("raw-files", false, "Send full file text instead of skeletons")
	rootCmd.PersistentFlags().Bool("partition", false, "Split the files stage across top-level directories")
	rootCmd.PersistentFlags().Bool("mock", false, "Build prompts and count tokens without calling the oracle")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("run-log", "", "Path for a JSONL record of each stage")

	// Bind flags to viper.
	for _, name := range []string{
		"workdir", "model", "region", "commit", "top-n", "context-budget",
		"num-samples", "temperature", "context-window", "no-line-number",
		"raw-files", "partition", "mock", "log-level", "run-log",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: GO_LOCALIZER_MODEL, GO_LOCALIZER_REGION, etc.
	viper.SetEnvPrefix("GO_LOCALIZER")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-localizer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newLocalizeCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newStructureCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-localizer version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-localizer %s\n", version)
		},
	}
}
