// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locate implements the narrowing stages of the localization
// pipeline: whole repository to files, files to symbols, symbols to lines,
// plus the divide-and-conquer variant for very large repositories.
package locate

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/internal/locparse"
	"github.com/petar-djukic/go-localizer/internal/oracle"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var stageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	// defaultOutputTokens bounds narrowing-stage responses.
	defaultOutputTokens = 300
	// folderOutputTokens bounds the irrelevant-folders response, which
	// enumerates paths rather than a shortlist.
	folderOutputTokens = 2048
)

// templateData holds the values injected into stage prompt templates.
type templateData struct {
	ProblemStatement string
	Structure        string
	FileContents     string
	TopN             int
}

// Deps holds injected dependencies for a Localizer. The index is built once
// and read-only; the Localizer never mutates it.
type Deps struct {
	Oracle           oracle.Oracle  // Relevance judge (required)
	Index            *index.Dir     // Structural repository index (required)
	ProblemStatement string         // The natural-language problem report
	Log              zerolog.Logger // Stage logging
	ContextBudget    int            // Prompt token budget (default 128000)
	OutputTokens     int            // Response token cap (default 300)
	Mock             bool           // Build prompts but never call the oracle
}

// Localizer runs narrowing stages over one repository index for one problem
// statement.
type Localizer struct {
	deps   Deps
	parser locparse.Parser
}

// New creates a Localizer. The parser's known-path set is fixed to the
// index's file list for the lifetime of the run.
func New(deps Deps) *Localizer {
	if deps.ContextBudget == 0 {
		deps.ContextBudget = budget.DefaultBudget
	}
	if deps.OutputTokens == 0 {
		deps.OutputTokens = defaultOutputTokens
	}
	return &Localizer{
		deps: deps,
		parser: locparse.Parser{
			Known: index.AllFiles(deps.Index),
			Log:   deps.Log,
		},
	}
}

// renderTemplate executes one embedded stage template.
func renderTemplate(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := stageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// LocalizeFiles runs the files stage: the whole repository structure goes to
// the oracle, which answers with up to topN file paths ordered most to least
// important. The stage preserves that order verbatim.
func (l *Localizer) LocalizeFiles(ctx context.Context, topN int) (*types.FilesResult, error) {
	prompt, err := renderTemplate("files.tmpl", templateData{
		ProblemStatement: l.deps.ProblemStatement,
		Structure:        index.RenderStructure(l.deps.Index),
		TopN:             topN,
	})
	if err != nil {
		return nil, err
	}
	l.logPrompt("files", prompt)

	result := &types.FilesResult{Prompt: prompt}
	if l.deps.Mock {
		result.Usage.PromptTokens = l.deps.Oracle.CountTokens(prompt)
		return result, nil
	}

	gens, err := l.deps.Oracle.Codegen(ctx, prompt, oracle.Options{
		MaxTokens: l.deps.OutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("files stage: %w", err)
	}

	result.RawOutput = gens[0].Response
	result.Usage = gens[0].Usage
	result.Found = l.parser.FileList(result.RawOutput)

	l.deps.Log.Info().Strs("files", result.Found).Msg("files stage complete")
	return result, nil
}

// LocalizeIrrelevantFolders runs the elimination stage: the oracle declares
// folder prefixes irrelevant, and the stage computes the complement over the
// indexed files. A declared folder excludes every file whose path starts
// with that folder string, nested subfolders included.
func (l *Localizer) LocalizeIrrelevantFolders(ctx context.Context) (*types.FoldersResult, error) {
	prompt, err := renderTemplate("irrelevant_folders.tmpl", templateData{
		ProblemStatement: l.deps.ProblemStatement,
		Structure:        index.RenderStructure(l.deps.Index),
	})
	if err != nil {
		return nil, err
	}
	l.logPrompt("irrelevant-folders", prompt)

	result := &types.FoldersResult{Prompt: prompt}
	if l.deps.Mock {
		result.Usage.PromptTokens = l.deps.Oracle.CountTokens(prompt)
		return result, nil
	}

	gens, err := l.deps.Oracle.Codegen(ctx, prompt, oracle.Options{
		MaxTokens: folderOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("irrelevant-folders stage: %w", err)
	}

	result.RawOutput = gens[0].Response
	result.Usage = gens[0].Usage

	prefixes := irrelevantPrefixes(result.RawOutput)
	for _, file := range l.parser.Known {
		if matchesAnyPrefix(file, prefixes) {
			result.Filtered = append(result.Filtered, file)
		} else {
			result.Kept = append(result.Kept, file)
		}
	}

	l.deps.Log.Info().
		Int("kept", len(result.Kept)).
		Int("filtered", len(result.Filtered)).
		Msg("irrelevant-folders stage complete")
	return result, nil
}

// irrelevantPrefixes keeps the response lines that plausibly name a folder
// or an indexed source file; everything else is oracle chatter.
func irrelevantPrefixes(raw string) []string {
	var prefixes []string
	for _, line := range strings.Split(locparse.FencedBlock(raw), "\n") {
		entry := strings.TrimSpace(line)
		if entry == "" || strings.ContainsAny(entry, " \t") {
			continue
		}
		if strings.HasSuffix(entry, "/") || isSourcePath(entry) {
			prefixes = append(prefixes, entry)
		}
	}
	return prefixes
}

func isSourcePath(p string) bool {
	ext := path.Ext(p)
	for _, known := range index.SourceExtensions() {
		if ext == known {
			return true
		}
	}
	return false
}

func matchesAnyPrefix(file string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

// logPrompt traces the full prompt at debug level, as every stage does.
func (l *Localizer) logPrompt(stage, prompt string) {
	l.deps.Log.Debug().Str("stage", stage).Int("chars", len(prompt)).Msg("prompting oracle")
	l.deps.Log.Trace().Str("stage", stage).Str("prompt", prompt).Msg("full prompt")
}
