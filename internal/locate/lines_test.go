// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-localizer/internal/oracle"
	"github.com/petar-djukic/go-localizer/internal/render"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

var linesRepo = map[string]string{
	"src/sched.c": bigBody("schedule", 40),
	"src/queue.c": bigBody("enqueue", 40),
}

func coarseFor(path string, locs ...string) types.FileLocations {
	return types.FileLocations{FilePath: path, Locations: locs}
}

func TestLocalizeLines_WindowedExcerptAroundSymbol(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\nline: 7\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromSymbols(context.Background(),
		[]types.FileLocations{coarseFor("src/sched.c", "function: schedule")},
		LinesOptions{})

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "### File: src/sched.c ###")
	assert.Contains(t, res.Prompt, "1 int schedule(void) {", "excerpt lines are numbered")
	require.Len(t, res.Locations, 1)
	assert.Equal(t, []string{"line: 7"}, res.Locations[0].Locations)
}

func TestLocalizeLines_WindowAroundLineLocation(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\nline: 20\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromSymbols(context.Background(),
		[]types.FileLocations{coarseFor("src/sched.c", "line: 20")},
		LinesOptions{Window: render.WindowOptions{ContextWindow: 2}})

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "18 ")
	assert.Contains(t, res.Prompt, "22 ")
	assert.NotContains(t, res.Prompt, "30 \t")
}

func TestLocalizeLines_UnresolvableFileDropped(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\nline: 7\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromSymbols(context.Background(),
		[]types.FileLocations{
			coarseFor("src/sched.c", "function: schedule"),
			coarseFor("ghost.c", "function: nothing"),
			coarseFor("src/queue.c", "function: no_such_symbol"),
		},
		LinesOptions{})

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "src/sched.c")
	assert.NotContains(t, res.Prompt, "ghost.c")
	assert.NotContains(t, res.Prompt, "### File: src/queue.c ###",
		"a file whose locations all fail to resolve renders no excerpt")
}

func TestLocalizeLines_NoLineNumberVariant(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\nfunction: schedule\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromSymbols(context.Background(),
		[]types.FileLocations{coarseFor("src/sched.c", "function: schedule")},
		LinesOptions{Window: render.WindowOptions{NoLineNumber: true}})

	require.NoError(t, err)
	assert.NotContains(t, res.Prompt, "1 int schedule(void) {")
	assert.Contains(t, res.Prompt, "int schedule(void) {")
	assert.Contains(t, res.Prompt, "class, method, or function names")
	require.Len(t, res.Locations, 1)
}

func TestLocalizeLines_FromRawText(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/queue.c\nline: 3\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromRawText(context.Background(), []string{"src/queue.c"}, SampleOptions{})

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "1 int enqueue(void) {")
	require.Len(t, res.Locations, 1)
	assert.Equal(t, "src/queue.c", res.Locations[0].FilePath)
}

func TestLocalizeLines_MultiSample(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\nline: 7\n```")
	l := testLocalizer(t, linesRepo, mock)

	res, err := l.LocalizeLinesFromSymbols(context.Background(),
		[]types.FileLocations{coarseFor("src/sched.c", "function: schedule")},
		LinesOptions{SampleOptions: SampleOptions{NumSamples: 2, Temperature: 0.8}})

	require.NoError(t, err)
	assert.Nil(t, res.Locations)
	assert.Len(t, res.Samples, 2)
}
