// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locparse

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

func newParser(known ...string) *Parser {
	return &Parser{Known: known, Log: zerolog.Nop()}
}

func TestFencedBlock_FirstBlockOnly(t *testing.T) {
	raw := "Some reasoning.\n```\na.c\nb.c\n```\ntrailing\n```\nignored\n```"
	assert.Equal(t, "a.c\nb.c", FencedBlock(raw))
}

func TestFencedBlock_Unterminated(t *testing.T) {
	raw := "```\na.c\nb.c"
	assert.Equal(t, "a.c\nb.c", FencedBlock(raw))
}

func TestFencedBlock_NoFenceFallsBackToWholeText(t *testing.T) {
	raw := "a.c\nb.c"
	assert.Equal(t, raw, FencedBlock(raw))
}

func TestFileList_PreservesMentionOrder(t *testing.T) {
	p := newParser("a.c", "sub/b.c", "c.c")

	found := p.FileList("```\nsub/b.c\na.c\n```")

	assert.Equal(t, []string{"sub/b.c", "a.c"}, found)
}

func TestFileList_DeduplicatesMentions(t *testing.T) {
	p := newParser("a.c", "b.c")

	found := p.FileList("```\na.c\nb.c\na.c\n```")

	assert.Equal(t, []string{"a.c", "b.c"}, found)
}

func TestFileList_DropsUnknownAndProse(t *testing.T) {
	p := newParser("src/main.c")

	found := p.FileList("```\nsrc/main.c\ncompletely/unrelated/path.xyz\nthis line is prose\n```")

	assert.Equal(t, []string{"src/main.c"}, found)
}

func TestFileList_SuffixCorrection(t *testing.T) {
	// The oracle often omits a leading directory prefix.
	p := newParser("deep/nested/parser.c")

	found := p.FileList("```\nnested/parser.c\n```")

	assert.Equal(t, []string{"deep/nested/parser.c"}, found)
}

func TestFileList_FuzzyCorrection(t *testing.T) {
	p := newParser("src/scheduler.c")

	found := p.FileList("```\nsrc/schedular.c\n```")

	assert.Equal(t, []string{"src/scheduler.c"}, found)
}

func TestLocations_AttachToMostRecentPath(t *testing.T) {
	p := newParser("a.c", "b.c")
	raw := "```\na.c\nfunction: run\nline: 42\nb.c\nclass: Scheduler\n```"

	got := p.Locations(raw, false)

	require.Len(t, got, 2)
	assert.Equal(t, "a.c", got[0].FilePath)
	assert.Equal(t, []string{"function: run", "line: 42"}, got[0].Locations)
	assert.Equal(t, "b.c", got[1].FilePath)
	assert.Equal(t, []string{"class: Scheduler"}, got[1].Locations)
}

func TestLocations_ReordersToKnownOrder(t *testing.T) {
	p := newParser("a.c", "sub/b.c")
	raw := "```\nsub/b.c\nfunction: helper\na.c\nfunction: main\n```"

	got := p.Locations(raw, false)

	require.Len(t, got, 2)
	assert.Equal(t, "a.c", got[0].FilePath)
	assert.Equal(t, "sub/b.c", got[1].FilePath)
}

func TestLocations_KeepOriginalOrder(t *testing.T) {
	p := newParser("a.c", "sub/b.c")
	raw := "```\nsub/b.c\nfunction: helper\na.c\nfunction: main\n```"

	got := p.Locations(raw, true)

	require.Len(t, got, 2)
	assert.Equal(t, "sub/b.c", got[0].FilePath)
	assert.Equal(t, "a.c", got[1].FilePath)
}

func TestLocations_SkipsOrphanedIndicatorLines(t *testing.T) {
	p := newParser("a.c")
	raw := "```\nfunction: orphan\na.c\nline: 7\n```"

	got := p.Locations(raw, false)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"line: 7"}, got[0].Locations)
}

func TestLocations_UnresolvablePathResetsCurrent(t *testing.T) {
	// Indicator lines after a dropped path must not attach to the
	// previous file.
	p := newParser("a.c")
	raw := "```\na.c\nfunction: main\nzzz/unknown.xyz\nfunction: stray\n```"

	got := p.Locations(raw, false)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"function: main"}, got[0].Locations)
}

func TestLocations_NonNumericLineRejected(t *testing.T) {
	p := newParser("a.c")
	raw := "```\na.c\nline: forty-two\nline: 42\n```"

	got := p.Locations(raw, false)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"line: 42"}, got[0].Locations)
}

func TestLocations_FileWithNoLocationsKept(t *testing.T) {
	p := newParser("a.c")

	got := p.Locations("```\na.c\n```", false)

	require.Len(t, got, 1)
	assert.Empty(t, got[0].Locations)
}

func TestLocations_IdempotentReparse(t *testing.T) {
	p := newParser("a.c", "sub/b.c")
	raw := "```\nsub/b.c\nfunction: helper\na.c\nline: 4\n```"

	once := p.Locations(raw, false)
	again := p.Locations(raw, false)

	require.Len(t, once, 2)
	assert.Equal(t, once, again)
}

func TestFileList_ExactScenario(t *testing.T) {
	p := newParser("a.c", "sub/b.c", "sub/c.h")

	found := p.FileList("```\nsub/b.c\na.c\n```")

	assert.Equal(t, []string{"sub/b.c", "a.c"}, found)
}

func TestCorrectPath_RejectsMentionsWithSpaces(t *testing.T) {
	p := newParser("a.c")

	_, ok := p.correctPath("the file a.c")
	assert.False(t, ok)
}

func TestCorrectPath_StripsBackticks(t *testing.T) {
	p := newParser("src/a.c")

	path, ok := p.correctPath("`src/a.c`")
	require.True(t, ok)
	assert.Equal(t, "src/a.c", path)
}

func TestParseLocation(t *testing.T) {
	loc, ok := ParseLocation("a.c", "function: Scheduler.run")
	require.True(t, ok)
	assert.Equal(t, types.FunctionLoc, loc.Kind)
	assert.Equal(t, "Scheduler.run", loc.Identifier)
	assert.Equal(t, "a.c", loc.FilePath)

	_, ok = ParseLocation("a.c", "not a location")
	assert.False(t, ok)

	lineLoc, ok := ParseLocation("a.c", "line: 12")
	require.True(t, ok)
	assert.Equal(t, types.LineLoc, lineLoc.Kind)
	assert.Equal(t, 12, lineLoc.Line())
}
