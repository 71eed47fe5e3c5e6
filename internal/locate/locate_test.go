// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/internal/oracle"
)

// testIndex indexes the given files from a temp directory.
func testIndex(t *testing.T, files map[string]string) *index.Dir {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	root, err := index.NewIndexer(zerolog.Nop()).Build(context.Background(), dir)
	require.NoError(t, err)
	return root
}

func testLocalizer(t *testing.T, files map[string]string, mock *oracle.Mock) *Localizer {
	t.Helper()
	return New(Deps{
		Oracle:           mock,
		Index:            testIndex(t, files),
		ProblemStatement: "the scheduler drops tasks under load",
		Log:              zerolog.Nop(),
	})
}

var smallRepo = map[string]string{
	"src/sched.c":  "int schedule(void) { return 0; }\n",
	"src/queue.c":  "int enqueue(int x) { return x; }\n",
	"docs/guide.c": "int documented(void) { return 1; }\n",
	"README.md":    "readme\n",
}

func TestLocalizeFiles_ParsesShortlistInOrder(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/queue.c\nsrc/sched.c\n```")
	l := testLocalizer(t, smallRepo, mock)

	res, err := l.LocalizeFiles(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"src/queue.c", "src/sched.c"}, res.Found)
	assert.NotZero(t, res.Usage.PromptTokens)
	assert.Equal(t, 1, mock.Calls())
}

func TestLocalizeFiles_PromptCarriesProblemAndStructure(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\n```")
	l := testLocalizer(t, smallRepo, mock)

	res, err := l.LocalizeFiles(context.Background(), 3)

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "the scheduler drops tasks under load")
	assert.Contains(t, res.Prompt, "src/")
	assert.Contains(t, res.Prompt, "sched.c")
	assert.Contains(t, res.Prompt, "at most 3 files")
}

func TestLocalizeFiles_MockModeSkipsOracle(t *testing.T) {
	mock := oracle.NewMock("```\nsrc/sched.c\n```")
	l := New(Deps{
		Oracle:           mock,
		Index:            testIndex(t, smallRepo),
		ProblemStatement: "problem",
		Log:              zerolog.Nop(),
		Mock:             true,
	})

	res, err := l.LocalizeFiles(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, res.Found)
	assert.NotEmpty(t, res.Prompt)
	assert.NotZero(t, res.Usage.PromptTokens)
	assert.Equal(t, 0, mock.Calls())
}

func TestLocalizeFiles_OracleErrorPropagates(t *testing.T) {
	mock := oracle.NewMock()
	mock.Err = assert.AnError
	l := testLocalizer(t, smallRepo, mock)

	_, err := l.LocalizeFiles(context.Background(), 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "files stage")
}

func TestLocalizeIrrelevantFolders_Complement(t *testing.T) {
	mock := oracle.NewMock("```\ndocs/\n```")
	l := testLocalizer(t, smallRepo, mock)

	res, err := l.LocalizeIrrelevantFolders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide.c"}, res.Filtered)
	assert.Contains(t, res.Kept, "src/sched.c")
	assert.Contains(t, res.Kept, "src/queue.c")
	assert.Contains(t, res.Kept, "README.md")
}

func TestLocalizeIrrelevantFolders_NestedPrefix(t *testing.T) {
	files := map[string]string{
		"src/a.c":          "int a(void) { return 0; }\n",
		"src/vendor/v.c":   "int v(void) { return 0; }\n",
		"src/vendor/w/x.c": "int x(void) { return 0; }\n",
	}
	mock := oracle.NewMock("```\nsrc/vendor/\n```")
	l := testLocalizer(t, files, mock)

	res, err := l.LocalizeIrrelevantFolders(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/vendor/v.c", "src/vendor/w/x.c"}, res.Filtered)
	assert.Equal(t, []string{"src/a.c"}, res.Kept)
}

func TestLocalizeIrrelevantFolders_IgnoresChatter(t *testing.T) {
	mock := oracle.NewMock("The irrelevant folders are:\n```\nhere is my reasoning\ndocs/\n```")
	l := testLocalizer(t, smallRepo, mock)

	res, err := l.LocalizeIrrelevantFolders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide.c"}, res.Filtered)
}

func TestIrrelevantPrefixes(t *testing.T) {
	raw := "```\ndocs/\nsrc/legacy.c\nnot a path\nplain-line\n```"

	got := irrelevantPrefixes(raw)

	assert.Equal(t, []string{"docs/", "src/legacy.c"}, got)
}
