// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-localizer/internal/oracle"
)

// failNthOracle fails the Nth Codegen call (1-based) and delegates the rest.
type failNthOracle struct {
	inner *oracle.Mock
	n     int
	calls int
}

func (f *failNthOracle) Codegen(ctx context.Context, prompt string, opts oracle.Options) ([]oracle.Generation, error) {
	f.calls++
	if f.calls == f.n {
		return nil, errors.New("partition blew up")
	}
	return f.inner.Codegen(ctx, prompt, opts)
}

func (f *failNthOracle) CountTokens(text string) int {
	return f.inner.CountTokens(text)
}

// partitionRepo has three top-level directories plus a root-level file that
// no partition covers.
var partitionRepo = map[string]string{
	"alpha/a.c":  "int alpha_fn(void) { return 1; }\n",
	"beta/b.c":   "int beta_fn(void) { return 2; }\n",
	"gamma/g.c":  "int gamma_fn(void) { return 3; }\n",
	"rootfile.c": "int root_fn(void) { return 0; }\n",
}

func TestLocalizeLargeRepo_RerankAcrossPartitions(t *testing.T) {
	// One response per partition in walk order, then the re-rank answer.
	mock := oracle.NewMock(
		"```\nalpha/a.c\n```",
		"```\nbeta/b.c\n```",
		"```\ngamma/g.c\n```",
		"```\ngamma/g.c\nalpha/a.c\nbeta/b.c\n```",
	)
	l := testLocalizer(t, partitionRepo, mock)

	res, err := l.LocalizeLargeRepo(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"gamma/g.c", "alpha/a.c"}, res.Found, "re-rank order wins, truncated to top-N")
	assert.Equal(t, 4, mock.Calls())
	assert.NotZero(t, res.Usage.Total())
}

func TestLocalizeLargeRepo_RerankPromptGroupsBySubsystem(t *testing.T) {
	mock := oracle.NewMock(
		"```\nalpha/a.c\n```",
		"```\nbeta/b.c\n```",
		"```\ngamma/g.c\n```",
		"```\nalpha/a.c\n```",
	)
	l := testLocalizer(t, partitionRepo, mock)

	res, err := l.LocalizeLargeRepo(context.Background(), 3)

	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "### alpha ###")
	assert.Contains(t, res.Prompt, "1. beta/b.c")
	assert.Contains(t, res.Prompt, "### gamma ###")
}

func TestLocalizeLargeRepo_FailedPartitionSkipped(t *testing.T) {
	// The second partition (beta) fails; its hits are simply absent.
	mock := oracle.NewMock(
		"```\nalpha/a.c\n```",
		"```\ngamma/g.c\n```",
		"```\ngamma/g.c\nalpha/a.c\n```",
	)
	l := New(Deps{
		Oracle:           &failNthOracle{inner: mock, n: 2},
		Index:            testIndex(t, partitionRepo),
		ProblemStatement: "problem",
		Log:              zerolog.Nop(),
	})

	res, err := l.LocalizeLargeRepo(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"gamma/g.c", "alpha/a.c"}, res.Found)
	assert.NotContains(t, res.Found, "beta/b.c")
}

func TestLocalizeLargeRepo_UnparseableRerankFallsBackToTruncation(t *testing.T) {
	mock := oracle.NewMock(
		"```\nalpha/a.c\n```",
		"```\nbeta/b.c\n```",
		"```\ngamma/g.c\n```",
		"I cannot decide between these files.",
	)
	l := testLocalizer(t, partitionRepo, mock)

	res, err := l.LocalizeLargeRepo(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha/a.c", "beta/b.c"}, res.Found, "partition discovery order, first N")
}

func TestLocalizeLargeRepo_MockModeSkipsRerank(t *testing.T) {
	mock := oracle.NewMock("unused")
	l := New(Deps{
		Oracle:           mock,
		Index:            testIndex(t, partitionRepo),
		ProblemStatement: "problem",
		Log:              zerolog.Nop(),
		Mock:             true,
	})

	res, err := l.LocalizeLargeRepo(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, res.Found)
	assert.Equal(t, 0, mock.Calls())
}

func TestLocalizeLargeRepo_NoPartitionsYieldsEmpty(t *testing.T) {
	// A flat repository has no top-level directories to divide by.
	mock := oracle.NewMock("unused")
	l := testLocalizer(t, map[string]string{"only.c": "int f(void) { return 0; }\n"}, mock)

	res, err := l.LocalizeLargeRepo(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, res.Found)
	assert.Equal(t, 0, mock.Calls())
}
