// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

func singleSampleResult(prompt, raw string, fl ...types.FileLocations) *types.LocationsResult {
	return &types.LocationsResult{
		Locations:  fl,
		Prompt:     prompt,
		RawOutputs: []string{raw},
		Usage:      types.TokenUsage{PromptTokens: 100, CompletionTokens: 10},
	}
}

func TestMergeLocations_CombinesSingleSampleResults(t *testing.T) {
	a := singleSampleResult("p", "raw-a", coarseFor("a.c", "function: f"))
	b := singleSampleResult("p", "raw-b", coarseFor("b.c", "line: 3"))

	merged := MergeLocations([]*types.LocationsResult{a, b})

	assert.Nil(t, merged.Locations)
	require.Len(t, merged.Samples, 2)
	assert.Equal(t, "a.c", merged.Samples[0][0].FilePath)
	assert.Equal(t, "b.c", merged.Samples[1][0].FilePath)
	assert.Equal(t, []string{"raw-a", "raw-b"}, merged.RawOutputs)
	assert.Equal(t, 200, merged.Usage.PromptTokens)
	assert.Equal(t, 20, merged.Usage.CompletionTokens)
}

func TestMergeLocations_SingleResultStaysFlat(t *testing.T) {
	a := singleSampleResult("p", "raw-a", coarseFor("a.c", "function: f"))

	merged := MergeLocations([]*types.LocationsResult{a})

	assert.Nil(t, merged.Samples)
	require.Len(t, merged.Locations, 1)
	assert.Equal(t, "a.c", merged.Locations[0].FilePath)
}

func TestMergeLocations_MixedFlatAndSampled(t *testing.T) {
	flat := singleSampleResult("p", "raw-a", coarseFor("a.c", "function: f"))
	sampled := &types.LocationsResult{
		Samples: [][]types.FileLocations{
			{coarseFor("b.c", "line: 1")},
			{coarseFor("c.c", "line: 2")},
		},
		RawOutputs: []string{"raw-b", "raw-c"},
		Usage:      types.TokenUsage{PromptTokens: 50},
	}

	merged := MergeLocations([]*types.LocationsResult{flat, sampled})

	assert.Len(t, merged.Samples, 3)
	assert.Equal(t, 150, merged.Usage.PromptTokens)
}

func TestMergeLocations_NilEntriesSkipped(t *testing.T) {
	a := singleSampleResult("p", "raw-a", coarseFor("a.c", "function: f"))

	merged := MergeLocations([]*types.LocationsResult{nil, a, nil})

	require.Len(t, merged.Locations, 1)
}

func TestMergeLocations_Empty(t *testing.T) {
	merged := MergeLocations(nil)

	assert.Nil(t, merged.Locations)
	assert.Nil(t, merged.Samples)
	assert.Zero(t, merged.Usage.Total())
}
