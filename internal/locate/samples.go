// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import "github.com/petar-djukic/go-localizer/pkg/types"

// MergeLocations merges independent stage results for the same stage into
// one multi-sample result: raw outputs concatenate, token usage sums, and
// every parsed sample is kept. No cross-sample voting or re-ranking happens
// here; that belongs to callers.
func MergeLocations(results []*types.LocationsResult) *types.LocationsResult {
	merged := &types.LocationsResult{}
	for _, r := range results {
		if r == nil {
			continue
		}
		if merged.Prompt == "" {
			merged.Prompt = r.Prompt
		}
		merged.RawOutputs = append(merged.RawOutputs, r.RawOutputs...)
		merged.Usage = merged.Usage.Add(r.Usage)
		if r.Locations != nil {
			merged.Samples = append(merged.Samples, r.Locations)
		}
		merged.Samples = append(merged.Samples, r.Samples...)
	}
	// A merge of exactly one single-sample result stays flat.
	if len(merged.Samples) == 1 {
		merged.Locations = merged.Samples[0]
		merged.Samples = nil
	}
	return merged
}
