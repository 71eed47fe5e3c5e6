// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/internal/index"
	"github.com/petar-djukic/go-localizer/internal/locparse"
	"github.com/petar-djukic/go-localizer/internal/render"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

// LinesOptions configure the lines stage.
type LinesOptions struct {
	SampleOptions
	Window render.WindowOptions // Excerpt knobs (context window, numbering)
}

// LocalizeLinesFromSymbols runs the lines stage over windowed excerpts
// around the symbols the previous stage found. The coarse location order is
// the drop priority: on budget overflow the last file's windows go first.
// When Window.NoLineNumber is set the instruction template changes and only
// symbol names are solicited.
func (l *Localizer) LocalizeLinesFromSymbols(ctx context.Context, coarse []types.FileLocations, opts LinesOptions) (*types.LocationsResult, error) {
	fileNames := make([]string, 0, len(coarse))
	chunks := make([]budget.Chunk, 0, len(coarse))

	for _, fl := range coarse {
		rec, ok := index.Record(l.deps.Index, fl.FilePath)
		if !ok {
			l.deps.Log.Warn().Str("file", fl.FilePath).Msg("coarse location file not in index, skipping")
			continue
		}

		locs := make([]types.Location, 0, len(fl.Locations))
		for _, raw := range fl.Locations {
			if loc, ok := locparse.ParseLocation(fl.FilePath, raw); ok {
				locs = append(locs, loc)
			}
		}

		body := render.FileWindow(rec, locs, opts.Window)
		if body == "" {
			continue
		}
		fileNames = append(fileNames, fl.FilePath)
		chunks = append(chunks, fileChunk(fl.FilePath, body, false))
	}

	tmpl := "lines.tmpl"
	if opts.Window.NoLineNumber {
		tmpl = "lines_no_number.tmpl"
	}
	return l.runLocationStage(ctx, "lines", tmpl, fileNames, chunks, opts.SampleOptions)
}

// LocalizeLinesFromRawText runs the lines stage over whole files with
// explicit line numbers, bypassing the symbol windowing.
func (l *Localizer) LocalizeLinesFromRawText(ctx context.Context, fileNames []string, opts SampleOptions) (*types.LocationsResult, error) {
	chunks := l.fileChunks(fileNames, false, func(rec types.FileRecord) string {
		return render.NumberLines(rec.Lines)
	})
	return l.runLocationStage(ctx, "lines", "lines.tmpl", fileNames, chunks, opts)
}
