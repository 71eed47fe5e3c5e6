// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

const cacheSize = 4096

// vcsDirs are version-control metadata directories skipped during the walk.
var vcsDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// cacheEntry stores extraction results keyed by relative path.
type cacheEntry struct {
	modTime time.Time
	record  types.FileRecord
}

// Stats tracks indexing statistics for one Build call.
type Stats struct {
	FilesIndexed int // Files given a record (source and non-source alike)
	SourceFiles  int // Files a structural extractor ran on
	FailedFiles  int // Source files whose extraction failed
	CacheHits    int
}

// Indexer walks a repository and builds the structural index. The same
// Indexer can index repeatedly; the extraction cache carries across builds.
type Indexer struct {
	extractors map[string]Extractor
	cache      *lru.Cache[string, cacheEntry]
	log        zerolog.Logger
	stats      Stats
}

// NewIndexer creates an Indexer with the default tree-sitter extractors
// registered for every supported extension.
func NewIndexer(log zerolog.Logger) *Indexer {
	cache, _ := lru.New[string, cacheEntry](cacheSize)
	ix := &Indexer{
		extractors: make(map[string]Extractor),
		cache:      cache,
		log:        log,
	}
	for _, ext := range SourceExtensions() {
		ix.extractors[ext] = newSitterExtractor(ext)
	}
	return ix
}

// Register installs an extractor for a file extension, replacing any
// default. Registering nil removes the extension.
func (ix *Indexer) Register(ext string, e Extractor) {
	if e == nil {
		delete(ix.extractors, ext)
		return
	}
	ix.extractors[ext] = e
}

// Stats returns the statistics of the most recent Build.
func (ix *Indexer) Stats() Stats {
	return ix.stats
}

// Build walks the repository rooted at workDir and returns the structural
// index. Every regular file gets exactly one record: source files carry
// declarations and lines, everything else an empty record so path existence
// checks succeed uniformly. Extraction failures are logged and leave the
// file with an empty record; they never abort the build.
func (ix *Indexer) Build(ctx context.Context, workDir string) (*Dir, error) {
	ix.stats = Stats{}
	root := NewDir()

	err := filepath.Walk(workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we cannot stat.
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if vcsDirs[filepath.Base(path)] && path != workDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(workDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		record := ix.fileRecord(ctx, path, relPath, info.ModTime())
		insertFile(root, relPath, record)
		ix.stats.FilesIndexed++
		return nil
	})
	if err != nil {
		return nil, err
	}

	ix.log.Debug().
		Int("files", ix.stats.FilesIndexed).
		Int("source", ix.stats.SourceFiles).
		Int("failed", ix.stats.FailedFiles).
		Int("cache_hits", ix.stats.CacheHits).
		Str("dir", workDir).
		Msg("repository indexed")

	return root, nil
}

// fileRecord extracts one file, consulting the cache first. Non-source
// files and failed extractions produce an empty record.
func (ix *Indexer) fileRecord(ctx context.Context, absPath, relPath string, modTime time.Time) types.FileRecord {
	extractor, isSource := ix.extractors[filepath.Ext(relPath)]
	if !isSource {
		return types.FileRecord{}
	}
	ix.stats.SourceFiles++

	if cached, ok := ix.cache.Get(relPath); ok && cached.modTime.Equal(modTime) {
		ix.stats.CacheHits++
		return cached.record
	}

	src, err := os.ReadFile(absPath)
	if err != nil {
		ix.stats.FailedFiles++
		ix.log.Warn().Err(err).Str("file", relPath).Msg("reading source file failed, keeping empty record")
		return types.FileRecord{}
	}

	decls, lines, err := extractor.Extract(ctx, relPath, src)
	if err != nil {
		ix.stats.FailedFiles++
		ix.log.Warn().Err(err).Str("file", relPath).Msg("extraction failed, keeping empty record")
		return types.FileRecord{}
	}

	record := types.FileRecord{Declarations: decls, Lines: lines}
	ix.cache.Add(relPath, cacheEntry{modTime: modTime, record: record})
	return record
}

// insertFile places a record at its slash-separated path, creating
// intermediate directories as needed.
func insertFile(root *Dir, relPath string, record types.FileRecord) {
	cur := root
	segs := strings.Split(relPath, "/")
	for i, seg := range segs {
		if i == len(segs)-1 {
			cur.Put(seg, &File{Record: record})
			return
		}
		n, ok := cur.Get(seg)
		d, isDir := n.(*Dir)
		if !ok || !isDir {
			d = NewDir()
			cur.Put(seg, d)
		}
		cur = d
	}
}
