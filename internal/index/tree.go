// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package index builds and queries the structural repository index: a tree
// of directories and per-file declaration records that every narrowing stage
// reads from.
package index

import (
	"encoding/json"
	"strings"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// Node is one entry in the repository index: either a *Dir or a *File.
// The tagged variant keeps directory and file nodes from being confused.
type Node interface {
	isNode()
}

// Dir is a directory node. Entry order is insertion order.
type Dir struct {
	names   []string
	entries map[string]Node
}

// NewDir creates an empty directory node.
func NewDir() *Dir {
	return &Dir{entries: make(map[string]Node)}
}

func (d *Dir) isNode() {}

// Put inserts or replaces a child node.
func (d *Dir) Put(name string, n Node) {
	if _, ok := d.entries[name]; !ok {
		d.names = append(d.names, name)
	}
	d.entries[name] = n
}

// Get returns the child with the given name.
func (d *Dir) Get(name string) (Node, bool) {
	n, ok := d.entries[name]
	return n, ok
}

// Names returns the child names in insertion order.
func (d *Dir) Names() []string {
	return d.names
}

// MarshalJSON renders the directory as a name→node object, matching the
// nested-mapping shape the structure dump emits.
func (d *Dir) MarshalJSON() ([]byte, error) {
	m := make(map[string]Node, len(d.entries))
	for name, n := range d.entries {
		m[name] = n
	}
	return json.Marshal(m)
}

// File is a file node holding the extracted record.
type File struct {
	Record types.FileRecord
}

func (f *File) isNode() {}

// MarshalJSON renders the file's record directly.
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Record)
}

// Lookup resolves a slash-separated relative path to a file node.
func Lookup(root *Dir, relPath string) (*File, bool) {
	parts := strings.Split(strings.Trim(relPath, "/"), "/")
	cur := root
	for i, part := range parts {
		n, ok := cur.Get(part)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			f, ok := n.(*File)
			return f, ok
		}
		d, ok := n.(*Dir)
		if !ok {
			return nil, false
		}
		cur = d
	}
	return nil, false
}

// Record returns the file record at the given path. The boolean is false
// when the path does not name a file in the index.
func Record(root *Dir, relPath string) (types.FileRecord, bool) {
	f, ok := Lookup(root, relPath)
	if !ok {
		return types.FileRecord{}, false
	}
	return f.Record, true
}

// AllFiles returns every file path in the index, preorder, slash-separated,
// in insertion order.
func AllFiles(root *Dir) []string {
	var paths []string
	collectFiles(root, "", &paths)
	return paths
}

func collectFiles(d *Dir, prefix string, out *[]string) {
	for _, name := range d.names {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		switch n := d.entries[name].(type) {
		case *Dir:
			collectFiles(n, path, out)
		case *File:
			*out = append(*out, path)
		}
	}
}

// TopDirs returns the names of the root's immediate subdirectories, in
// insertion order.
func TopDirs(root *Dir) []string {
	var dirs []string
	for _, name := range root.names {
		if _, ok := root.entries[name].(*Dir); ok {
			dirs = append(dirs, name)
		}
	}
	return dirs
}

// Subtree returns a single-entry index rooted at the named top-level
// directory, so a partition can be localized with the same machinery as a
// whole repository. Paths inside the subtree keep their full prefix.
func Subtree(root *Dir, topDir string) (*Dir, bool) {
	n, ok := root.Get(topDir)
	if !ok {
		return nil, false
	}
	d, ok := n.(*Dir)
	if !ok {
		return nil, false
	}
	sub := NewDir()
	sub.Put(topDir, d)
	return sub, true
}
