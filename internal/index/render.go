// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package index

import "strings"

// RenderStructure produces the textual rendering of the index tree used as
// the files-stage context: paths only, no content. Directories carry a
// trailing slash and children are indented two spaces per level, in
// insertion order.
func RenderStructure(root *Dir) string {
	var b strings.Builder
	renderDir(&b, root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func renderDir(b *strings.Builder, d *Dir, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, name := range d.Names() {
		n, _ := d.Get(name)
		switch child := n.(type) {
		case *Dir:
			b.WriteString(indent + name + "/\n")
			renderDir(b, child, depth+1)
		case *File:
			b.WriteString(indent + name + "\n")
		}
	}
}
