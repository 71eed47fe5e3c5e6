// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package index

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/petar-djukic/go-localizer/pkg/types"
)

// Extractor produces the declaration list and line split for one source
// file. Implementations must not panic on malformed input; a parse failure
// is reported through the error return and the file stays in the index with
// an empty record.
type Extractor interface {
	Extract(ctx context.Context, relPath string, src []byte) ([]types.Declaration, []string, error)
}

// langSpec holds the tree-sitter language and declaration queries for a file
// type. Each query pattern captures the whole declaration as @decl and its
// name as @name.
type langSpec struct {
	lang    *sitter.Language
	structQ string // Struct-like declarations
	funcQ   string // Function-like declarations
}

// supportedLangs maps file extensions to their langSpec.
var supportedLangs = map[string]*langSpec{
	".c": {
		lang: c.GetLanguage(),
		structQ: `
			(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @decl
			(union_specifier name: (type_identifier) @name body: (field_declaration_list)) @decl
		`,
		funcQ: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name)) @decl
			(function_definition declarator: (pointer_declarator declarator: (function_declarator declarator: (identifier) @name))) @decl
		`,
	},
	".go": {
		lang: golang.GetLanguage(),
		structQ: `
			(type_declaration (type_spec name: (type_identifier) @name)) @decl
		`,
		funcQ: `
			(function_declaration name: (identifier) @name) @decl
			(method_declaration name: (field_identifier) @name) @decl
		`,
	},
	".py": {
		lang: python.GetLanguage(),
		structQ: `
			(class_definition name: (identifier) @name) @decl
		`,
		funcQ: `
			(function_definition name: (identifier) @name) @decl
		`,
	},
}

func init() {
	// Headers parse with the C grammar.
	supportedLangs[".h"] = supportedLangs[".c"]
}

// SourceExtensions returns the extensions the default extractors recognize.
func SourceExtensions() []string {
	exts := make([]string, 0, len(supportedLangs))
	for ext := range supportedLangs {
		exts = append(exts, ext)
	}
	return exts
}

// sitterExtractor extracts declarations with tree-sitter queries.
type sitterExtractor struct {
	spec *langSpec
}

// newSitterExtractor returns the extractor for the given extension, or nil
// when the extension is not a recognized source language.
func newSitterExtractor(ext string) Extractor {
	spec, ok := supportedLangs[ext]
	if !ok {
		return nil
	}
	return &sitterExtractor{spec: spec}
}

// Extract parses the file and returns its flat declaration list, methods
// dotted with their enclosing type where the grammar exposes one, plus the
// line split of the full text.
func (e *sitterExtractor) Extract(ctx context.Context, relPath string, src []byte) ([]types.Declaration, []string, error) {
	lines := splitLines(string(src))

	root, err := sitter.ParseCtx(ctx, src, e.spec.lang)
	if err != nil || root == nil {
		return nil, lines, err
	}

	var decls []types.Declaration
	decls = append(decls, runDeclQuery(e.spec.structQ, e.spec.lang, root, src, lines, types.StructDecl)...)
	decls = append(decls, runDeclQuery(e.spec.funcQ, e.spec.lang, root, src, lines, types.FunctionDecl)...)

	sortByStartLine(decls)
	return decls, lines, nil
}

// runDeclQuery executes a declaration query and converts matches into
// Declaration records with 1-based line spans and raw text.
func runDeclQuery(pattern string, lang *sitter.Language, root *sitter.Node, src []byte, lines []string, kind types.DeclKind) []types.Declaration {
	if pattern == "" {
		return nil
	}
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	seen := make(map[string]bool) // Deduplicate by name+span.
	var decls []types.Declaration

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var name string
		var declNode *sitter.Node
		for _, cap := range m.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "name":
				name = cap.Node.Content(src)
			case "decl":
				declNode = cap.Node
			}
		}
		if name == "" || declNode == nil {
			continue
		}

		name = qualifyName(declNode, name, src)

		start := int(declNode.StartPoint().Row) + 1
		end := int(declNode.EndPoint().Row) + 1
		if start < 1 || end > len(lines) || start > end {
			continue
		}

		key := name + ":" + strconv.Itoa(start) + "-" + strconv.Itoa(end)
		if seen[key] {
			continue
		}
		seen[key] = true

		text := make([]string, end-start+1)
		copy(text, lines[start-1:end])

		decls = append(decls, types.Declaration{
			Kind:      kind,
			Name:      name,
			StartLine: start,
			EndLine:   end,
			Text:      text,
		})
	}

	return decls
}

// qualifyName prefixes a declaration name with its enclosing type: the
// receiver type for Go methods, the enclosing class for Python methods. The
// result is the dotted flat form downstream stages expect.
func qualifyName(node *sitter.Node, name string, src []byte) string {
	if node.Type() == "method_declaration" {
		if recv := node.ChildByFieldName("receiver"); recv != nil {
			if outer := firstTypeIdent(recv, src); outer != "" && outer != name {
				return outer + "." + name
			}
		}
		return name
	}

	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "class_definition" {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		outer := nameNode.Content(src)
		if outer != "" && outer != name {
			return outer + "." + name
		}
		break
	}
	return name
}

// firstTypeIdent finds the first type identifier under a node, looking
// through pointer and generic receiver forms.
func firstTypeIdent(node *sitter.Node, src []byte) string {
	if node.Type() == "type_identifier" {
		return node.Content(src)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := firstTypeIdent(node.NamedChild(i), src); found != "" {
			return found
		}
	}
	return ""
}

// sortByStartLine orders declarations by source position. Insertion sort;
// the lists are small and mostly ordered already.
func sortByStartLine(decls []types.Declaration) {
	for i := 1; i < len(decls); i++ {
		for j := i; j > 0 && decls[j].StartLine < decls[j-1].StartLine; j-- {
			decls[j], decls[j-1] = decls[j-1], decls[j]
		}
	}
}

// splitLines splits file text into lines without the trailing empty element
// a final newline would otherwise produce.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
