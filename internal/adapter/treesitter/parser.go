// Package treesitter extracts source structure (symbols, imports) using
// tree-sitter grammars. Grammar internals are a black box; this adapter
// only walks the produced syntax tree.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codelore/codelore/internal/domain/analysis"
	"github.com/codelore/codelore/internal/domain/codebase"
)

// langSpec maps one language's grammar node types onto the symbol model.
type langSpec struct {
	language    *sitter.Language
	symbolKinds map[string]string
	importTypes map[string]bool
	// docstrings: documentation is the first string statement of a
	// definition body (python) rather than a preceding comment.
	docstrings bool
}

var specs = map[string]langSpec{
	"go": {
		language: golang.GetLanguage(),
		symbolKinds: map[string]string{
			"function_declaration": "function",
			"method_declaration":   "method",
			"type_spec":            "type",
		},
		importTypes: map[string]bool{"import_spec": true},
	},
	"python": {
		language: python.GetLanguage(),
		symbolKinds: map[string]string{
			"function_definition": "function",
			"class_definition":    "class",
		},
		importTypes: map[string]bool{"import_statement": true, "import_from_statement": true},
		docstrings:  true,
	},
	"javascript": {
		language: javascript.GetLanguage(),
		symbolKinds: map[string]string{
			"function_declaration": "function",
			"class_declaration":    "class",
			"method_definition":    "method",
		},
		importTypes: map[string]bool{"import_statement": true},
	},
	"typescript": {
		language: typescript.GetLanguage(),
		symbolKinds: map[string]string{
			"function_declaration":  "function",
			"class_declaration":     "class",
			"method_definition":     "method",
			"interface_declaration": "interface",
		},
		importTypes: map[string]bool{"import_statement": true},
	},
	// .tsx needs the JSX-aware grammar; the plain typescript grammar
	// rejects JSX expressions. Node types are shared between the two.
	"tsx": {
		language: tsx.GetLanguage(),
		symbolKinds: map[string]string{
			"function_declaration":  "function",
			"class_declaration":     "class",
			"method_definition":     "method",
			"interface_declaration": "interface",
		},
		importTypes: map[string]bool{"import_statement": true},
	},
	"java": {
		language: java.GetLanguage(),
		symbolKinds: map[string]string{
			"class_declaration":     "class",
			"interface_declaration": "interface",
			"method_declaration":    "method",
		},
		importTypes: map[string]bool{"import_declaration": true},
	},
}

// Parser turns file content into an analysis.Structure.
type Parser struct{}

// NewParser creates a Parser. Parsers are stateless and safe to share.
func NewParser() *Parser { return &Parser{} }

// Parse parses content according to the file's language. Unsupported
// languages are an error; malformed source is not, it yields a partial
// structure with ParseErrors set.
func (p *Parser) Parse(ctx context.Context, filePath string, content []byte) (*analysis.Structure, error) {
	lang, ok := codebase.LanguageForPath(filePath)
	if !ok {
		return nil, fmt.Errorf("treesitter: unsupported file type: %s", filePath)
	}
	grammar := lang
	if lang == "typescript" && strings.HasSuffix(strings.ToLower(filePath), ".tsx") {
		grammar = "tsx"
	}
	spec, ok := specs[grammar]
	if !ok {
		return nil, fmt.Errorf("treesitter: no grammar for language %q", lang)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("treesitter: parse %s: %w", filePath, err)
	}
	defer tree.Close()

	st := &analysis.Structure{Language: lang}
	root := tree.RootNode()
	if root.HasError() {
		st.ParseErrors = append(st.ParseErrors, "source contains syntax errors")
	}

	walk(root, content, spec, false, st)
	return st, nil
}

// walk visits every named node, collecting symbols and imports. inClass
// reclassifies nested function definitions as methods for docstring
// languages.
func walk(node *sitter.Node, content []byte, spec langSpec, inClass bool, st *analysis.Structure) {
	nodeType := node.Type()

	if kind, ok := spec.symbolKinds[nodeType]; ok {
		if kind == "function" && inClass && spec.docstrings {
			kind = "method"
		}
		if sym, ok := extractSymbol(node, content, spec, kind); ok {
			st.Symbols = append(st.Symbols, sym)
		}
	}

	if spec.importTypes[nodeType] {
		if imp := importText(node, content); imp != "" {
			st.Imports = append(st.Imports, imp)
		}
	}

	childInClass := inClass || nodeType == "class_definition" || nodeType == "class_declaration"
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), content, spec, childInClass, st)
	}
}

func extractSymbol(node *sitter.Node, content []byte, spec langSpec, kind string) (analysis.Symbol, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return analysis.Symbol{}, false
	}

	// Go interfaces hide behind type_spec; reclassify by the spec's type child.
	if kind == "type" {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Type() == "interface_type" {
			kind = "interface"
		}
	}

	return analysis.Symbol{
		Name:       nameNode.Content(content),
		Kind:       kind,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Documented: isDocumented(node, content, spec),
	}, true
}

// isDocumented checks for a doc comment immediately above the declaration,
// or a leading docstring for python-style bodies.
func isDocumented(node *sitter.Node, content []byte, spec langSpec) bool {
	if spec.docstrings {
		body := node.ChildByFieldName("body")
		if body != nil && body.NamedChildCount() > 0 {
			first := body.NamedChild(0)
			if first.Type() == "expression_statement" && first.NamedChildCount() > 0 &&
				first.NamedChild(0).Type() == "string" {
				return true
			}
		}
		return false
	}

	// type_spec sits inside type_declaration; the doc comment precedes the
	// declaration, not the spec.
	target := node
	if node.Type() == "type_spec" {
		if parent := node.Parent(); parent != nil {
			target = parent
		}
	}

	prev := target.PrevNamedSibling()
	if prev == nil {
		return false
	}
	switch prev.Type() {
	case "comment", "line_comment", "block_comment":
		// Must be adjacent: a blank line breaks doc-comment association.
		return int(node.StartPoint().Row)-int(prev.EndPoint().Row) <= 1
	}
	return false
}

// importText pulls the imported path or module name out of an import node.
func importText(node *sitter.Node, content []byte) string {
	for _, field := range []string{"path", "source", "module_name"} {
		if child := node.ChildByFieldName(field); child != nil {
			return trimImport(child.Content(content))
		}
	}
	// Fall back to the first string / dotted name descendant.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "interpreted_string_literal", "string", "dotted_name", "scoped_identifier", "identifier":
			return trimImport(child.Content(content))
		}
	}
	return ""
}

func trimImport(s string) string {
	return strings.Trim(s, "\"'`")
}
