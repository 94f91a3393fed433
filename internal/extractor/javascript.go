package extractor

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/ludo-technologies/tsindex/domain"
)

// scriptExtractor extracts JavaScript and TypeScript declarations. The two
// languages share one implementation: the tsx grammar is a superset used
// for .ts/.tsx sources, while plain .js sources use the javascript grammar.
type scriptExtractor struct {
	lang domain.Language
}

func newScriptExtractor(lang domain.Language) *scriptExtractor {
	return &scriptExtractor{lang: lang}
}

func (x *scriptExtractor) Language() domain.Language { return x.lang }

// Extract parses source and walks the syntax tree for import/export
// statements, type declarations, classes with their methods, and standalone
// functions (including arrow functions bound to const/let/var).
func (x *scriptExtractor) Extract(ctx context.Context, path string, source []byte) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if x.lang == domain.LanguageTypeScript {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(javascript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("no parse tree: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("no root node")
	}

	res := &Result{}
	x.walk(root, path, source, res)

	if root.HasError() {
		// Partial trees still yield whatever declarations parsed cleanly;
		// the error marker tells consumers the file is incomplete.
		parseErr := &domain.ParseError{Path: path, Cause: "syntax errors in source"}
		res.Error = parseErr.Error()
	}
	return res, nil
}

func (x *scriptExtractor) walk(n *sitter.Node, path string, source []byte, res *Result) {
	descend := true

	switch n.Type() {
	case "import_statement":
		x.extractImport(n, path, source, res)
		descend = false

	case "export_statement":
		x.extractExport(n, path, source, res)
		// Descend so the declaration inside also yields its own
		// type/class/function record.

	case "call_expression":
		x.extractCallImport(n, path, source, res)

	case "class_declaration":
		x.extractClass(n, path, source, res)

	case "function_declaration", "generator_function_declaration":
		if name := fieldContent(n, "name", source); name != "" {
			res.Functions = append(res.Functions, domain.FunctionRecord{
				Path:       path,
				Name:       name,
				IsAsync:    hasChildToken(n, "async"),
				IsExported: parentIsExport(n),
			})
		}

	case "lexical_declaration", "variable_declaration":
		x.extractFunctionBindings(n, path, source, res)

	case "interface_declaration":
		x.extractType(n, path, source, domain.TypeKindInterface, res)
		descend = false

	case "type_alias_declaration":
		x.extractType(n, path, source, domain.TypeKindAlias, res)
		descend = false

	case "enum_declaration":
		x.extractType(n, path, source, domain.TypeKindEnum, res)
		descend = false
	}

	if !descend {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		x.walk(n.NamedChild(i), path, source, res)
	}
}

// extractImport handles ES module imports. One ImportRecord is emitted per
// imported symbol: "default" for default imports, "*" for namespace imports,
// the imported (pre-alias) name for named specifiers, and a bare record for
// side-effect imports.
func (x *scriptExtractor) extractImport(n *sitter.Node, path string, source []byte, res *Result) {
	target := stringValue(n.ChildByFieldName("source"), source)
	if target == "" {
		return
	}

	var symbols []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.Type() != "import_clause" {
			continue
		}
		symbols = append(symbols, importClauseSymbols(child, source)...)
	}

	if len(symbols) == 0 {
		res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target})
		return
	}
	for _, sym := range symbols {
		res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target, Symbol: sym})
	}
}

func importClauseSymbols(clause *sitter.Node, source []byte) []string {
	var symbols []string
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			symbols = append(symbols, "default")
		case "namespace_import":
			symbols = append(symbols, "*")
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				if name := fieldContent(spec, "name", source); name != "" {
					symbols = append(symbols, name)
				}
			}
		}
	}
	return symbols
}

// extractCallImport handles CommonJS require() calls and dynamic import()
// expressions. Neither names the consumed symbols, so the records carry the
// target only.
func (x *scriptExtractor) extractCallImport(n *sitter.Node, path string, source []byte, res *Result) {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return
	}
	isRequire := callee.Type() == "identifier" && callee.Content(source) == "require"
	isDynamic := callee.Type() == "import"
	if !isRequire && !isDynamic {
		return
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	target := stringValue(args.NamedChild(0), source)
	if target == "" {
		return
	}
	res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target})
}

func (x *scriptExtractor) extractExport(n *sitter.Node, path string, source []byte, res *Result) {
	decl := n.ChildByFieldName("declaration")
	if decl == nil {
		decl = n.ChildByFieldName("value")
	}

	if hasChildToken(n, "default") {
		symbol := "default"
		if decl != nil {
			if name := fieldContent(decl, "name", source); name != "" {
				symbol = name
			}
		}
		res.Exports = append(res.Exports, domain.ExportRecord{
			Path: path, Symbol: symbol, ExportKind: domain.ExportKindDefault,
		})
		return
	}

	if decl != nil {
		switch decl.Type() {
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if name := fieldContent(decl, "name", source); name != "" {
				res.Exports = append(res.Exports, domain.ExportRecord{
					Path: path, Symbol: name, ExportKind: domain.ExportKindValue,
				})
			}
		case "lexical_declaration", "variable_declaration":
			for i := 0; i < int(decl.NamedChildCount()); i++ {
				declarator := decl.NamedChild(i)
				if declarator.Type() != "variable_declarator" {
					continue
				}
				if name := fieldContent(declarator, "name", source); name != "" {
					res.Exports = append(res.Exports, domain.ExportRecord{
						Path: path, Symbol: name, ExportKind: domain.ExportKindValue,
					})
				}
			}
		case "interface_declaration", "type_alias_declaration", "enum_declaration":
			if name := fieldContent(decl, "name", source); name != "" {
				res.Exports = append(res.Exports, domain.ExportRecord{
					Path: path, Symbol: name, ExportKind: domain.ExportKindType,
				})
			}
		}
		return
	}

	// export { foo, bar as baz }; the exported (post-alias) name is what
	// importers reference.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := fieldContent(spec, "alias", source)
			if name == "" {
				name = fieldContent(spec, "name", source)
			}
			if name != "" {
				res.Exports = append(res.Exports, domain.ExportRecord{
					Path: path, Symbol: name, ExportKind: domain.ExportKindValue,
				})
			}
		}
	}
}

func (x *scriptExtractor) extractClass(n *sitter.Node, path string, source []byte, res *Result) {
	name := fieldContent(n, "name", source)
	if name == "" {
		return
	}
	res.Classes = append(res.Classes, domain.ClassRecord{
		Path: path, Name: name, IsExported: parentIsExport(n),
	})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_definition" {
			continue
		}
		methodName := fieldContent(member, "name", source)
		if methodName == "" || methodName == "constructor" {
			continue
		}
		res.Methods = append(res.Methods, domain.MethodRecord{
			Path:      path,
			ClassName: name,
			Name:      methodName,
			IsAsync:   hasChildToken(member, "async"),
		})
	}
}

// extractFunctionBindings records arrow functions and function expressions
// bound to a variable, e.g. const handler = async () => {}.
func (x *scriptExtractor) extractFunctionBindings(n *sitter.Node, path string, source []byte, res *Result) {
	exported := parentIsExport(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		declarator := n.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		value := declarator.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function_expression", "function", "generator_function":
		default:
			continue
		}
		name := fieldContent(declarator, "name", source)
		if name == "" {
			continue
		}
		res.Functions = append(res.Functions, domain.FunctionRecord{
			Path:       path,
			Name:       name,
			IsAsync:    hasChildToken(value, "async"),
			IsExported: exported,
		})
	}
}

func (x *scriptExtractor) extractType(n *sitter.Node, path string, source []byte, kind domain.TypeKind, res *Result) {
	name := fieldContent(n, "name", source)
	if name == "" {
		return
	}
	res.Types = append(res.Types, domain.TypeRecord{
		Path: path, Name: name, TypeKind: kind, IsExported: parentIsExport(n),
	})
}

// fieldContent returns the source text of a named field child, or "".
func fieldContent(n *sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

// hasChildToken reports whether n has a direct anonymous child token of the
// given type (e.g. the async or default keyword).
func hasChildToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == token {
			return true
		}
	}
	return false
}

func parentIsExport(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "export_statement"
}

// stringValue unquotes a string literal node.
func stringValue(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	raw := n.Content(source)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}
