package extractor

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ludo-technologies/tsindex/domain"
)

// pythonExtractor extracts Python declarations: imports, classes with their
// methods, and module-level functions. Python has no export syntax, so no
// ExportRecords are emitted and functions are never marked exported.
type pythonExtractor struct{}

func newPythonExtractor() *pythonExtractor { return &pythonExtractor{} }

func (x *pythonExtractor) Language() domain.Language { return domain.LanguagePython }

func (x *pythonExtractor) Extract(ctx context.Context, path string, source []byte) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

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
		parseErr := &domain.ParseError{Path: path, Cause: "syntax errors in source"}
		res.Error = parseErr.Error()
	}
	return res, nil
}

// walk descends the tree without entering class or function bodies, so a
// function_definition seen here is always module-level; methods come from
// extractClass and nested defs are not recorded.
func (x *pythonExtractor) walk(n *sitter.Node, path string, source []byte, res *Result) {
	switch n.Type() {
	case "import_statement":
		x.extractImport(n, path, source, res)
		return

	case "import_from_statement":
		x.extractImportFrom(n, path, source, res)
		return

	case "class_definition":
		x.extractClass(n, path, source, res)
		return

	case "function_definition":
		if name := fieldContent(n, "name", source); name != "" {
			res.Functions = append(res.Functions, domain.FunctionRecord{
				Path:    path,
				Name:    name,
				IsAsync: hasChildToken(n, "async"),
			})
		}
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		x.walk(n.NamedChild(i), path, source, res)
	}
}

// extractImport handles "import a.b" and "import a.b as c": one record per
// module, no symbol.
func (x *pythonExtractor) extractImport(n *sitter.Node, path string, source []byte, res *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		target := ""
		switch child.Type() {
		case "dotted_name":
			target = child.Content(source)
		case "aliased_import":
			target = fieldContent(child, "name", source)
		}
		if target != "" {
			res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target})
		}
	}
}

// extractImportFrom handles "from a.b import c, d as e": one record per
// imported name, carrying the pre-alias symbol.
func (x *pythonExtractor) extractImportFrom(n *sitter.Node, path string, source []byte, res *Result) {
	module := n.ChildByFieldName("module_name")
	if module == nil {
		return
	}
	target := module.Content(source)
	if target == "" {
		return
	}

	emitted := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.StartByte() == module.StartByte() {
			continue
		}
		symbol := ""
		switch child.Type() {
		case "dotted_name", "identifier":
			symbol = child.Content(source)
		case "aliased_import":
			symbol = fieldContent(child, "name", source)
		case "wildcard_import":
			symbol = "*"
		default:
			continue
		}
		if symbol != "" {
			res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target, Symbol: symbol})
			emitted = true
		}
	}
	if !emitted {
		res.Imports = append(res.Imports, domain.ImportRecord{Path: path, Target: target})
	}
}

func (x *pythonExtractor) extractClass(n *sitter.Node, path string, source []byte, res *Result) {
	name := fieldContent(n, "name", source)
	if name == "" {
		return
	}
	res.Classes = append(res.Classes, domain.ClassRecord{Path: path, Name: name})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "decorated_definition" {
			if def := member.ChildByFieldName("definition"); def != nil {
				member = def
			}
		}
		if member.Type() != "function_definition" {
			continue
		}
		methodName := fieldContent(member, "name", source)
		if methodName == "" {
			continue
		}
		// Dunder methods other than __init__ are implementation detail.
		if strings.HasPrefix(methodName, "__") && methodName != "__init__" {
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
