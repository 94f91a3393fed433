package extractor

import (
	"context"
	"testing"
)

func extractPy(t *testing.T, source string) *Result {
	t.Helper()
	res, err := newPythonExtractor().Extract(context.Background(), "pkg/mod.py", []byte(source))
	if err != nil {
		t.Fatalf("Extract() = %v", err)
	}
	return res
}

func TestPythonImports(t *testing.T) {
	res := extractPy(t, `
import os
import os.path as osp
from typing import List, Optional as Opt
from a.b import *
`)

	want := []string{
		"os|",
		"os.path|",
		"typing|List",
		"typing|Optional",
		"a.b|*",
	}
	got := importSet(res)
	for _, key := range want {
		if !got[key] {
			t.Errorf("missing import record %q (got %v)", key, got)
		}
	}
	if len(res.Imports) != len(want) {
		t.Errorf("Imports = %d records, want %d", len(res.Imports), len(want))
	}
}

func TestPythonClassAndMethods(t *testing.T) {
	res := extractPy(t, `
class Store:
    def __init__(self, path):
        self.path = path

    def __repr__(self):
        return "Store"

    async def load(self):
        pass

    @staticmethod
    def open(path):
        return Store(path)
`)

	if len(res.Classes) != 1 || res.Classes[0].Name != "Store" {
		t.Fatalf("Classes = %+v, want Store", res.Classes)
	}
	if res.Classes[0].IsExported {
		t.Error("python classes carry no export flag")
	}

	type meth struct {
		name  string
		async bool
	}
	want := []meth{
		{"__init__", false},
		{"load", true},
		{"open", false},
	}
	if len(res.Methods) != len(want) {
		t.Fatalf("Methods = %+v, want %v (dunders besides __init__ skipped)", res.Methods, want)
	}
	for i, w := range want {
		got := res.Methods[i]
		if got.Name != w.name || got.IsAsync != w.async || got.ClassName != "Store" {
			t.Errorf("Methods[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestPythonFunctions(t *testing.T) {
	res := extractPy(t, `
def build(path):
    def helper():
        pass
    return helper

async def fetch(url):
    pass

@lru_cache
def cached():
    pass
`)

	type fn struct {
		name  string
		async bool
	}
	want := []fn{
		{"build", false},
		{"fetch", true},
		{"cached", false},
	}
	if len(res.Functions) != len(want) {
		t.Fatalf("Functions = %+v, want %v (nested defs skipped)", res.Functions, want)
	}
	for i, w := range want {
		got := res.Functions[i]
		if got.Name != w.name || got.IsAsync != w.async {
			t.Errorf("Functions[%d] = %+v, want %+v", i, got, w)
		}
		if got.IsExported {
			t.Errorf("Functions[%d] marked exported; python has no export syntax", i)
		}
	}
}

func TestPythonNoExports(t *testing.T) {
	res := extractPy(t, `
def public():
    pass

class Thing:
    pass
`)
	if len(res.Exports) != 0 {
		t.Errorf("Exports = %+v, want none", res.Exports)
	}
	if len(res.Types) != 0 {
		t.Errorf("Types = %+v, want none", res.Types)
	}
}

func TestPythonSyntaxErrorMarksIncomplete(t *testing.T) {
	res := extractPy(t, "import os\ndef broken(:\n")
	if !res.Incomplete() {
		t.Error("syntax errors must set the error marker")
	}
	if !importSet(res)["os|"] {
		t.Error("declarations before the damage should still be extracted")
	}
}
