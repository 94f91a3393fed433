package extractor

import (
	"context"
	"testing"

	"github.com/ludo-technologies/tsindex/domain"
)

func extractTS(t *testing.T, source string) *Result {
	t.Helper()
	res, err := newScriptExtractor(domain.LanguageTypeScript).Extract(context.Background(), "src/a.ts", []byte(source))
	if err != nil {
		t.Fatalf("Extract() = %v", err)
	}
	return res
}

func extractJS(t *testing.T, source string) *Result {
	t.Helper()
	res, err := newScriptExtractor(domain.LanguageJavaScript).Extract(context.Background(), "src/a.js", []byte(source))
	if err != nil {
		t.Fatalf("Extract() = %v", err)
	}
	return res
}

func importSet(res *Result) map[string]bool {
	set := make(map[string]bool)
	for _, imp := range res.Imports {
		set[imp.Target+"|"+imp.Symbol] = true
	}
	return set
}

func TestScriptImports(t *testing.T) {
	res := extractTS(t, `
import def from "./a";
import * as ns from "./b";
import { x, y as z } from "./c";
import "./side";
`)

	want := []string{
		"./a|default",
		"./b|*",
		"./c|x",
		"./c|y",
		"./side|",
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

func TestScriptRequireAndDynamicImport(t *testing.T) {
	res := extractJS(t, `
const lib = require("leftpad");

function load() {
	return import("./lazy");
}
`)

	got := importSet(res)
	if !got["leftpad|"] {
		t.Errorf("require() target missing: %v", got)
	}
	if !got["./lazy|"] {
		t.Errorf("dynamic import() target missing: %v", got)
	}
}

func TestScriptExports(t *testing.T) {
	res := extractTS(t, `
export const foo = 1;
export function helper() {}
export interface Props { id: string }
export type ID = string;
export { a, b as c };
`)

	type exp struct {
		symbol string
		kind   domain.ExportKind
	}
	want := []exp{
		{"foo", domain.ExportKindValue},
		{"helper", domain.ExportKindValue},
		{"Props", domain.ExportKindType},
		{"ID", domain.ExportKindType},
		{"a", domain.ExportKindValue},
		{"c", domain.ExportKindValue},
	}
	if len(res.Exports) != len(want) {
		t.Fatalf("Exports = %+v, want %d records", res.Exports, len(want))
	}
	for i, w := range want {
		if res.Exports[i].Symbol != w.symbol || res.Exports[i].ExportKind != w.kind {
			t.Errorf("Exports[%d] = %+v, want %s/%s", i, res.Exports[i], w.symbol, w.kind)
		}
	}
}

func TestScriptDefaultExport(t *testing.T) {
	res := extractTS(t, `export default function main() {}`)

	if len(res.Exports) != 1 {
		t.Fatalf("Exports = %+v, want 1 record", res.Exports)
	}
	if res.Exports[0].Symbol != "main" || res.Exports[0].ExportKind != domain.ExportKindDefault {
		t.Errorf("Exports[0] = %+v, want main/default", res.Exports[0])
	}

	// The function itself is also recorded, marked exported.
	if len(res.Functions) != 1 || res.Functions[0].Name != "main" || !res.Functions[0].IsExported {
		t.Errorf("Functions = %+v, want exported main", res.Functions)
	}
}

func TestScriptAnonymousDefaultExport(t *testing.T) {
	res := extractTS(t, `export default 42;`)

	if len(res.Exports) != 1 || res.Exports[0].Symbol != "default" {
		t.Errorf("Exports = %+v, want symbol %q", res.Exports, "default")
	}
}

func TestScriptClassAndMethods(t *testing.T) {
	res := extractTS(t, `
export class Service {
	constructor(url: string) {}
	async fetch() {}
	render() {}
}

class Hidden {}
`)

	if len(res.Classes) != 2 {
		t.Fatalf("Classes = %+v, want 2", res.Classes)
	}
	if res.Classes[0].Name != "Service" || !res.Classes[0].IsExported {
		t.Errorf("Classes[0] = %+v, want exported Service", res.Classes[0])
	}
	if res.Classes[1].Name != "Hidden" || res.Classes[1].IsExported {
		t.Errorf("Classes[1] = %+v, want unexported Hidden", res.Classes[1])
	}

	if len(res.Methods) != 2 {
		t.Fatalf("Methods = %+v, want 2 (constructor skipped)", res.Methods)
	}
	if res.Methods[0].Name != "fetch" || !res.Methods[0].IsAsync || res.Methods[0].ClassName != "Service" {
		t.Errorf("Methods[0] = %+v, want async Service.fetch", res.Methods[0])
	}
	if res.Methods[1].Name != "render" || res.Methods[1].IsAsync {
		t.Errorf("Methods[1] = %+v, want sync render", res.Methods[1])
	}
}

func TestScriptSameClassNameInTwoScopes(t *testing.T) {
	res := extractTS(t, `
function a() {
	class Foo {
		m1() {}
	}
}
function b() {
	class Foo {
		m2() {}
	}
}
`)

	if len(res.Classes) != 2 {
		t.Fatalf("Classes = %+v, want one record per declaration", res.Classes)
	}
	if len(res.Methods) != 2 {
		t.Fatalf("Methods = %+v, want m1 and m2", res.Methods)
	}
	if res.Methods[0].Name != "m1" || res.Methods[1].Name != "m2" {
		t.Errorf("Methods = %+v, want discovery order m1, m2", res.Methods)
	}
}

func TestScriptFunctionBindings(t *testing.T) {
	res := extractTS(t, `
const handler = async () => {};
export const submit = () => {};
const notAFunction = 42;
function plain() {}
async function fetchAll() {}
`)

	byName := make(map[string]domain.FunctionRecord)
	for _, fn := range res.Functions {
		byName[fn.Name] = fn
	}

	if len(byName) != 4 {
		t.Fatalf("Functions = %+v, want handler, submit, plain, fetchAll", res.Functions)
	}
	if fn := byName["handler"]; !fn.IsAsync || fn.IsExported {
		t.Errorf("handler = %+v, want async unexported", fn)
	}
	if fn := byName["submit"]; !fn.IsExported || fn.IsAsync {
		t.Errorf("submit = %+v, want exported sync", fn)
	}
	if fn := byName["fetchAll"]; !fn.IsAsync {
		t.Errorf("fetchAll = %+v, want async", fn)
	}
	if _, ok := byName["notAFunction"]; ok {
		t.Error("non-function binding must not yield a function record")
	}
}

func TestScriptTypeDeclarations(t *testing.T) {
	res := extractTS(t, `
interface Local { n: number }
export type Alias = Local;
enum Color { Red, Green }
`)

	type ty struct {
		name     string
		kind     domain.TypeKind
		exported bool
	}
	want := []ty{
		{"Local", domain.TypeKindInterface, false},
		{"Alias", domain.TypeKindAlias, true},
		{"Color", domain.TypeKindEnum, false},
	}
	if len(res.Types) != len(want) {
		t.Fatalf("Types = %+v, want %d", res.Types, len(want))
	}
	for i, w := range want {
		got := res.Types[i]
		if got.Name != w.name || got.TypeKind != w.kind || got.IsExported != w.exported {
			t.Errorf("Types[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestScriptSyntaxErrorMarksIncomplete(t *testing.T) {
	res := extractTS(t, "const ok = 1;\nfunction {{{\n")
	if !res.Incomplete() {
		t.Error("syntax errors must set the error marker")
	}
}
