// Command no_setenv_in_tests reports environment mutation in test files.
//
//	go vet -vettool=$(which no_setenv_in_tests) ./...
package main

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/analysis/singlechecker"
	"golang.org/x/tools/go/ast/inspector"
)

const doc = `no_setenv_in_tests: prevent os.Setenv and t.Setenv usage in test files

Tests build configuration from in-memory maps (config.LoadFromMap,
testutil.LoadTestConfigFrom) instead of mutating the process environment,
which races with parallel tests.`

const hint = "build config with config.LoadFromMap or testutil.LoadTestConfigFrom instead of mutating the process environment"

var Analyzer = &analysis.Analyzer{
	Name:     "no_setenv_in_tests",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func main() {
	singlechecker.Main(Analyzer)
}

func run(pass *analysis.Pass) (interface{}, error) {
	if !hasTestFile(pass.Fset, pass.Files) {
		return nil, nil
	}

	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	nodeFilter := []ast.Node{(*ast.CallExpr)(nil)}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if !isTestFile(pass.Fset, call.Pos()) {
			return
		}

		fun, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || fun.Sel.Name != "Setenv" {
			return
		}

		if pkg, ok := fun.X.(*ast.Ident); ok {
			if pkgName, ok := pass.TypesInfo.ObjectOf(pkg).(*types.PkgName); ok && pkgName.Imported().Path() == "os" {
				pass.Reportf(call.Pos(), "os.Setenv is forbidden in test files: %s", hint)
				return
			}
		}

		if isTestingType(pass.TypesInfo.TypeOf(fun.X)) {
			pass.Reportf(call.Pos(), "t.Setenv is forbidden in test files: %s", hint)
		}
	})

	return nil, nil
}

func hasTestFile(fset *token.FileSet, files []*ast.File) bool {
	for _, file := range files {
		if isTestFile(fset, file.Package) {
			return true
		}
	}
	return false
}

func isTestFile(fset *token.FileSet, pos token.Pos) bool {
	return strings.HasSuffix(fset.Position(pos).Filename, "_test.go")
}

// isTestingType matches *testing.T, *testing.B and testing.TB.
func isTestingType(t types.Type) bool {
	if t == nil {
		return false
	}
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	if named.Obj().Pkg().Path() != "testing" {
		return false
	}
	switch named.Obj().Name() {
	case "T", "B", "TB":
		return true
	}
	return false
}
