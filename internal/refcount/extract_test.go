package refcount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/resolve"
)

func extractSource(t *testing.T, source string, bindings map[string]string) []*core.TopLevelStatement {
	t.Helper()
	tree, err := cst.Parse([]byte(source), "mod.py")
	require.NoError(t, err)

	b := core.NewImportBindings("mod.py")
	for local, fqn := range bindings {
		b.AddImport(local, fqn)
	}

	scope := resolve.BuildModuleScope(tree.Root, tree.Source, "mod", b)
	return ExtractModule(tree.Root, tree.Source, scope, b)
}

func findStatement(stmts []*core.TopLevelStatement, fqn string) *core.TopLevelStatement {
	for _, s := range stmts {
		for _, d := range s.DefinedFQNs {
			if d == fqn {
				return s
			}
		}
	}
	return nil
}

func TestExtract_TopLevelFunctionAndUsage(t *testing.T) {
	src := "import os\n\ndef greet():\n    return os.getcwd()\n"
	stmts := extractSource(t, src, map[string]string{"os": "os"})

	greet := findStatement(stmts, "mod.greet")
	require.NotNil(t, greet)
	assert.Equal(t, core.StatementTypeFunctionDef, greet.Type)
	assert.Contains(t, greet.UsedFQNs, "os.getcwd")
}

func TestExtract_ClassMethodsAreIndependentlyDefined(t *testing.T) {
	src := "class Widget:\n    def used(self):\n        return 1\n\n    def unused(self):\n        return 2\n"
	stmts := extractSource(t, src, nil)

	widget := findStatement(stmts, "mod.Widget")
	require.NotNil(t, widget)
	require.Len(t, widget.Nested, 2)

	used := findStatement(widget.Nested, "mod.Widget.used")
	unused := findStatement(widget.Nested, "mod.Widget.unused")
	require.NotNil(t, used)
	require.NotNil(t, unused)
}

func TestExtract_DecoratorRecorded(t *testing.T) {
	src := "class Widget:\n    @property\n    def value(self):\n        return self._value\n"
	stmts := extractSource(t, src, nil)

	widget := findStatement(stmts, "mod.Widget")
	require.NotNil(t, widget)
	require.Len(t, widget.Nested, 1)
	assert.Equal(t, []string{"property"}, widget.Nested[0].Decorators)
}

func TestExtract_ImportStatementCarriesImportedNames(t *testing.T) {
	src := "from requests import get\n"
	stmts := extractSource(t, src, map[string]string{"get": "requests.get"})

	require.Len(t, stmts, 1)
	assert.Equal(t, core.StatementTypeImport, stmts[0].Type)
	assert.Equal(t, map[string]string{"get": "requests.get"}, stmts[0].ImportedNames)
}

func TestExtract_MainGuardDetected(t *testing.T) {
	src := "def run():\n    pass\n\nif __name__ == \"__main__\":\n    run()\n"
	stmts := extractSource(t, src, nil)

	var guard *core.TopLevelStatement
	for _, s := range stmts {
		if s.Type == core.StatementTypeMainGuard {
			guard = s
		}
	}
	require.NotNil(t, guard)
	assert.Contains(t, guard.UsedFQNs, "mod.run")
}

func TestExtract_ModuleAssignmentDefinesFQN(t *testing.T) {
	src := "VERSION = \"1.0\"\n"
	stmts := extractSource(t, src, nil)

	version := findStatement(stmts, "mod.VERSION")
	require.NotNil(t, version)
	assert.Equal(t, core.StatementTypeAssignment, version.Type)
}
