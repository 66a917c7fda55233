package prune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
	"github.com/kmitra/pyshake/internal/refcount"
	"github.com/kmitra/pyshake/internal/resolve"
)

func pruneSource(t *testing.T, source string, bindings map[string]string, referenced []string) string {
	t.Helper()
	tree, err := cst.Parse([]byte(source), "mod.py")
	require.NoError(t, err)

	b := core.NewImportBindings("mod.py")
	for local, fqn := range bindings {
		b.AddImport(local, fqn)
	}

	scope := resolve.BuildModuleScope(tree.Root, tree.Source, "mod", b)
	stmts := refcount.ExtractModule(tree.Root, tree.Source, scope, b)

	idx := core.NewReferenceIndex()
	for _, fqn := range referenced {
		idx.Increment(fqn)
	}

	result := Module(tree, stmts, idx)
	return string(result.Source)
}

func TestModule_DeletesUnreferencedFunction(t *testing.T) {
	src := "def used():\n    return 1\n\n\ndef unused():\n    return 2\n"
	out := pruneSource(t, src, nil, []string{"mod.used"})

	assert.Contains(t, out, "def used")
	assert.NotContains(t, out, "def unused")
}

func TestModule_KeepsReferencedClassPrunesUnreferencedMethod(t *testing.T) {
	src := "class Widget:\n    def used(self):\n        return 1\n\n    def unused(self):\n        return 2\n"
	out := pruneSource(t, src, nil, []string{"mod.Widget", "mod.Widget.used"})

	assert.Contains(t, out, "class Widget")
	assert.Contains(t, out, "def used")
	assert.NotContains(t, out, "def unused")
}

func TestModule_DeletesEntireClassWhenUnreferenced(t *testing.T) {
	src := "class Widget:\n    def used(self):\n        return 1\n"
	out := pruneSource(t, src, nil, nil)

	assert.NotContains(t, out, "class Widget")
}

func TestModule_DeletesUnreferencedPlainImportKeepsReferencedOneViaBackfill(t *testing.T) {
	src := "import os\nimport sys\n\nos.getcwd()\n"
	bindings := map[string]string{"os": "os", "sys": "sys"}
	out := pruneSource(t, src, bindings, []string{"os.getcwd"})

	assert.Contains(t, out, "import os")
	assert.NotContains(t, out, "import sys")
}

func TestModule_FiltersFromImportToReferencedNames(t *testing.T) {
	src := "from json import dumps, loads\n\ndumps({})\n"
	bindings := map[string]string{"dumps": "json.dumps", "loads": "json.loads"}
	out := pruneSource(t, src, bindings, []string{"json.dumps"})

	assert.Contains(t, out, "from json import dumps")
	assert.NotContains(t, out, "loads")
}

func TestModule_DeletesFromImportWhenNoNameSurvives(t *testing.T) {
	src := "from json import dumps, loads\n"
	bindings := map[string]string{"dumps": "json.dumps", "loads": "json.loads"}
	out := pruneSource(t, src, bindings, nil)

	assert.Equal(t, "", out)
}

func TestModule_AssignmentPrunedWhenUnreferenced(t *testing.T) {
	src := "USED = 1\nUNUSED = 2\n\nprint(USED)\n"
	out := pruneSource(t, src, nil, []string{"mod.USED"})

	assert.Contains(t, out, "USED = 1")
	assert.NotContains(t, out, "UNUSED")
}

func TestModule_EmptyReportsTrueWhenNothingSurvives(t *testing.T) {
	tree, err := cst.Parse([]byte("def unused():\n    return 1\n"), "mod.py")
	require.NoError(t, err)

	b := core.NewImportBindings("mod.py")
	scope := resolve.BuildModuleScope(tree.Root, tree.Source, "mod", b)
	stmts := refcount.ExtractModule(tree.Root, tree.Source, scope, b)

	result := Module(tree, stmts, core.NewReferenceIndex())
	assert.True(t, result.Empty)
}

// pruneImportFromStatement is exercised directly here since a wildcard
// import never reaches extraction as a TopLevelStatement in the first place
// (extractImport finds no resolvable bound name), so the pipeline test in
// TestModule_FiltersFromImportToReferencedNames can't reach this branch.
func TestPruneImportFromStatement_NeverDeletesStarImport(t *testing.T) {
	tree, err := cst.Parse([]byte("from os import *\n"), "mod.py")
	require.NoError(t, err)

	importNode := tree.Root.NamedChild(0)
	require.Equal(t, "import_from_statement", importNode.Type())

	stmt := &core.TopLevelStatement{Type: core.StatementTypeImport, Node: importNode}
	var edits []cst.Edit
	survived := pruneImportFromStatement(stmt, tree.Source, core.NewReferenceIndex(), &edits)

	assert.True(t, survived)
	assert.Empty(t, edits)
}
