package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/internal/cst"
)

func parseModule(t *testing.T, source string) *cst.Tree {
	t.Helper()
	tree, err := cst.Parse([]byte(source), "mod.py")
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestBuildModuleScope_TopLevelDefs(t *testing.T) {
	source := `import os

def greet(name):
    return name

class Widget:
    def render(self):
        return os.getcwd()
`
	tree := parseModule(t, source)
	bindings := core.NewImportBindings("mod.py")
	bindings.AddImport("os", "os")

	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", bindings)

	fqn, ok := global.Resolve("greet")
	require.True(t, ok)
	assert.Equal(t, "myapp.mod.greet", fqn)

	fqn, ok = global.Resolve("Widget")
	require.True(t, ok)
	assert.Equal(t, "myapp.mod.Widget", fqn)

	fqn, ok = global.Resolve("os")
	require.True(t, ok)
	assert.Equal(t, "os", fqn)
}

func TestScope_FreeNameResolvesToEnclosingFunction(t *testing.T) {
	source := `import os


def outer():
    def inner():
        return os.getcwd()
    return inner
`
	tree := parseModule(t, source)
	bindings := core.NewImportBindings("mod.py")
	bindings.AddImport("os", "os")
	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", bindings)

	outerDef := tree.Root.Child(1)
	require.Equal(t, "function_definition", outerDef.Type())
	outerScope := ScopeOf(global, outerDef.ChildByFieldName("body"))
	assert.Equal(t, Function, outerScope.Kind)

	fqn, ok := outerScope.Resolve("os")
	require.True(t, ok)
	assert.Equal(t, "os", fqn)
}

func TestScope_ClassBodyNotVisibleToMethod(t *testing.T) {
	source := `class Widget:
    LABEL = "x"

    def render(self):
        return LABEL
`
	tree := parseModule(t, source)
	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", core.NewImportBindings("mod.py"))

	classDef := tree.Root.Child(0)
	classScope := ScopeOf(global, classDef.ChildByFieldName("body"))
	_, ok := classScope.Resolve("LABEL")
	require.True(t, ok)

	methodDef := classDef.ChildByFieldName("body").NamedChild(1)
	require.Equal(t, "function_definition", methodDef.Type())
	methodScope := ScopeOf(global, methodDef.ChildByFieldName("body"))
	_, ok = methodScope.Resolve("LABEL")
	assert.False(t, ok, "a method body must not see its class's attributes as free names")
}

func TestResolveDottedHead(t *testing.T) {
	source := `import os

os.path.join("a", "b")
`
	tree := parseModule(t, source)
	bindings := core.NewImportBindings("mod.py")
	bindings.AddImport("os", "os")
	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", bindings)

	call := tree.Root.Child(1).Child(0)
	attr := call.ChildByFieldName("function")
	require.Equal(t, "attribute", attr.Type())

	head, fqn, trail, ok := ResolveDottedHead(attr, tree.Source, global)
	require.True(t, ok)
	assert.Equal(t, "os", head)
	assert.Equal(t, "os", fqn)
	assert.Equal(t, "path.join", trail)
}

func TestResolveDottedHead_UnboundNameFails(t *testing.T) {
	source := "unknown_thing.call()\n"
	tree := parseModule(t, source)
	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", core.NewImportBindings("mod.py"))

	call := tree.Root.Child(0).Child(0)
	attr := call.ChildByFieldName("function")

	_, _, _, ok := ResolveDottedHead(attr, tree.Source, global)
	assert.False(t, ok)
}

func TestFQNsOf_Identifier(t *testing.T) {
	source := "import os\nos\n"
	tree := parseModule(t, source)
	bindings := core.NewImportBindings("mod.py")
	bindings.AddImport("os", "os")
	global := BuildModuleScope(tree.Root, tree.Source, "myapp.mod", bindings)

	exprStmt := tree.Root.Child(1)
	ident := exprStmt.Child(0)
	require.Equal(t, "identifier", ident.Type())

	fqns := FQNsOf(ident, tree.Source, global)
	assert.Equal(t, []string{"os"}, fqns)
}
