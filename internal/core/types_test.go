package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPackageIndex(t *testing.T) {
	pi := NewPackageIndex()

	assert.NotNil(t, pi)
	assert.NotNil(t, pi.Modules)
	assert.NotNil(t, pi.ShortNames)
	assert.Equal(t, 0, len(pi.Modules))
}

func TestPackageIndex_AddModule(t *testing.T) {
	tests := []struct {
		name       string
		modulePath string
		filePath   string
		shortName  string
	}{
		{
			name:       "Simple module",
			modulePath: "myapp.views",
			filePath:   "/path/to/myapp/views.py",
			shortName:  "views",
		},
		{
			name:       "Nested module",
			modulePath: "myapp.utils.helpers",
			filePath:   "/path/to/myapp/utils/helpers.py",
			shortName:  "helpers",
		},
		{
			name:       "Package init",
			modulePath: "myapp.utils",
			filePath:   "/path/to/myapp/utils/__init__.py",
			shortName:  "utils",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPackageIndex()
			pi.AddModule(tt.modulePath, tt.filePath)

			path, ok := pi.GetModulePath(tt.modulePath)
			assert.True(t, ok)
			assert.Equal(t, tt.filePath, path)

			assert.Contains(t, pi.ShortNames[tt.shortName], tt.filePath)
		})
	}
}

func TestPackageIndex_AddModule_AmbiguousShortNames(t *testing.T) {
	pi := NewPackageIndex()

	pi.AddModule("myapp.utils.helpers", "/path/to/myapp/utils/helpers.py")
	pi.AddModule("lib.helpers", "/path/to/lib/helpers.py")

	assert.Equal(t, 2, len(pi.ShortNames["helpers"]))
	assert.Contains(t, pi.ShortNames["helpers"], "/path/to/myapp/utils/helpers.py")
	assert.Contains(t, pi.ShortNames["helpers"], "/path/to/lib/helpers.py")

	path1, ok1 := pi.GetModulePath("myapp.utils.helpers")
	assert.True(t, ok1)
	assert.Equal(t, "/path/to/myapp/utils/helpers.py", path1)

	path2, ok2 := pi.GetModulePath("lib.helpers")
	assert.True(t, ok2)
	assert.Equal(t, "/path/to/lib/helpers.py", path2)
}

func TestPackageIndex_GetModulePath_NotFound(t *testing.T) {
	pi := NewPackageIndex()

	path, ok := pi.GetModulePath("nonexistent.module")
	assert.False(t, ok)
	assert.Equal(t, "", path)
}

func TestNewImportBindings(t *testing.T) {
	filePath := "/path/to/file.py"
	im := NewImportBindings(filePath)

	assert.NotNil(t, im)
	assert.Equal(t, filePath, im.FilePath)
	assert.NotNil(t, im.Bindings)
	assert.Equal(t, 0, len(im.Bindings))
}

func TestImportBindings_AddImport(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		fqn   string
	}{
		{name: "Simple import", alias: "utils", fqn: "myapp.utils"},
		{name: "Aliased import", alias: "clean", fqn: "myapp.utils.sanitize"},
		{name: "Full module import", alias: "myapp.db.models", fqn: "myapp.db.models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := NewImportBindings("/path/to/file.py")
			im.AddImport(tt.alias, tt.fqn)

			fqn, ok := im.Resolve(tt.alias)
			assert.True(t, ok)
			assert.Equal(t, tt.fqn, fqn)
		})
	}
}

func TestImportBindings_Resolve_NotFound(t *testing.T) {
	im := NewImportBindings("/path/to/file.py")

	fqn, ok := im.Resolve("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, "", fqn)
}

func TestImportBindings_Multiple(t *testing.T) {
	im := NewImportBindings("/path/to/file.py")

	imports := map[string]string{
		"utils":    "myapp.utils",
		"sanitize": "myapp.utils.sanitize",
		"clean":    "myapp.utils.clean",
		"db":       "myapp.db",
	}

	for alias, fqn := range imports {
		im.AddImport(alias, fqn)
	}

	for alias, expectedFqn := range imports {
		fqn, ok := im.Resolve(alias)
		assert.True(t, ok)
		assert.Equal(t, expectedFqn, fqn)
	}
}

func TestLocation(t *testing.T) {
	loc := Location{
		File:   "/path/to/file.py",
		Line:   42,
		Column: 10,
	}

	assert.Equal(t, "/path/to/file.py", loc.File)
	assert.Equal(t, 42, loc.Line)
	assert.Equal(t, 10, loc.Column)
}

func TestExtractShortName(t *testing.T) {
	tests := []struct {
		name       string
		modulePath string
		expected   string
	}{
		{name: "Simple module", modulePath: "views", expected: "views"},
		{name: "Two components", modulePath: "myapp.views", expected: "views"},
		{name: "Three components", modulePath: "myapp.utils.helpers", expected: "helpers"},
		{name: "Deep nesting", modulePath: "myapp.api.v1.endpoints.users", expected: "users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractShortName(tt.modulePath)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		slice    []string
		item     string
		expected bool
	}{
		{name: "Item exists", slice: []string{"a", "b", "c"}, item: "b", expected: true},
		{name: "Item does not exist", slice: []string{"a", "b", "c"}, item: "d", expected: false},
		{name: "Empty slice", slice: []string{}, item: "a", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := contains(tt.slice, tt.item)
			assert.Equal(t, tt.expected, result)
		})
	}
}
