package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedStdlibRegistry(t *testing.T) {
	registry, err := LoadEmbeddedStdlibRegistry()
	require.NoError(t, err)
	require.NotNil(t, registry)

	assert.True(t, registry.HasModule("os"))
	assert.True(t, registry.HasModule("json"))
	assert.True(t, registry.HasModule("xml"))
	assert.False(t, registry.HasModule("numpy"))
	assert.Greater(t, registry.ModuleCount(), 100)
	assert.Equal(t, "3.12.0", registry.Manifest.LanguageVersion.Full)
}

func TestStdlibRegistryLoader_LoadRegistry(t *testing.T) {
	manifest := []byte(`{
		"schema_version": "1.0",
		"registry_version": "test",
		"language_version": {"major": 2, "minor": 7, "patch": 18, "full": "2.7.18"},
		"generated_at": "2026-01-01T00:00:00Z",
		"modules": [{"name": "os"}, {"name": "sys"}]
	}`)

	loader := &StdlibRegistryLoader{ManifestPath: "/fake/manifest.json"}
	registry, err := loader.LoadRegistry(func(path string) ([]byte, error) {
		assert.Equal(t, "/fake/manifest.json", path)
		return manifest, nil
	})

	require.NoError(t, err)
	assert.True(t, registry.HasModule("os"))
	assert.True(t, registry.HasModule("sys"))
	assert.False(t, registry.HasModule("json"))
	assert.Equal(t, "2.7.18", registry.Manifest.LanguageVersion.Full)
	assert.Equal(t, 2, registry.Manifest.Statistics.TotalModules)
}

func TestStdlibRegistryLoader_ReadError(t *testing.T) {
	loader := &StdlibRegistryLoader{ManifestPath: "/missing/manifest.json"}
	_, err := loader.LoadRegistry(func(string) ([]byte, error) {
		return nil, errors.New("no such file")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read stdlib manifest")
}

func TestStdlibRegistryLoader_CorruptedManifest(t *testing.T) {
	loader := &StdlibRegistryLoader{ManifestPath: "/fake/manifest.json"}
	_, err := loader.LoadRegistry(func(string) ([]byte, error) {
		return []byte("not valid json"), nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse stdlib manifest")
}

func TestParseStdlibManifest_DefaultStatistics(t *testing.T) {
	manifest := []byte(`{
		"schema_version": "1.0",
		"registry_version": "test",
		"language_version": {"major": 3, "minor": 12, "patch": 0, "full": "3.12.0"},
		"modules": [{"name": "os"}, {"name": "sys"}, {"name": "json"}]
	}`)

	registry, err := parseStdlibManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, 3, registry.Manifest.Statistics.TotalModules)
}
