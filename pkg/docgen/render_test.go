package docgen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func docFixturePackage(t *testing.T) DocPackage {
	t.Helper()
	r := buildDocFixture(t)
	return NewBuilder(r.Modules(), "pkg", nil).Build()
}

func TestMarshalJSON(t *testing.T) {
	pkg := docFixturePackage(t)
	data, err := Marshal(pkg, FormatJSON)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pkg", decoded["name"])
	mods, ok := decoded["modules"].([]any)
	require.True(t, ok)
	require.Len(t, mods, 1)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestMarshalYAMLSharesKeys(t *testing.T) {
	pkg := docFixturePackage(t)
	data, err := Marshal(pkg, FormatYAML)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "pkg", decoded["name"])
	assert.Contains(t, decoded, "modules")
	assert.Contains(t, decoded, "export_map")
}

func TestRendererWriteSinglePage(t *testing.T) {
	pkg := docFixturePackage(t)
	dir := t.TempDir()

	err := NewRenderer(nil).Write(pkg, RenderOptions{
		OutputDir:    dir,
		Format:       FormatJSON,
		IntroMessage: "Generated reference.",
	})
	require.NoError(t, err)

	tree, err := os.ReadFile(filepath.Join(dir, "api.json"))
	require.NoError(t, err)
	assert.Contains(t, string(tree), `"Counter"`)

	index, err := os.ReadFile(filepath.Join(dir, "index.rst"))
	require.NoError(t, err)
	text := string(index)
	assert.Contains(t, text, "pkg API\n=======")
	assert.Contains(t, text, "Generated reference.")
	assert.Contains(t, text, ".. py:class:: pkg.Counter")
	assert.Contains(t, text, ".. py:function:: pkg.load(path: str) -> str")
	assert.Contains(t, text, ".. py:exception:: pkg.CounterError(Exception)")
	assert.NotContains(t, text, "toctree")

	_, err = os.Stat(filepath.Join(dir, "pystub.css"))
	assert.NoError(t, err)
}

func TestRendererWriteSeparatePages(t *testing.T) {
	pkg := docFixturePackage(t)
	dir := t.TempDir()

	err := NewRenderer(nil).Write(pkg, RenderOptions{
		OutputDir:     dir,
		TreeFilename:  "tree.yaml",
		Format:        FormatYAML,
		SeparatePages: true,
		IndexTitle:    "Reference",
		ContentsTable: true,
	})
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(dir, "index.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Reference\n=========")
	assert.Contains(t, string(index), ".. toctree::")
	assert.Contains(t, string(index), "   pkg\n")

	page, err := os.ReadFile(filepath.Join(dir, "pkg.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(page), ".. contents::")
	assert.Contains(t, string(page), "Top module.")
	assert.Contains(t, string(page), ".. py:class:: pkg.Color")

	_, err = os.Stat(filepath.Join(dir, "tree.yaml"))
	assert.NoError(t, err)
}

func TestRendererRequiresOutputDir(t *testing.T) {
	err := NewRenderer(nil).Write(DocPackage{Name: "pkg"}, RenderOptions{})
	assert.Error(t, err)
}
