package pyproject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimal(t *testing.T) {
	path := writeToml(t, `
[project]
name = "purepkg"
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "purepkg", p.ModuleName())
	_, mixed := p.PythonSource()
	assert.False(t, mixed)
	assert.False(t, p.StubGen().UseTypeStatement)
	_, ok := p.DocGen()
	assert.False(t, ok)
}

func TestLoadMixedProject(t *testing.T) {
	path := writeToml(t, `
[project]
name = "mixedpkg"

[tool.maturin]
python-source = "python"
module-name = "mixedpkg._core"
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mixedpkg._core", p.ModuleName())
	dir, mixed := p.PythonSource()
	require.True(t, mixed)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "python"), dir)
}

func TestLoadStubGenSection(t *testing.T) {
	path := writeToml(t, `
[project]
name = "pkg"

[tool.pystub-gen]
use-type-statement = true

[tool.pystub-gen.doc-gen]
output-dir = "docs/reference"
index-title = "pkg Reference"
contents-table = true
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.True(t, p.StubGen().UseTypeStatement)
	cfg, ok := p.DocGen()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "docs/reference"), cfg.OutputDir)
	assert.Equal(t, "api_reference.json", cfg.JSONOutput)
	require.NotNil(t, cfg.SeparatePages)
	assert.True(t, *cfg.SeparatePages, "separate pages defaults on")
	require.NotNil(t, cfg.IndexTitle)
	assert.Equal(t, "pkg Reference", *cfg.IndexTitle)
	assert.Nil(t, cfg.IntroMessage)
	assert.True(t, cfg.ContentsTable)
}

func TestLoadDocGenDefaults(t *testing.T) {
	path := writeToml(t, `
[project]
name = "pkg"

[tool.pystub-gen.doc-gen]
`)
	p, err := Load(path)
	require.NoError(t, err)

	cfg, ok := p.DocGen()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "docs/api"), cfg.OutputDir)
}

func TestLoadRejectsWrongFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[project]\nname = \"x\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a pyproject.toml")
}

func TestLoadRequiresProjectName(t *testing.T) {
	path := writeToml(t, `
[tool.pystub-gen]
use-type-statement = true
`)
	_, err := Load(path)
	assert.Error(t, err)
}
