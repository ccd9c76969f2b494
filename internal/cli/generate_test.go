package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, dir, toml string) string {
	t.Helper()
	path := filepath.Join(dir, "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))
	return path
}

func writeRecords(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleBatch), 0o644))
	return path
}

func TestGenerateMixedProjectWithDocs(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir, `
[project]
name = "sample"

[tool.maturin]
python-source = "python"

[tool.pystub-gen.doc-gen]
output-dir = "docs"
separate-pages = false
`)
	recordsPath := writeRecords(t, dir)

	err := Generate(&GenerateConfig{
		ConfigPath:  configPath,
		RecordsPath: recordsPath,
		Format:      "json",
	})
	require.NoError(t, err)

	stubText, err := os.ReadFile(filepath.Join(dir, "python", "sample", "__init__.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(stubText), "# This file is automatically generated by pystub-gen")
	assert.Contains(t, string(stubText), "class Counter:")

	_, err = os.Stat(filepath.Join(dir, "docs", "api_reference.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "docs", "index.rst"))
	assert.NoError(t, err)
}

func TestGenerateFlatLayoutWithOutputOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir, `
[project]
name = "sample"
`)
	recordsPath := writeRecords(t, dir)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	err := Generate(&GenerateConfig{
		ConfigPath:  configPath,
		RecordsPath: recordsPath,
		OutputDir:   outDir,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "sample.pyi"))
	assert.NoError(t, err)
}

func TestGenerateRejectsBadDocFormat(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir, `
[project]
name = "sample"

[tool.pystub-gen.doc-gen]
output-dir = "docs"
`)
	recordsPath := writeRecords(t, dir)

	err := Generate(&GenerateConfig{
		ConfigPath:  configPath,
		RecordsPath: recordsPath,
		OutputDir:   t.TempDir(),
		Format:      "toml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported doc format")
}
