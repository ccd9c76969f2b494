package stub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

func TestWriteStubsMixedLayout(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{ID: "A", Name: "Root"}))
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID: "B", Name: "Nested", Module: pytype.NamedModule("pkg.sub"),
	}))
	require.NoError(t, r.Finalize())

	dir := t.TempDir()
	w := NewWriter(nil)
	require.NoError(t, w.WriteStubs(r, WriteConfig{Dir: dir, Layout: MixedLayout}))

	root, err := os.ReadFile(filepath.Join(dir, "pkg", "__init__.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "class Root:")
	assert.Contains(t, string(root), "from . import sub")

	sub, err := os.ReadFile(filepath.Join(dir, "pkg", "sub.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(sub), "class Nested:")
}

func TestWriteStubsFlatLayout(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{ID: "A", Name: "Root"}))
	require.NoError(t, r.Finalize())

	dir := t.TempDir()
	w := NewWriter(nil)
	require.NoError(t, w.WriteStubs(r, WriteConfig{Dir: dir, Layout: FlatLayout}))

	flat, err := os.ReadFile(filepath.Join(dir, "pkg.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(flat), "class Root:")
}

func TestWriteStubsFlatLayoutRejectsMultipleModules(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{ID: "A", Name: "Root"}))
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID: "B", Name: "Nested", Module: pytype.NamedModule("pkg.sub"),
	}))
	require.NoError(t, r.Finalize())

	err := NewWriter(nil).WriteStubs(r, WriteConfig{Dir: t.TempDir(), Layout: FlatLayout})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flat layout")
}
