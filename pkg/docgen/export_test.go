package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
	"github.com/example/pystub-gen/pkg/stub"
)

func TestIsHiddenModule(t *testing.T) {
	assert.False(t, IsHiddenModule("pkg"))
	assert.False(t, IsHiddenModule("pkg.sub"))
	assert.True(t, IsHiddenModule("pkg._impl"))
	assert.True(t, IsHiddenModule("pkg._impl.deep"))
	assert.True(t, IsHiddenModule("_pkg"))
}

// buildRegistry assembles the fixture package used across the resolver
// tests: a public module re-exporting a hidden implementation module.
func buildRegistry(t *testing.T) *stub.Registry {
	t.Helper()
	r := stub.NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID: "widget", Name: "Widget", Module: pytype.NamedModule("pkg._impl"),
	}))
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "make_widget", Module: pytype.NamedModule("pkg._impl"), Return: pytype.Int,
	}))
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "top_level", Return: pytype.Int,
	}))
	require.NoError(t, r.AddReexport(meta.ReexportRecord{
		TargetModule: "pkg", SourceModule: "pkg._impl",
	}))
	require.NoError(t, r.Finalize())
	return r
}

func TestExportResolverCanonicalModules(t *testing.T) {
	r := buildRegistry(t)
	res := NewExportResolver(r.Modules())

	// Defined and exported in a public module: documented there.
	assert.Equal(t, "pkg", res.CanonicalModule("pkg.top_level"))
	// Defined in a hidden module but re-exported publicly: the public
	// re-exporter becomes the documenting module.
	assert.Equal(t, "pkg", res.CanonicalModule("pkg._impl.Widget"))
	assert.Equal(t, "pkg", res.CanonicalModule("pkg._impl.make_widget"))

	m := res.ExportMap()
	assert.Equal(t, "pkg", m["pkg._impl.Widget"])

	kind, ok := res.Kind("pkg._impl.Widget")
	require.True(t, ok)
	assert.Equal(t, KindClass, kind)
}

func TestExportResolverHiddenOnly(t *testing.T) {
	r := stub.NewRegistry("pkg", nil)
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "secret", Module: pytype.NamedModule("pkg._impl"), Return: pytype.Int,
	}))
	require.NoError(t, r.Finalize())

	res := NewExportResolver(r.Modules())
	assert.Equal(t, "", res.CanonicalModule("pkg._impl.secret"))
	assert.NotContains(t, res.ExportMap(), "pkg._impl.secret")
}

func TestResolveLinkRules(t *testing.T) {
	r := buildRegistry(t)
	res := NewExportResolver(r.Modules())
	links := NewLinkResolver(res)

	// Rule 1: the current module exports the item, link locally.
	target, ok := links.ResolveLink("pkg._impl.Widget", "pkg")
	require.True(t, ok)
	assert.Equal(t, "pkg", target.Module)
	assert.Equal(t, KindClass, target.Kind)

	// Rule 2: not exported from current, fall back to the canonical
	// public exporter.
	target, ok = links.ResolveLink("pkg.top_level", "pkg.other")
	require.True(t, ok)
	assert.Equal(t, "pkg", target.Module)

	// Rule 3: hidden everywhere means no link.
	r2 := stub.NewRegistry("pkg", nil)
	require.NoError(t, r2.AddFunction(meta.FunctionRecord{
		Name: "secret", Module: pytype.NamedModule("pkg._impl"), Return: pytype.Int,
	}))
	require.NoError(t, r2.Finalize())
	links2 := NewLinkResolver(NewExportResolver(r2.Modules()))
	_, ok = links2.ResolveLink("pkg._impl.secret", "pkg")
	assert.False(t, ok)
}
