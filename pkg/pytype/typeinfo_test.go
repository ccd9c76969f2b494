package pytype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsRewritesDefaultRefs(t *testing.T) {
	typ := Custom(ModuleRef{}, "Widget").ResolveDefaults("pkg")

	module, named := typ.SourceModule.Named()
	require.True(t, named)
	assert.Equal(t, "pkg", module)
	assert.Contains(t, typ.Import, "pkg")

	module, named = typ.TypeRefs["Widget"].Module.Named()
	require.True(t, named)
	assert.Equal(t, "pkg", module)
}

func TestResolveDefaultsDoesNotMutateOriginal(t *testing.T) {
	orig := Custom(ModuleRef{}, "Widget")
	_ = orig.ResolveDefaults("pkg")

	assert.True(t, orig.TypeRefs["Widget"].Module.IsDefault())
	assert.NotContains(t, orig.Import, "pkg")
}

func TestResolveDefaultsLeavesNamedModulesAlone(t *testing.T) {
	u := Union(
		Custom(NamedModule("pkg.a"), "A"),
		Custom(NamedModule("pkg.b"), "B"),
	)
	resolved := u.ResolveDefaults("pkg")

	// No reference pointed at the default module, so the union keeps its
	// unset source module and gains no root-module import.
	assert.True(t, resolved.SourceModule.IsDefault())
	assert.NotContains(t, resolved.Import, "pkg")
	assert.Contains(t, resolved.Import, "pkg.a")
	assert.Contains(t, resolved.Import, "pkg.b")
}
