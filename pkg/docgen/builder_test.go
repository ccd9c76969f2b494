package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
	"github.com/example/pystub-gen/pkg/stub"
)

// buildDocFixture registers a small package exercising every item kind:
// a class with properties and methods, an enum, an overloaded function,
// an alias, a variable, and an error type.
func buildDocFixture(t *testing.T) *stub.Registry {
	t.Helper()
	r := stub.NewRegistry("pkg", nil)

	require.NoError(t, r.AddModuleDoc(meta.ModuleDocRecord{Module: "pkg", Doc: "Top module."}))
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID: "counter", Name: "Counter", Doc: "A counter.",
		Getters: []meta.MemberRecord{{Name: "value", Type: pytype.Int, Doc: "Current value."}},
		Setters: []meta.MemberRecord{{Name: "value", Type: pytype.Int}},
	}))
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID: "token", Name: "Token",
		Getters: []meta.MemberRecord{{Name: "text", Type: pytype.Str}},
	}))
	require.NoError(t, r.AddMethods(meta.MethodGroupRecord{
		ID: "counter",
		Methods: []meta.MethodRecord{{
			Name: "incr",
			Params: []meta.ParamRecord{{
				Name: "by", Kind: meta.PositionalOrKeyword,
				Type: pytype.Int, Default: meta.DefaultExpr("1"),
			}},
			Return: pytype.None_,
			Doc:    "Increase the count.",
		}},
	}))
	require.NoError(t, r.AddEnum(meta.EnumRecord{
		ID: "color", Name: "Color",
		Variants: []meta.EnumVariant{{Name: "Red"}, {Name: "Green", Doc: "Go."}},
	}))
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "load", IsOverload: true, Return: pytype.Str,
		Params: []meta.ParamRecord{{Name: "path", Kind: meta.PositionalOrKeyword, Type: pytype.Str}},
		Doc:    "Load from a path.",
	}))
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "load", IsOverload: true, Return: pytype.Str,
		Params: []meta.ParamRecord{{Name: "data", Kind: meta.PositionalOrKeyword, Type: pytype.Bytes}},
	}))
	require.NoError(t, r.AddTypeAlias(meta.TypeAliasRecord{
		Name: "Key", Module: "pkg", Type: pytype.Str,
	}))
	require.NoError(t, r.AddVariable(meta.VariableRecord{
		Name: "VERSION", Module: "pkg", Type: pytype.Str, Default: meta.DefaultExpr(`"1.0"`),
	}))
	require.NoError(t, r.AddError(meta.ErrorRecord{Name: "CounterError"}))
	require.NoError(t, r.Finalize())
	return r
}

func itemByName(t *testing.T, mod DocModule, name string) DocItem {
	t.Helper()
	for _, it := range mod.Items {
		if it.ItemName() == name {
			return it
		}
	}
	t.Fatalf("item %q not found in module %q", name, mod.Name)
	return nil
}

func TestBuilderFullPackage(t *testing.T) {
	r := buildDocFixture(t)
	pkg := NewBuilder(r.Modules(), "pkg", nil).Build()

	assert.Equal(t, "pkg", pkg.Name)
	require.Len(t, pkg.Modules, 1)
	mod := pkg.Modules[0]
	assert.Equal(t, "pkg", mod.Name)
	assert.Equal(t, "Top module.", mod.Doc)
	assert.Contains(t, mod.Exports, "Counter")
	assert.Contains(t, mod.Exports, "load")

	cls, ok := itemByName(t, mod, "Counter").(DocClass)
	require.True(t, ok)
	assert.Equal(t, KindClass, cls.ItemKind())
	assert.Equal(t, "A counter.", cls.Doc)
	require.Len(t, cls.Properties, 1)
	assert.Equal(t, "value", cls.Properties[0].Name)
	assert.False(t, cls.Properties[0].ReadOnly, "value has a setter")
	require.Len(t, cls.Methods, 1)
	assert.Equal(t, "incr", cls.Methods[0].Name)
	require.Len(t, cls.Methods[0].Signatures, 1)
	sig := cls.Methods[0].Signatures[0]
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "by", sig.Params[0].Name)
	assert.Equal(t, "1", sig.Params[0].Default)
	require.NotNil(t, sig.Returns)
	assert.Equal(t, "None", sig.Returns.Text)

	tok, ok := itemByName(t, mod, "Token").(DocClass)
	require.True(t, ok)
	require.Len(t, tok.Properties, 1)
	assert.True(t, tok.Properties[0].ReadOnly, "getter without setter")

	enum, ok := itemByName(t, mod, "Color").(DocEnum)
	require.True(t, ok)
	require.Len(t, enum.Variants, 2)
	assert.Equal(t, "Green", enum.Variants[1].Name)
	assert.Equal(t, "Go.", enum.Variants[1].Doc)

	fn, ok := itemByName(t, mod, "load").(DocFunction)
	require.True(t, ok)
	assert.Len(t, fn.Signatures, 2)
	assert.Equal(t, "Load from a path.", fn.Doc)

	alias, ok := itemByName(t, mod, "Key").(DocAlias)
	require.True(t, ok)
	assert.Equal(t, "str", alias.Type.Text)

	v, ok := itemByName(t, mod, "VERSION").(DocVariable)
	require.True(t, ok)
	assert.Equal(t, `"1.0"`, v.Default)

	e, ok := itemByName(t, mod, "CounterError").(DocError)
	require.True(t, ok)
	assert.Equal(t, "Exception", e.Base)
}

func TestBuilderSkipsHiddenAndCopiesReexports(t *testing.T) {
	r := buildRegistry(t)
	pkg := NewBuilder(r.Modules(), "pkg", nil).Build()

	require.Len(t, pkg.Modules, 1, "pkg._impl must not get its own page")
	mod := pkg.Modules[0]
	assert.Equal(t, "pkg", mod.Name)

	// Items defined in the hidden module show up under the re-exporter.
	names := make([]string, 0, len(mod.Items))
	for _, it := range mod.Items {
		names = append(names, it.ItemName())
	}
	assert.Contains(t, names, "Widget")
	assert.Contains(t, names, "make_widget")
	assert.Contains(t, names, "top_level")

	assert.Equal(t, "pkg", pkg.ExportMap["pkg._impl.Widget"])
}

func TestBuilderDeterministic(t *testing.T) {
	r := buildDocFixture(t)
	a, err := Marshal(NewBuilder(r.Modules(), "pkg", nil).Build(), FormatJSON)
	require.NoError(t, err)
	b, err := Marshal(NewBuilder(r.Modules(), "pkg", nil).Build(), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
