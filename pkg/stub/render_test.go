package stub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

func TestClassRendering(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID:   "point",
		Name: "Point",
		Doc:  "A 2D point.",
		Getters: []meta.MemberRecord{
			{Name: "x", Type: pytype.Float, Doc: "Horizontal coordinate."},
		},
		Setters: []meta.MemberRecord{
			{Name: "x", Type: pytype.Float},
		},
	}))
	require.NoError(t, r.AddMethods(meta.MethodGroupRecord{
		ID: "point",
		Methods: []meta.MethodRecord{
			{
				Name: "__new__",
				Kind: meta.NewMethod,
				Params: []meta.ParamRecord{
					{Name: "x", Kind: meta.PositionalOrKeyword, Type: pytype.Float},
					{Name: "y", Kind: meta.PositionalOrKeyword, Type: pytype.Float, Default: meta.DefaultExpr("0.0")},
				},
				Return: func() pytype.TypeInfo { return pytype.Unqualified("Point") },
			},
			{Name: "norm", Return: pytype.Float, Doc: "Euclidean norm."},
			{Name: "scale", Kind: meta.StaticMethod, Params: []meta.ParamRecord{
				{Name: "factor", Kind: meta.PositionalOrKeyword, Type: pytype.Float},
			}, Return: func() pytype.TypeInfo { return pytype.Unqualified("Point") }},
		},
	}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())

	assert.Contains(t, text, "@typing.final\nclass Point:")
	assert.Contains(t, text, "    A 2D point.")
	assert.Contains(t, text, "def __new__(cls, x: float, y: float = 0.0) -> Point: ...")
	assert.Contains(t, text, "    @property\n    def x(self) -> float:")
	assert.Contains(t, text, "    @x.setter\n    def x(self, value: float) -> None: ...")
	assert.Contains(t, text, "    @staticmethod\n    def scale(factor: float) -> Point: ...")
	assert.Contains(t, text, "def norm(self) -> float:")
	// Constructor renders before regular methods.
	assert.Less(t, strings.Index(text, "__new__"), strings.Index(text, "def norm"))
}

func TestDeprecatedRendering(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name:       "old_api",
		Return:     pytype.Int,
		Deprecated: &meta.DeprecatedRecord{Since: "0.9.0", Note: "use new_api instead"},
	}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())
	assert.Contains(t, text, `@typing_extensions.deprecated("[Since 0.9.0] use new_api instead")`)
	assert.Contains(t, text, "import typing_extensions")
}

func TestTaggedEnumLowering(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddTaggedEnum(meta.TaggedEnumRecord{
		ID:   "shape",
		Name: "Shape",
		Variants: []meta.VariantRecord{
			{Name: "Empty", Shape: meta.UnitVariant},
			{
				Name:  "Circle",
				Shape: meta.TupleVariant,
				Fields: []meta.MemberRecord{
					{Name: "radius", Type: pytype.Float},
				},
				CtorParams: []meta.ParamRecord{
					{Name: "radius", Kind: meta.PositionalOrKeyword, Type: pytype.Float},
				},
			},
			{
				Name:  "Rect",
				Shape: meta.StructVariant,
				Fields: []meta.MemberRecord{
					{Name: "w", Type: pytype.Float},
					{Name: "h", Type: pytype.Float},
				},
				CtorParams: []meta.ParamRecord{
					{Name: "w", Kind: meta.PositionalOrKeyword, Type: pytype.Float},
					{Name: "h", Kind: meta.PositionalOrKeyword, Type: pytype.Float},
				},
			},
		},
	}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())

	assert.Contains(t, text, "class Shape:")
	assert.Contains(t, text, "    class Empty:")
	assert.Contains(t, text, "    class Circle:")
	assert.Contains(t, text, `__match_args__ = ("radius",)`)
	assert.Contains(t, text, `__match_args__ = ("w", "h")`)
	assert.Contains(t, text, "def __new__(cls, radius: float) -> Shape.Circle: ...")
	// Tuple variants destructure like the native payload.
	assert.Contains(t, text, "def __len__(self) -> int: ...")
	assert.Contains(t, text, "def __getitem__(self, index: int, /) -> typing.Any: ...")
	// Unit variants still construct.
	assert.Contains(t, text, "def __new__(cls) -> Shape.Empty: ...")
}

func TestGetterDefaultSurfacesInDocstring(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{
		ID:   "cfg",
		Name: "Config",
		Getters: []meta.MemberRecord{
			{Name: "retries", Type: pytype.Int, Doc: "Retry budget.", Default: meta.DefaultLiteral(3)},
		},
	}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())
	assert.Contains(t, text, "Retry budget.")
	assert.Contains(t, text, "```python\n")
	assert.Contains(t, text, "default = 3")
}

func TestAliasVariableErrorRendering(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddTypeAlias(meta.TypeAliasRecord{
		Name: "Scalar", Module: "pkg",
		Type: func() pytype.TypeInfo { return pytype.Union(pytype.Int(), pytype.Float()) },
	}))
	require.NoError(t, r.AddVariable(meta.VariableRecord{
		Name: "VERSION", Module: "pkg", Type: pytype.Str,
		Default: meta.DefaultExpr(`"1.0.0"`),
	}))
	require.NoError(t, r.AddError(meta.ErrorRecord{Name: "ParseError", Base: "ValueError"}))
	require.NoError(t, r.Finalize())

	legacy := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())
	assert.Contains(t, legacy, "Scalar: typing.TypeAlias = int | float")
	assert.Contains(t, legacy, `VERSION: str = "1.0.0"`)
	assert.Contains(t, legacy, "class ParseError(ValueError): ...")

	modern := r.Modules()["pkg"].Render(RenderConfig{UseTypeStatement: true}, r.ModuleSet())
	assert.Contains(t, modern, "type Scalar = int | float")
}

func TestModuleDocAndBanner(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddModuleDoc(meta.ModuleDocRecord{Module: "pkg", Doc: "Fast native bindings."}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())
	require.True(t, strings.HasPrefix(text, "# This file is automatically generated by pystub-gen\n"))
	assert.Contains(t, text, "# ruff: noqa: E501, F401")
	assert.Contains(t, text, "Fast native bindings.")
}

func TestAsyncAndNoReturn(t *testing.T) {
	r := NewRegistry("pkg", nil)
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "wait", IsAsync: true, Return: func() pytype.TypeInfo { return pytype.None_() },
	}))
	require.NoError(t, r.AddFunction(meta.FunctionRecord{
		Name: "halt", Return: pytype.NoReturn,
	}))
	require.NoError(t, r.Finalize())

	text := r.Modules()["pkg"].Render(RenderConfig{}, r.ModuleSet())
	assert.Contains(t, text, "async def wait() -> None: ...")
	// The no-value sentinel suppresses the arrow clause entirely.
	assert.Contains(t, text, "def halt(): ...")
}
