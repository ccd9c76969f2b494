package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
	"github.com/example/pystub-gen/pkg/stub"
)

func TestStripDisplayPrefixes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"typing.Optional[int]", "Optional[int]"},
		{"typing_extensions.deprecated", "deprecated"},
		{"pkg.Widget", "Widget"},
		{"pkg._impl.Widget", "Widget"},
		{"other.Widget", "other.Widget"},
		{"dict[str, typing.Any]", "dict[str, Any]"},
		{"int | pkg.Widget | None", "int | Widget | None"},
		{"typing", "typing"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StripDisplayPrefixes(c.in, "pkg"), "input %q", c.in)
	}
}

func newTestRenderer(t *testing.T) *TypeRenderer {
	t.Helper()
	r := buildRegistry(t)
	links := NewLinkResolver(NewExportResolver(r.Modules()))
	return NewTypeRenderer(links, "pkg")
}

func TestTypeRendererSimple(t *testing.T) {
	tr := newTestRenderer(t)

	expr := tr.Render(pytype.Int(), "pkg")
	require.NotNil(t, expr)
	assert.Equal(t, "int", expr.Text)
	assert.Nil(t, expr.Link)
	assert.Empty(t, expr.Args)
	assert.Empty(t, expr.Union)
}

func TestTypeRendererNoReturn(t *testing.T) {
	tr := newTestRenderer(t)
	assert.Nil(t, tr.Render(pytype.NoReturn(), "pkg"))
}

func TestTypeRendererGeneric(t *testing.T) {
	tr := newTestRenderer(t)

	expr := tr.Render(pytype.Dict(pytype.Str(), pytype.Optional(pytype.Int())), "pkg")
	require.NotNil(t, expr)
	assert.Equal(t, "dict", expr.Base)
	require.Len(t, expr.Args, 2)
	assert.Equal(t, "str", expr.Args[0].Text)
	assert.Equal(t, "Optional[int]", expr.Args[1].Text)
	require.Len(t, expr.Args[1].Args, 1)
	assert.Equal(t, "int", expr.Args[1].Args[0].Text)
}

func TestTypeRendererUnion(t *testing.T) {
	tr := newTestRenderer(t)

	expr := tr.Render(pytype.Union(pytype.Int(), pytype.Str()), "pkg")
	require.NotNil(t, expr)
	assert.Equal(t, "int | str", expr.Text)
	require.Len(t, expr.Union, 2)
	assert.Equal(t, "int", expr.Union[0].Text)
	assert.Equal(t, "str", expr.Union[1].Text)
}

func TestTypeRendererLinksPackageLocal(t *testing.T) {
	tr := newTestRenderer(t)

	widget := pytype.Custom(pytype.NamedModule("pkg._impl"), "Widget")
	expr := tr.Render(widget, "pkg")
	require.NotNil(t, expr)
	assert.Equal(t, "Widget", expr.Text)
	require.NotNil(t, expr.Link)
	assert.Equal(t, "pkg", expr.Link.Module)
	assert.Equal(t, KindClass, expr.Link.Kind)
}

func TestTypeRendererUnresolvedStaysUnlinked(t *testing.T) {
	tr := newTestRenderer(t)

	expr := tr.Render(pytype.Custom(pytype.NamedModule("elsewhere"), "Thing"), "pkg")
	require.NotNil(t, expr)
	assert.Nil(t, expr.Link)
	assert.Equal(t, "Thing", expr.Text)
}

func TestTypeRendererGenericOverLinkedArg(t *testing.T) {
	r := stub.NewRegistry("pkg", nil)
	require.NoError(t, r.AddClass(meta.ClassRecord{ID: "widget", Name: "Widget"}))
	require.NoError(t, r.Finalize())
	links := NewLinkResolver(NewExportResolver(r.Modules()))
	tr := NewTypeRenderer(links, "pkg")

	expr := tr.Render(pytype.List(pytype.Custom(pytype.NamedModule("pkg"), "Widget")), "pkg")
	require.NotNil(t, expr)
	assert.Equal(t, "list", expr.Base)
	require.Len(t, expr.Args, 1)
	assert.Equal(t, "Widget", expr.Args[0].Text)
	require.NotNil(t, expr.Args[0].Link)
	assert.Equal(t, "pkg.Widget", expr.Args[0].Link.FQN)
}
