package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pystub-gen/pkg/stub"
)

const sampleBatch = `{
  "records": [
    {"kind": "module_doc", "doc": "Sample package."},
    {"kind": "class", "id": "counter", "name": "Counter", "doc": "A counter.",
     "getters": [{"name": "value", "type": "int", "doc": "Current value."}],
     "setters": [{"name": "value", "type": "int"}]},
    {"kind": "methods", "id": "counter",
     "stub": "class Counter:\n    def incr(self, by: int = 1) -> None: ..."},
    {"kind": "function", "stub": "def make_counter(start: int = 0) -> Counter: ..."},
    {"kind": "enum", "id": "color", "name": "Color",
     "variants": [{"name": "Red"}, {"name": "Green"}]},
    {"kind": "variable", "name": "VERSION", "type": "str", "default": "\"1.0\""},
    {"kind": "error", "name": "CounterError"},
    {"kind": "type_alias", "stub": "Key: TypeAlias = str"},
    {"kind": "export", "target": "sample", "name": "_internal_name"}
  ]
}`

func loadSampleBatch(t *testing.T) *batchFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleBatch), 0o644))
	b, err := loadBatch(path)
	require.NoError(t, err)
	return b
}

func TestApplyBatch(t *testing.T) {
	b := loadSampleBatch(t)
	reg := stub.NewRegistry("sample", nil)
	require.NoError(t, applyBatch(reg, b, "sample", nil))
	require.NoError(t, reg.Finalize())

	modules := reg.Modules()
	require.Contains(t, modules, "sample")
	mod := modules["sample"]

	assert.Equal(t, "Sample package.", mod.Doc)
	assert.Contains(t, mod.FunctionNames(), "make_counter")
	assert.Contains(t, mod.ExportSet(), "_internal_name")

	text := mod.Render(stub.RenderConfig{}, reg.ModuleSet())
	assert.Contains(t, text, "class Counter:")
	assert.Contains(t, text, "def incr(self, by: int = 1) -> None:")
	assert.Contains(t, text, "class Color(Enum):")
	assert.Contains(t, text, `VERSION: str = "1.0"`)
	assert.Contains(t, text, "class CounterError(Exception): ...")
	assert.Contains(t, text, "Key: typing.TypeAlias = str")
}

func TestApplyBatchUnknownKind(t *testing.T) {
	reg := stub.NewRegistry("sample", nil)
	err := applyBatch(reg, &batchFile{Records: []batchRecord{{Kind: "widget"}}}, "sample", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record kind")
}

func TestApplyBatchMethodsNeedID(t *testing.T) {
	reg := stub.NewRegistry("sample", nil)
	err := applyBatch(reg, &batchFile{Records: []batchRecord{
		{Kind: "methods", Stub: "class C:\n    def f(self) -> None: ..."},
	}}, "sample", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an id")
}

func TestApplyBatchTaggedEnum(t *testing.T) {
	reg := stub.NewRegistry("sample", nil)
	err := applyBatch(reg, &batchFile{Records: []batchRecord{{
		Kind: "tagged_enum", ID: "shape", Name: "Shape",
		Variants: []batchVariant{
			{Name: "Point", Shape: "unit"},
			{Name: "Circle", Shape: "tuple",
				Fields: []batchMember{{Name: "_0", Type: "float"}},
				Ctor:   []batchParam{{Name: "radius", Type: "float"}}},
		},
	}}}, "sample", nil)
	require.NoError(t, err)
	require.NoError(t, reg.Finalize())

	text := reg.Modules()["sample"].Render(stub.RenderConfig{}, reg.ModuleSet())
	assert.Contains(t, text, "class Shape:")
	assert.Contains(t, text, "class Point:")
	assert.Contains(t, text, "class Circle:")
	assert.Contains(t, text, "__match_args__")
}

func TestLoadBatchMissingFile(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestApplyBatchSignatureDrift(t *testing.T) {
	reg := stub.NewRegistry("sample", nil)
	records := &batchFile{Records: []batchRecord{{
		Kind:      "function",
		Stub:      "def scale(x: float, factor: float = 1.0) -> float: ...",
		Signature: []string{"x", "factor"},
	}}}
	require.NoError(t, applyBatch(reg, records, "sample", nil))

	reg = stub.NewRegistry("sample", nil)
	records.Records[0].Signature = []string{"x", "scale_by"}
	err := applyBatch(reg, records, "sample", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature mismatch")
}
