package stub

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// FunctionDef is one resolved module-level function signature.
type FunctionDef struct {
	Name       string
	Params     Parameters
	Return     pytype.TypeInfo
	Doc        string
	IsAsync    bool
	IsOverload bool
	Deprecated *meta.DeprecatedRecord
}

func resolveFunction(rec meta.FunctionRecord) (FunctionDef, error) {
	params, err := ResolveParams(rec.Params)
	if err != nil {
		return FunctionDef{}, errors.Wrapf(err, "function %q", rec.Name)
	}
	f := FunctionDef{
		Name:       rec.Name,
		Params:     params,
		Return:     pytype.None_(),
		Doc:        rec.Doc,
		IsAsync:    rec.IsAsync,
		IsOverload: rec.IsOverload,
		Deprecated: rec.Deprecated,
	}
	if rec.Return != nil {
		f.Return = rec.Return()
	}
	return f, nil
}

func (f FunctionDef) render(b *strings.Builder, targetModule string, overloaded bool) {
	var decorators []string
	if overloaded {
		decorators = append(decorators, "@typing.overload")
	}
	if f.Deprecated != nil {
		decorators = append(decorators, f.Deprecated.Decorator())
	}
	writeCallable(b, "", decorators, f.IsAsync, f.Name, "", f.Params, f.Return, f.Doc, targetModule)
}

func (f FunctionDef) collectImports(dst pytype.ImportSet) {
	f.Params.collectImports(dst)
	dst.Union(f.Return.Import)
	if f.Deprecated != nil {
		dst.Add("typing_extensions")
	}
}
