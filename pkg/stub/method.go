package stub

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// MethodDef is one resolved method signature. Methods sharing a name form
// an overload group; overloaded is passed in at render time because the
// decorator depends on the final group size, not on any single record.
type MethodDef struct {
	Name       string
	Params     Parameters
	Return     pytype.TypeInfo
	Doc        string
	Kind       meta.MethodKind
	IsAsync    bool
	IsOverload bool
	Deprecated *meta.DeprecatedRecord
}

func resolveMethod(rec meta.MethodRecord) (MethodDef, error) {
	params, err := ResolveParams(rec.Params)
	if err != nil {
		return MethodDef{}, errors.Wrapf(err, "method %q", rec.Name)
	}
	m := MethodDef{
		Name:       rec.Name,
		Params:     params,
		Return:     pytype.None_(),
		Doc:        rec.Doc,
		Kind:       rec.Kind,
		IsAsync:    rec.IsAsync,
		IsOverload: rec.IsOverload,
		Deprecated: rec.Deprecated,
	}
	if rec.Return != nil {
		m.Return = rec.Return()
	}
	return m, nil
}

func (m MethodDef) render(b *strings.Builder, indent, targetModule string, overloaded bool) {
	var decorators []string
	if overloaded {
		decorators = append(decorators, "@typing.overload")
	}
	if m.Deprecated != nil {
		decorators = append(decorators, m.Deprecated.Decorator())
	}
	recv := "self"
	switch m.Kind {
	case meta.StaticMethod:
		decorators = append(decorators, "@staticmethod")
		recv = ""
	case meta.ClassMethod:
		decorators = append(decorators, "@classmethod")
		recv = "cls"
	case meta.NewMethod:
		recv = "cls"
	}
	writeCallable(b, indent, decorators, m.IsAsync, m.Name, recv, m.Params, m.Return, m.Doc, targetModule)
}

func (m MethodDef) collectImports(dst pytype.ImportSet) {
	m.Params.collectImports(dst)
	dst.Union(m.Return.Import)
	if m.Deprecated != nil {
		dst.Add("typing_extensions")
	}
}

// writeCallable emits one def block: decorator lines, the signature line,
// and an ellipsis body with the docstring when present.
func writeCallable(
	b *strings.Builder,
	indent string,
	decorators []string,
	isAsync bool,
	name, recv string,
	params Parameters,
	ret pytype.TypeInfo,
	doc, targetModule string,
) {
	for _, dec := range decorators {
		b.WriteString(indent)
		b.WriteString(dec)
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	if isAsync {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(name)
	b.WriteByte('(')
	sig := params.Render(targetModule)
	if recv != "" {
		b.WriteString(recv)
		if sig != "" {
			b.WriteString(", ")
		}
	}
	b.WriteString(sig)
	b.WriteByte(')')
	if !ret.IsNoReturn() {
		b.WriteString(" -> ")
		b.WriteString(ret.QualifiedFor(targetModule))
	}
	b.WriteByte(':')
	if normalizeDoc(doc) == "" {
		b.WriteString(" ...\n")
		return
	}
	b.WriteByte('\n')
	writeDocstring(b, doc, indent+indentUnit)
	b.WriteString(indent + indentUnit)
	b.WriteString("...\n")
}
