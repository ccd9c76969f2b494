package stub

import (
	"fmt"
	"strings"

	"github.com/example/pystub-gen/pkg/pytype"
)

// TypeAliasDef is a resolved module-level type alias.
type TypeAliasDef struct {
	Name string
	Type pytype.TypeInfo
	Doc  string
}

// render emits the alias in either the legacy annotated-assignment form or
// the modern type-statement form.
func (a TypeAliasDef) render(b *strings.Builder, targetModule string, useTypeStatement bool) {
	if useTypeStatement {
		fmt.Fprintf(b, "type %s = %s\n", a.Name, a.Type.QualifiedFor(targetModule))
	} else {
		fmt.Fprintf(b, "%s: typing.TypeAlias = %s\n", a.Name, a.Type.QualifiedFor(targetModule))
	}
	writeDocstring(b, a.Doc, "")
}

// VariableDef is a resolved module-level variable.
type VariableDef struct {
	Name    string
	Type    pytype.TypeInfo
	Default *string
}

func (v VariableDef) render(b *strings.Builder, targetModule string) {
	b.WriteString(v.Name)
	b.WriteString(": ")
	b.WriteString(v.Type.QualifiedFor(targetModule))
	if v.Default != nil {
		b.WriteString(" = ")
		b.WriteString(*v.Default)
	}
	b.WriteByte('\n')
}

// ErrorDef is an exception type rendered as a one-line subclass
// declaration.
type ErrorDef struct {
	Name string
	Base string
}

func (e ErrorDef) render(b *strings.Builder) {
	base := e.Base
	if base == "" {
		base = "Exception"
	}
	fmt.Fprintf(b, "class %s(%s): ...\n", e.Name, base)
}
