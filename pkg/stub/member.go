package stub

import (
	"fmt"
	"strings"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

const indentUnit = "    "

// MemberDef is a resolved class attribute, getter, or setter.
type MemberDef struct {
	Name       string
	Type       pytype.TypeInfo
	Doc        string
	Default    *string
	Deprecated *meta.DeprecatedRecord
}

func resolveMember(rec meta.MemberRecord) MemberDef {
	m := MemberDef{Name: rec.Name, Doc: rec.Doc, Deprecated: rec.Deprecated}
	if rec.Type != nil {
		m.Type = rec.Type()
	} else {
		m.Type = pytype.Any()
	}
	if expr, ok := rec.Default.Resolve(); ok {
		m.Default = &expr
	}
	return m
}

// docWithDefault appends the default value to the docstring as a fenced
// code block. Properties cannot show defaults in their signature, so the
// docstring is the only place to surface them.
func (m MemberDef) docWithDefault() string {
	if m.Default == nil {
		return m.Doc
	}
	block := fmt.Sprintf("```python\ndefault = %s\n```", *m.Default)
	if m.Doc == "" {
		return block
	}
	return m.Doc + "\n\n" + block
}

func (m MemberDef) renderAttr(b *strings.Builder, indent, targetModule string) {
	b.WriteString(indent)
	b.WriteString(m.Name)
	b.WriteString(": ")
	b.WriteString(m.Type.QualifiedFor(targetModule))
	if m.Default != nil {
		b.WriteString(" = ")
		b.WriteString(*m.Default)
	}
	b.WriteByte('\n')
	writeDocstring(b, m.Doc, indent)
}

func (m MemberDef) renderGetter(b *strings.Builder, indent, targetModule string) {
	if m.Deprecated != nil {
		b.WriteString(indent)
		b.WriteString(m.Deprecated.Decorator())
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteString("@property\n")
	b.WriteString(indent)
	fmt.Fprintf(b, "def %s(self) -> %s:", m.Name, m.Type.QualifiedFor(targetModule))
	doc := m.docWithDefault()
	if doc == "" {
		b.WriteString(" ...\n")
		return
	}
	b.WriteByte('\n')
	writeDocstring(b, doc, indent+indentUnit)
	b.WriteString(indent + indentUnit)
	b.WriteString("...\n")
}

func (m MemberDef) renderSetter(b *strings.Builder, indent, targetModule string) {
	if m.Deprecated != nil {
		b.WriteString(indent)
		b.WriteString(m.Deprecated.Decorator())
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	fmt.Fprintf(b, "@%s.setter\n", m.Name)
	b.WriteString(indent)
	fmt.Fprintf(b, "def %s(self, value: %s) -> None:", m.Name, m.Type.QualifiedFor(targetModule))
	doc := m.docWithDefault()
	if doc == "" {
		b.WriteString(" ...\n")
		return
	}
	b.WriteByte('\n')
	writeDocstring(b, doc, indent+indentUnit)
	b.WriteString(indent + indentUnit)
	b.WriteString("...\n")
}

func (m MemberDef) collectImports(dst pytype.ImportSet) {
	dst.Union(m.Type.Import)
	if m.Deprecated != nil {
		dst.Add("typing_extensions")
	}
}
