package stub

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// EnumVariantDef is one variant of a simple enum.
type EnumVariantDef struct {
	Name string
	Doc  string
}

// EnumDef is a resolved simple enum, rendered as a class subclassing Enum
// with auto() variant values. Method-group records may attach members to
// an enum identity the same way they do for classes.
type EnumDef struct {
	Name     string
	Module   pytype.ModuleRef
	Doc      string
	Variants []EnumVariantDef

	getters     []MemberDef
	setters     []MemberDef
	methodNames []string
	methods     map[string][]MethodDef
}

func resolveEnum(rec meta.EnumRecord) EnumDef {
	e := EnumDef{Name: rec.Name, Module: rec.Module, Doc: rec.Doc}
	for _, v := range rec.Variants {
		e.Variants = append(e.Variants, EnumVariantDef{Name: v.Name, Doc: v.Doc})
	}
	return e
}

func (e *EnumDef) addMethod(m MethodDef) error {
	if e.methods == nil {
		e.methods = map[string][]MethodDef{}
	}
	group, exists := e.methods[m.Name]
	if exists && (!m.IsOverload || !group[0].IsOverload) {
		return errors.Newf(
			"enum %q: duplicate method %q without overload marker", e.Name, m.Name,
		)
	}
	if !exists {
		e.methodNames = append(e.methodNames, m.Name)
	}
	e.methods[m.Name] = append(group, m)
	return nil
}

func (e *EnumDef) mergeGroup(rec meta.MethodGroupRecord) error {
	for _, g := range rec.Getters {
		e.getters = append(e.getters, resolveMember(g))
	}
	for _, s := range rec.Setters {
		e.setters = append(e.setters, resolveMember(s))
	}
	for _, mr := range rec.Methods {
		m, err := resolveMethod(mr)
		if err != nil {
			return errors.Wrapf(err, "enum %q", e.Name)
		}
		if m.Kind == meta.NewMethod {
			return errors.Newf("enum %q: enums cannot define __new__", e.Name)
		}
		if err := e.addMethod(m); err != nil {
			return err
		}
	}
	return nil
}

// MethodNames returns method names in first-seen order.
func (e *EnumDef) MethodNames() []string { return e.methodNames }

// MethodGroup returns the overload group for a method name.
func (e *EnumDef) MethodGroup(name string) []MethodDef { return e.methods[name] }

func (e *EnumDef) render(b *strings.Builder, indent, targetModule string) {
	b.WriteString(indent)
	b.WriteString("class ")
	b.WriteString(e.Name)
	b.WriteString("(Enum):")
	if normalizeDoc(e.Doc) == "" && len(e.Variants) == 0 &&
		len(e.getters) == 0 && len(e.setters) == 0 && len(e.methodNames) == 0 {
		b.WriteString(" ...\n")
		return
	}
	b.WriteByte('\n')
	inner := indent + indentUnit
	writeDocstring(b, e.Doc, inner)
	for _, v := range e.Variants {
		b.WriteString(inner)
		b.WriteString(v.Name)
		b.WriteString(" = auto()\n")
		writeDocstring(b, v.Doc, inner)
	}
	for _, g := range e.getters {
		g.renderGetter(b, inner, targetModule)
	}
	for _, s := range e.setters {
		s.renderSetter(b, inner, targetModule)
	}
	for _, name := range e.methodNames {
		group := e.methods[name]
		overloaded := len(group) > 1
		for _, m := range group {
			m.render(b, inner, targetModule, overloaded)
		}
	}
}

func (e *EnumDef) collectImports(dst pytype.ImportSet) {
	for _, m := range e.getters {
		m.collectImports(dst)
	}
	for _, m := range e.setters {
		m.collectImports(dst)
	}
	for _, name := range e.methodNames {
		for _, m := range e.methods[name] {
			m.collectImports(dst)
		}
	}
}
