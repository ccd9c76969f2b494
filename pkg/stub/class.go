package stub

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// ClassDef is a resolved class: members, an optional constructor, method
// overload groups keyed by name in first-seen order, nested classes
// (tagged-enum variants), and an optional __match_args__ tuple.
//
// A ClassDef is created once from its primary record and then grows
// additively as method-group records referencing the same identity are
// merged in. Nothing is ever replaced except the single constructor slot.
type ClassDef struct {
	Name      string
	Module    pytype.ModuleRef
	Doc       string
	Bases     []pytype.TypeInfo
	Attrs     []MemberDef
	Getters   []MemberDef
	Setters   []MemberDef
	Ctor      *MethodDef
	Classes   []ClassDef
	MatchArgs []string

	methodNames []string
	methods     map[string][]MethodDef
}

func resolveClass(rec meta.ClassRecord) ClassDef {
	c := ClassDef{Name: rec.Name, Module: rec.Module, Doc: rec.Doc}
	for _, b := range rec.Bases {
		c.Bases = append(c.Bases, b())
	}
	for _, g := range rec.Getters {
		c.Getters = append(c.Getters, resolveMember(g))
	}
	for _, s := range rec.Setters {
		c.Setters = append(c.Setters, resolveMember(s))
	}
	return c
}

// AddMethod appends a method to its overload group. Constructors go to the
// single ctor slot, last writer wins. Two same-named non-overload methods
// indicate a missing overload marker and are rejected.
func (c *ClassDef) AddMethod(m MethodDef) error {
	if m.Kind == meta.NewMethod {
		ctor := m
		ctor.Name = "__new__"
		c.Ctor = &ctor
		return nil
	}
	if c.methods == nil {
		c.methods = map[string][]MethodDef{}
	}
	group, exists := c.methods[m.Name]
	if exists && (!m.IsOverload || !group[0].IsOverload) {
		return errors.Newf(
			"class %q: duplicate method %q without overload marker", c.Name, m.Name,
		)
	}
	if !exists {
		c.methodNames = append(c.methodNames, m.Name)
	}
	c.methods[m.Name] = append(group, m)
	return nil
}

// MethodNames returns method names in first-seen order.
func (c *ClassDef) MethodNames() []string { return c.methodNames }

// MethodGroup returns the overload group for a method name, in submission
// order.
func (c *ClassDef) MethodGroup(name string) []MethodDef { return c.methods[name] }

func (c *ClassDef) mergeGroup(rec meta.MethodGroupRecord) error {
	for _, a := range rec.Attrs {
		c.Attrs = append(c.Attrs, resolveMember(a))
	}
	for _, g := range rec.Getters {
		c.Getters = append(c.Getters, resolveMember(g))
	}
	for _, s := range rec.Setters {
		c.Setters = append(c.Setters, resolveMember(s))
	}
	for _, mr := range rec.Methods {
		m, err := resolveMethod(mr)
		if err != nil {
			return errors.Wrapf(err, "class %q", c.Name)
		}
		if err := c.AddMethod(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClassDef) render(b *strings.Builder, indent, targetModule string) {
	b.WriteString(indent)
	b.WriteString("@typing.final\n")
	b.WriteString(indent)
	b.WriteString("class ")
	b.WriteString(c.Name)
	if len(c.Bases) > 0 {
		parts := make([]string, len(c.Bases))
		for i, base := range c.Bases {
			parts[i] = base.QualifiedFor(targetModule)
		}
		fmt.Fprintf(b, "(%s)", strings.Join(parts, ", "))
	}
	b.WriteByte(':')

	if c.isEmpty() {
		b.WriteString(" ...\n")
		return
	}
	b.WriteByte('\n')
	inner := indent + indentUnit
	writeDocstring(b, c.Doc, inner)
	if c.MatchArgs != nil {
		parts := make([]string, len(c.MatchArgs))
		for i, arg := range c.MatchArgs {
			parts[i] = fmt.Sprintf("%q", arg)
		}
		// A one-element tuple needs the trailing comma.
		sep := ""
		if len(parts) == 1 {
			sep = ","
		}
		fmt.Fprintf(b, "%s__match_args__ = (%s%s)\n", inner, strings.Join(parts, ", "), sep)
	}
	for i := range c.Classes {
		c.Classes[i].render(b, inner, targetModule)
	}
	for _, a := range c.Attrs {
		a.renderAttr(b, inner, targetModule)
	}
	for _, g := range c.Getters {
		g.renderGetter(b, inner, targetModule)
	}
	for _, s := range c.Setters {
		s.renderSetter(b, inner, targetModule)
	}
	if c.Ctor != nil {
		c.Ctor.render(b, inner, targetModule, false)
	}
	for _, name := range c.methodNames {
		group := c.methods[name]
		overloaded := len(group) > 1
		for _, m := range group {
			m.render(b, inner, targetModule, overloaded)
		}
	}
}

func (c *ClassDef) isEmpty() bool {
	return normalizeDoc(c.Doc) == "" && c.MatchArgs == nil &&
		len(c.Classes) == 0 && len(c.Attrs) == 0 &&
		len(c.Getters) == 0 && len(c.Setters) == 0 &&
		c.Ctor == nil && len(c.methodNames) == 0
}

func (c *ClassDef) collectImports(dst pytype.ImportSet) {
	dst.Add("typing")
	for _, base := range c.Bases {
		dst.Union(base.Import)
	}
	for _, m := range c.Attrs {
		m.collectImports(dst)
	}
	for _, m := range c.Getters {
		m.collectImports(dst)
	}
	for _, m := range c.Setters {
		m.collectImports(dst)
	}
	if c.Ctor != nil {
		c.Ctor.collectImports(dst)
	}
	for _, name := range c.methodNames {
		for _, m := range c.methods[name] {
			m.collectImports(dst)
		}
	}
	for i := range c.Classes {
		c.Classes[i].collectImports(dst)
	}
}
