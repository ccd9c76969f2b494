package stub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// generatedBanner opens every stub file. The ruff suppressions cover long
// signature lines and imports that only type expressions use.
const generatedBanner = "# This file is automatically generated by pystub-gen\n# ruff: noqa: E501, F401\n"

// RenderConfig holds the formatting choices that do not affect metadata
// semantics.
type RenderConfig struct {
	// UseTypeStatement selects the modern `type X = ...` alias form over
	// the legacy `X: typing.TypeAlias = ...` form.
	UseTypeStatement bool
}

// Module is the fully aggregated content of one stub module. Classes and
// enums are keyed by identity token so re-opened definitions merge;
// functions are keyed by name into overload groups.
type Module struct {
	Name string
	Doc  string

	classes map[meta.TypeID]*ClassDef
	enums   map[meta.TypeID]*EnumDef

	functionNames []string
	functions     map[string][]FunctionDef

	aliases   map[string]TypeAliasDef
	variables map[string]VariableDef
	errDefs   map[string]ErrorDef

	submodules map[string]struct{}

	verbatim  map[string]struct{}
	excluded  map[string]struct{}
	reexports []resolvedReexport
}

// resolvedReexport is a re-export directive after wildcard expansion:
// a concrete name list attributed to its source module.
type resolvedReexport struct {
	Source   string
	Names    []string
	Wildcard bool
}

func newModule(name string) *Module {
	return &Module{
		Name:       name,
		classes:    map[meta.TypeID]*ClassDef{},
		enums:      map[meta.TypeID]*EnumDef{},
		functions:  map[string][]FunctionDef{},
		aliases:    map[string]TypeAliasDef{},
		variables:  map[string]VariableDef{},
		errDefs:    map[string]ErrorDef{},
		submodules: map[string]struct{}{},
		verbatim:   map[string]struct{}{},
		excluded:   map[string]struct{}{},
	}
}

// Class returns the class registered under the identity token.
func (m *Module) Class(id meta.TypeID) (*ClassDef, bool) {
	c, ok := m.classes[id]
	return c, ok
}

// Enum returns the enum registered under the identity token.
func (m *Module) Enum(id meta.TypeID) (*EnumDef, bool) {
	e, ok := m.enums[id]
	return e, ok
}

// SortedClasses returns the module's classes sorted by display name.
func (m *Module) SortedClasses() []*ClassDef {
	out := make([]*ClassDef, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedEnums returns the module's enums sorted by display name.
func (m *Module) SortedEnums() []*EnumDef {
	out := make([]*EnumDef, 0, len(m.enums))
	for _, e := range m.enums {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FunctionNames returns function names in submission order.
func (m *Module) FunctionNames() []string { return m.functionNames }

// FunctionGroup returns a function's overload group in submission order.
func (m *Module) FunctionGroup(name string) []FunctionDef { return m.functions[name] }

// SortedAliases returns the module's type aliases sorted by name.
func (m *Module) SortedAliases() []TypeAliasDef {
	return sortedValues(m.aliases, func(a TypeAliasDef) string { return a.Name })
}

// SortedVariables returns the module's variables sorted by name.
func (m *Module) SortedVariables() []VariableDef {
	return sortedValues(m.variables, func(v VariableDef) string { return v.Name })
}

// SortedErrors returns the module's error definitions sorted by name.
func (m *Module) SortedErrors() []ErrorDef {
	return sortedValues(m.errDefs, func(e ErrorDef) string { return e.Name })
}

// Submodules returns the direct submodule components sorted.
func (m *Module) Submodules() []string {
	out := make([]string, 0, len(m.submodules))
	for s := range m.submodules {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedValues[T any](src map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(src))
	for _, v := range src {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

// ExportSet computes the module's public names: everything not starting
// with an underscore, plus verbatim inclusions and resolved re-exported
// names, minus explicit exclusions. The result is sorted.
func (m *Module) ExportSet() []string {
	set := map[string]struct{}{}
	include := func(name string) {
		if strings.HasPrefix(name, "_") {
			return
		}
		set[name] = struct{}{}
	}
	for _, c := range m.classes {
		include(c.Name)
	}
	for _, e := range m.enums {
		include(e.Name)
	}
	for _, name := range m.functionNames {
		include(name)
	}
	for name := range m.aliases {
		include(name)
	}
	for name := range m.variables {
		include(name)
	}
	for name := range m.errDefs {
		include(name)
	}
	for _, re := range m.reexports {
		// Re-exported sets are already resolved; copy them verbatim.
		for _, name := range re.Names {
			set[name] = struct{}{}
		}
	}
	for name := range m.verbatim {
		set[name] = struct{}{}
	}
	for name := range m.excluded {
		delete(set, name)
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ReexportInfo is a resolved re-export directive, exposed for doc
// generation.
type ReexportInfo struct {
	Source   string
	Names    []string
	Wildcard bool
}

// Reexports returns the module's resolved re-exports sorted by source.
func (m *Module) Reexports() []ReexportInfo {
	out := make([]ReexportInfo, 0, len(m.reexports))
	for _, re := range m.sortedReexports() {
		out = append(out, ReexportInfo{
			Source:   re.Source,
			Names:    append([]string(nil), re.Names...),
			Wildcard: re.Wildcard,
		})
	}
	return out
}

// hasExportDirectives reports whether any explicit export shaping was
// requested; only then is an __all__ list worth emitting.
func (m *Module) hasExportDirectives() bool {
	return len(m.verbatim) > 0 || len(m.excluded) > 0 || len(m.reexports) > 0
}

// Render produces the stub text for the module. Two renders of the same
// module are byte-identical: every unordered collection is sorted and the
// only preserved orders are submission order for functions and overloads.
// moduleSet lists every module of the package so imports of package-local
// modules can use the from-import form that matches qualified names.
func (m *Module) Render(cfg RenderConfig, moduleSet map[string]struct{}) string {
	var b strings.Builder
	b.WriteString(generatedBanner)
	writeDocstring(&b, m.Doc, "")

	m.renderImports(&b, cfg, moduleSet)
	b.WriteByte('\n')

	var sections []string
	if m.hasExportDirectives() {
		sections = append(sections, m.renderAll())
	}
	for _, a := range m.SortedAliases() {
		var s strings.Builder
		a.render(&s, m.Name, cfg.UseTypeStatement)
		sections = append(sections, s.String())
	}
	for _, v := range m.SortedVariables() {
		var s strings.Builder
		v.render(&s, m.Name)
		sections = append(sections, s.String())
	}
	for _, c := range m.SortedClasses() {
		var s strings.Builder
		c.render(&s, "", m.Name)
		sections = append(sections, s.String())
	}
	for _, e := range m.SortedEnums() {
		var s strings.Builder
		e.render(&s, "", m.Name)
		sections = append(sections, s.String())
	}
	for _, name := range m.functionNames {
		group := m.functions[name]
		overloaded := len(group) > 1
		var s strings.Builder
		for i, f := range group {
			if i > 0 {
				s.WriteByte('\n')
			}
			f.render(&s, m.Name, overloaded)
		}
		sections = append(sections, s.String())
	}
	for _, e := range m.SortedErrors() {
		var s strings.Builder
		e.render(&s)
		sections = append(sections, s.String())
	}

	b.WriteString(strings.Join(sections, "\n"))
	return b.String()
}

func (m *Module) renderAll() string {
	names := m.ExportSet()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("__all__ = [%s]\n", strings.Join(parts, ", "))
}

func (m *Module) renderImports(b *strings.Builder, cfg RenderConfig, moduleSet map[string]struct{}) {
	imports := m.collectImports(cfg)

	if len(m.enums) > 0 {
		b.WriteString("from enum import Enum, auto\n")
	}

	var plain, fromParent []string
	for _, imp := range imports.Sorted() {
		if imp == m.Name {
			continue
		}
		if _, local := moduleSet[imp]; local && strings.Contains(imp, ".") {
			// Package-local modules are imported by trailing component so
			// qualified references like sub_mod.ClassA resolve.
			i := strings.LastIndexByte(imp, '.')
			fromParent = append(fromParent, fmt.Sprintf("from %s import %s", imp[:i], imp[i+1:]))
			continue
		}
		plain = append(plain, "import "+imp)
	}
	for _, line := range plain {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, line := range fromParent {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, sub := range m.Submodules() {
		fmt.Fprintf(b, "from . import %s\n", sub)
	}
	for _, re := range m.sortedReexports() {
		names := append([]string(nil), re.Names...)
		sort.Strings(names)
		fmt.Fprintf(b, "from %s import %s\n", re.Source, strings.Join(names, ", "))
	}
}

func (m *Module) sortedReexports() []resolvedReexport {
	out := append([]resolvedReexport(nil), m.reexports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func (m *Module) collectImports(cfg RenderConfig) pytype.ImportSet {
	imports := pytype.NewImportSet()
	for _, c := range m.classes {
		c.collectImports(imports)
	}
	for _, e := range m.enums {
		e.collectImports(imports)
	}
	for _, group := range m.functions {
		for _, f := range group {
			f.collectImports(imports)
		}
		if len(group) > 1 {
			imports.Add("typing") // @typing.overload
		}
	}
	for _, a := range m.aliases {
		imports.Union(a.Type.Import)
		if !cfg.UseTypeStatement {
			imports.Add("typing")
		}
	}
	for _, v := range m.variables {
		imports.Union(v.Type.Import)
	}
	return imports
}
