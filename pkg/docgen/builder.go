package docgen

import (
	"sort"

	"go.uber.org/zap"

	"github.com/example/pystub-gen/pkg/stub"
)

// Builder walks aggregated stub modules and produces the DocPackage tree.
// Hidden modules are skipped entirely; their items appear only where a
// public module re-exports them.
type Builder struct {
	modules     map[string]*stub.Module
	packageName string
	exports     *ExportResolver
	links       *LinkResolver
	types       *TypeRenderer
	logger      *zap.Logger
}

// NewBuilder prepares a doc build over the given modules. A nil logger
// disables logging.
func NewBuilder(modules map[string]*stub.Module, packageName string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	exports := NewExportResolver(modules)
	links := NewLinkResolver(exports)
	return &Builder{
		modules:     modules,
		packageName: packageName,
		exports:     exports,
		links:       links,
		types:       NewTypeRenderer(links, packageName),
		logger:      logger,
	}
}

// Build produces the documentation tree. Modules are emitted sorted by
// name so two builds of the same registry are identical.
func (b *Builder) Build() DocPackage {
	pkg := DocPackage{Name: b.packageName, ExportMap: b.exports.ExportMap()}

	names := make([]string, 0, len(b.modules))
	for name := range b.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if IsHiddenModule(name) {
			b.logger.Debug("skipping hidden module", zap.String("module", name))
			continue
		}
		pkg.Modules = append(pkg.Modules, b.buildModule(b.modules[name]))
	}
	return pkg
}

func (b *Builder) buildModule(mod *stub.Module) DocModule {
	dm := DocModule{
		Name:       mod.Name,
		Doc:        mod.Doc,
		Exports:    mod.ExportSet(),
		Submodules: mod.Submodules(),
		Items:      []DocItem{},
	}
	for _, c := range mod.SortedClasses() {
		dm.Items = append(dm.Items, b.buildClass(c, mod.Name))
	}
	for _, e := range mod.SortedEnums() {
		dm.Items = append(dm.Items, b.buildEnum(e, mod.Name))
	}
	for _, name := range mod.FunctionNames() {
		dm.Items = append(dm.Items, b.buildFunctionGroup(name, mod.FunctionGroup(name), mod.Name))
	}
	for _, a := range mod.SortedAliases() {
		dm.Items = append(dm.Items, DocAlias{
			Kind: KindTypeAlias,
			Name: a.Name,
			Doc:  a.Doc,
			Type: *b.types.Render(a.Type, mod.Name),
		})
	}
	for _, v := range mod.SortedVariables() {
		item := DocVariable{Kind: KindVariable, Name: v.Name, Type: b.types.Render(v.Type, mod.Name)}
		if v.Default != nil {
			item.Default = *v.Default
		}
		dm.Items = append(dm.Items, item)
	}
	for _, e := range mod.SortedErrors() {
		base := e.Base
		if base == "" {
			base = "Exception"
		}
		dm.Items = append(dm.Items, DocError{Kind: KindError, Name: e.Name, Base: base})
	}

	b.appendReexportedItems(&dm, mod)
	return dm
}

// appendReexportedItems copies items re-exported from hidden modules into
// the public module documenting them, so a private submodule's API still
// shows up somewhere.
func (b *Builder) appendReexportedItems(dm *DocModule, mod *stub.Module) {
	for _, re := range mod.Reexports() {
		if !IsHiddenModule(re.Source) {
			continue
		}
		src, ok := b.modules[re.Source]
		if !ok {
			continue
		}
		names := append([]string(nil), re.Names...)
		sort.Strings(names)
		for _, name := range names {
			if item, ok := b.buildNamedItem(src, name, dm.Name); ok {
				dm.Items = append(dm.Items, item)
			}
		}
	}
}

// buildNamedItem locates one named item in a source module and documents
// it as seen from the re-exporting module.
func (b *Builder) buildNamedItem(src *stub.Module, name, currentModule string) (DocItem, bool) {
	for _, c := range src.SortedClasses() {
		if c.Name == name {
			return b.buildClass(c, currentModule), true
		}
	}
	for _, e := range src.SortedEnums() {
		if e.Name == name {
			return b.buildEnum(e, currentModule), true
		}
	}
	for _, fn := range src.FunctionNames() {
		if fn == name {
			return b.buildFunctionGroup(fn, src.FunctionGroup(fn), currentModule), true
		}
	}
	for _, a := range src.SortedAliases() {
		if a.Name == name {
			return DocAlias{Kind: KindTypeAlias, Name: a.Name, Doc: a.Doc, Type: *b.types.Render(a.Type, currentModule)}, true
		}
	}
	for _, v := range src.SortedVariables() {
		if v.Name == name {
			item := DocVariable{Kind: KindVariable, Name: v.Name, Type: b.types.Render(v.Type, currentModule)}
			if v.Default != nil {
				item.Default = *v.Default
			}
			return item, true
		}
	}
	for _, e := range src.SortedErrors() {
		if e.Name == name {
			base := e.Base
			if base == "" {
				base = "Exception"
			}
			return DocError{Kind: KindError, Name: e.Name, Base: base}, true
		}
	}
	return nil, false
}

func (b *Builder) buildClass(c *stub.ClassDef, currentModule string) DocClass {
	dc := DocClass{Kind: KindClass, Name: c.Name, Doc: c.Doc}
	for _, base := range c.Bases {
		dc.Bases = append(dc.Bases, *b.types.Render(base, currentModule))
	}
	for _, a := range c.Attrs {
		dc.Attrs = append(dc.Attrs, b.buildMember(a, currentModule, false))
	}

	setters := map[string]struct{}{}
	for _, s := range c.Setters {
		setters[s.Name] = struct{}{}
	}
	seen := map[string]struct{}{}
	for _, g := range c.Getters {
		_, writable := setters[g.Name]
		dc.Properties = append(dc.Properties, b.buildMember(g, currentModule, !writable))
		seen[g.Name] = struct{}{}
	}
	for _, s := range c.Setters {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		dc.Properties = append(dc.Properties, b.buildMember(s, currentModule, false))
	}

	if c.Ctor != nil {
		ctor := b.buildMethod(*c.Ctor, currentModule)
		dc.Ctor = &ctor
	}
	for _, name := range c.MethodNames() {
		group := c.MethodGroup(name)
		dc.Methods = append(dc.Methods, b.buildMethodGroup(name, group, currentModule))
	}
	for i := range c.Classes {
		dc.Classes = append(dc.Classes, b.buildClass(&c.Classes[i], currentModule))
	}
	return dc
}

func (b *Builder) buildEnum(e *stub.EnumDef, currentModule string) DocEnum {
	de := DocEnum{Kind: KindEnum, Name: e.Name, Doc: e.Doc, Variants: []DocEnumVariant{}}
	for _, v := range e.Variants {
		de.Variants = append(de.Variants, DocEnumVariant{Name: v.Name, Doc: v.Doc})
	}
	for _, name := range e.MethodNames() {
		de.Methods = append(de.Methods, b.buildMethodGroup(name, e.MethodGroup(name), currentModule))
	}
	return de
}

func (b *Builder) buildMember(m stub.MemberDef, currentModule string, readOnly bool) DocMember {
	dm := DocMember{
		Name:     m.Name,
		Doc:      m.Doc,
		Type:     b.types.Render(m.Type, currentModule),
		ReadOnly: readOnly,
	}
	if m.Default != nil {
		dm.Default = *m.Default
	}
	return dm
}

func (b *Builder) buildFunctionGroup(name string, group []stub.FunctionDef, currentModule string) DocFunction {
	df := DocFunction{Kind: KindFunction, Name: name}
	for i, f := range group {
		if i == 0 {
			df.Doc = f.Doc
			df.Async = f.IsAsync
			if f.Deprecated != nil {
				df.Deprecated = f.Deprecated.Message()
			}
		}
		df.Signatures = append(df.Signatures, DocSignature{
			Params:  b.buildParams(f.Params, currentModule),
			Returns: b.types.Render(f.Return, currentModule),
		})
	}
	return df
}

func (b *Builder) buildMethodGroup(name string, group []stub.MethodDef, currentModule string) DocFunction {
	df := DocFunction{Kind: KindFunction, Name: name}
	for i, m := range group {
		sig := b.buildMethod(m, currentModule)
		if i == 0 {
			df.Doc = m.Doc
			df.Async = m.IsAsync
			if m.Deprecated != nil {
				df.Deprecated = m.Deprecated.Message()
			}
		}
		df.Signatures = append(df.Signatures, sig.Signatures...)
	}
	return df
}

func (b *Builder) buildMethod(m stub.MethodDef, currentModule string) DocFunction {
	return DocFunction{
		Kind: KindFunction,
		Name: m.Name,
		Doc:  m.Doc,
		Signatures: []DocSignature{{
			Params:  b.buildParams(m.Params, currentModule),
			Returns: b.types.Render(m.Return, currentModule),
		}},
		Async: m.IsAsync,
	}
}

func (b *Builder) buildParams(ps stub.Parameters, currentModule string) []DocParam {
	var out []DocParam
	add := func(p stub.Parameter) {
		dp := DocParam{
			Name: p.Name,
			Kind: p.Kind.String(),
			Type: b.types.Render(p.Type, currentModule),
		}
		if p.Default != nil {
			dp.Default = *p.Default
		}
		out = append(out, dp)
	}
	for _, p := range ps.PositionalOnly {
		add(p)
	}
	for _, p := range ps.PositionalOrKeyword {
		add(p)
	}
	if ps.VarPositional != nil {
		add(*ps.VarPositional)
	}
	for _, p := range ps.KeywordOnly {
		add(p)
	}
	if ps.VarKeyword != nil {
		add(*ps.VarKeyword)
	}
	return out
}
