// Package pytype models Python type expressions as they appear in stub
// files: a rendered name plus the imports the name needs to be valid, and
// enough provenance (defining module, embedded identifier references) to
// re-qualify the expression for whichever module ends up using it.
package pytype

import (
	"sort"
	"strings"
)

// ModuleRef identifies a Python module. The zero value refers to the
// package's default (root) module, whose concrete name is only known at
// generation time.
type ModuleRef struct {
	name string
}

// NamedModule returns a reference to an explicitly named module path such
// as "pkg.sub_mod".
func NamedModule(path string) ModuleRef {
	return ModuleRef{name: path}
}

// Named returns the module path and true when the reference is explicit,
// or ("", false) for the default module.
func (m ModuleRef) Named() (string, bool) {
	return m.name, m.name != ""
}

// IsDefault reports whether the reference points at the default module.
func (m ModuleRef) IsDefault() bool { return m.name == "" }

// Or returns the module path, falling back to the given default module
// name when the reference is the default one.
func (m ModuleRef) Or(defaultName string) string {
	if m.name == "" {
		return defaultName
	}
	return m.name
}

// ImportKind describes how an identifier embedded in a type expression is
// made visible in a target module.
type ImportKind int

const (
	// ImportModule means the defining module is imported and the
	// identifier must be qualified with the module's trailing component.
	ImportModule ImportKind = iota
	// ImportByName means the identifier itself is imported and can be
	// used unqualified.
	ImportByName
)

// TypeIdentifierRef records where a bare identifier inside a type
// expression is defined, so the expression can be re-qualified per target
// module at render time.
type TypeIdentifierRef struct {
	Module ModuleRef
	Kind   ImportKind
}

// ImportSet is a set of module names that must be imported for a type
// expression to be valid.
type ImportSet map[string]struct{}

// NewImportSet builds a set from the given module names.
func NewImportSet(names ...string) ImportSet {
	s := make(ImportSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a module name.
func (s ImportSet) Add(name string) { s[name] = struct{}{} }

// Union adds every entry of other into s.
func (s ImportSet) Union(other ImportSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the module names in lexicographic order.
func (s ImportSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the set.
func (s ImportSet) Clone() ImportSet {
	cp := make(ImportSet, len(s))
	for name := range s {
		cp[name] = struct{}{}
	}
	return cp
}

// TypeInfo is a fully rendered Python type expression. Values are
// immutable by convention: combinators return new values and the
// re-qualification step rewrites a copy of the name, never the original.
type TypeInfo struct {
	// Name is the type expression text, e.g. "typing.Sequence[int]".
	Name string
	// Import lists modules that must be imported for Name to resolve.
	Import ImportSet
	// SourceModule is the module defining this type, when it is a
	// package-local class rather than a builtin or stdlib type.
	SourceModule ModuleRef
	// TypeRefs maps bare identifiers embedded in Name to their defining
	// modules, for per-target-module re-qualification.
	TypeRefs map[string]TypeIdentifierRef

	noReturn bool
}

// NoReturn is the "no value" sentinel: functions returning it render
// without any return-arrow clause.
func NoReturn() TypeInfo {
	return TypeInfo{noReturn: true}
}

// IsNoReturn reports whether the value is the no-value sentinel.
func (t TypeInfo) IsNoReturn() bool { return t.noReturn }

// Thunk produces a TypeInfo on demand. Metadata records carry thunks so
// that type construction can be deferred until generation time.
type Thunk func() TypeInfo

// Union combines two type expressions into a PEP 604 union, merging
// imports and identifier references.
func Union(a, b TypeInfo) TypeInfo {
	imports := a.Import.Clone()
	if imports == nil {
		imports = ImportSet{}
	}
	imports.Union(b.Import)
	refs := make(map[string]TypeIdentifierRef, len(a.TypeRefs)+len(b.TypeRefs))
	for name, ref := range a.TypeRefs {
		refs[name] = ref
	}
	for name, ref := range b.TypeRefs {
		refs[name] = ref
	}
	return TypeInfo{
		Name:     a.Name + " | " + b.Name,
		Import:   imports,
		TypeRefs: refs,
	}
}

// QualifiedFor renders the type expression for use inside targetModule.
// Identifiers defined in other modules are qualified by the trailing
// component of their defining module; identifiers defined in the target
// module itself, imported by name, or recognized as Python builtins are
// left untouched. The rewrite is token-level, never substring-based.
func (t TypeInfo) QualifiedFor(targetModule string) string {
	if len(t.TypeRefs) == 0 {
		return t.Name
	}
	q := NewQualifier(targetModule)
	return q.QualifyExpression(t.Name, t.TypeRefs)
}

// ResolveDefaults returns a copy of t with every default module reference
// replaced by the given concrete module name. The default module's name is
// only known at generation time, so types constructed earlier carry the
// placeholder until the registry resolves them.
func (t TypeInfo) ResolveDefaults(defaultModule string) TypeInfo {
	if defaultModule == "" {
		return t
	}
	copied := false
	for name, ref := range t.TypeRefs {
		if !ref.Module.IsDefault() {
			continue
		}
		if !copied {
			refs := make(map[string]TypeIdentifierRef, len(t.TypeRefs))
			for n, r := range t.TypeRefs {
				refs[n] = r
			}
			t.TypeRefs = refs
			copied = true
		}
		t.TypeRefs[name] = TypeIdentifierRef{Module: NamedModule(defaultModule), Kind: ref.Kind}
	}
	// Only a reference that actually pointed at the default module makes
	// the expression depend on it; a composite of named-module types has
	// an unset SourceModule but needs no root-module import.
	if !copied {
		return t
	}
	if t.SourceModule.IsDefault() {
		t.SourceModule = NamedModule(defaultModule)
	}
	imports := t.Import.Clone()
	if imports == nil {
		imports = ImportSet{}
	}
	imports.Add(defaultModule)
	t.Import = imports
	return t
}

// WithRef returns a copy of t that additionally records the defining
// module of the given bare identifier.
func (t TypeInfo) WithRef(ident string, ref TypeIdentifierRef) TypeInfo {
	refs := make(map[string]TypeIdentifierRef, len(t.TypeRefs)+1)
	for name, r := range t.TypeRefs {
		refs[name] = r
	}
	refs[ident] = ref
	t.TypeRefs = refs
	return t
}

// LastComponent returns the trailing dot-segment of a module path:
// "pkg.sub_mod" -> "sub_mod".
func LastComponent(module string) string {
	if i := strings.LastIndexByte(module, '.'); i >= 0 {
		return module[i+1:]
	}
	return module
}
