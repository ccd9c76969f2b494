package docgen

import (
	"sort"
	"strings"

	"github.com/example/pystub-gen/pkg/stub"
)

// IsHiddenModule reports whether a module is hidden for documentation:
// any dot-separated component starting with an underscore hides the whole
// subtree. Hidden modules are skipped, but their symbols may surface
// through re-exports in public ancestors.
func IsHiddenModule(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if strings.HasPrefix(part, "_") {
			return true
		}
	}
	return false
}

// ExportResolver precomputes, for a whole package, where every exported
// item lives and where it is canonically documented. Built once; lookups
// never re-derive visibility.
type ExportResolver struct {
	modules map[string]*stub.Module

	// exportedBy maps bare item name -> set of modules exporting it.
	exportedBy map[string]map[string]struct{}
	// exportMap maps canonical fqn -> documenting module ("" = none).
	exportMap map[string]string
	// kinds maps canonical fqn -> item kind.
	kinds map[string]ItemKind
}

// NewExportResolver builds the flat export map for the package.
func NewExportResolver(modules map[string]*stub.Module) *ExportResolver {
	r := &ExportResolver{
		modules:    modules,
		exportedBy: map[string]map[string]struct{}{},
		exportMap:  map[string]string{},
		kinds:      map[string]ItemKind{},
	}

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, modName := range names {
		mod := modules[modName]
		for _, item := range mod.ExportSet() {
			if r.exportedBy[item] == nil {
				r.exportedBy[item] = map[string]struct{}{}
			}
			r.exportedBy[item][modName] = struct{}{}
		}
	}

	for _, modName := range names {
		mod := modules[modName]
		record := func(item string, kind ItemKind) {
			fqn := modName + "." + item
			r.kinds[fqn] = kind
			r.exportMap[fqn] = r.documentingModule(item, modName)
		}
		for _, c := range mod.SortedClasses() {
			record(c.Name, KindClass)
		}
		for _, e := range mod.SortedEnums() {
			record(e.Name, KindEnum)
		}
		for _, fn := range mod.FunctionNames() {
			record(fn, KindFunction)
		}
		for _, a := range mod.SortedAliases() {
			record(a.Name, KindTypeAlias)
		}
		for _, v := range mod.SortedVariables() {
			record(v.Name, KindVariable)
		}
		for _, e := range mod.SortedErrors() {
			record(e.Name, KindError)
		}
	}
	return r
}

// documentingModule picks where an item defined in definingModule is
// canonically documented: the defining module when public, otherwise the
// lexicographically first public module that exports the name, otherwise
// nowhere.
func (r *ExportResolver) documentingModule(item, definingModule string) string {
	exporters := r.exportedBy[item]
	if _, ok := exporters[definingModule]; ok && !IsHiddenModule(definingModule) {
		return definingModule
	}
	candidates := make([]string, 0, len(exporters))
	for mod := range exporters {
		if !IsHiddenModule(mod) {
			candidates = append(candidates, mod)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[0]
}

// Exports reports whether the module exports the bare item name.
func (r *ExportResolver) Exports(module, item string) bool {
	_, ok := r.exportedBy[item][module]
	return ok
}

// CanonicalModule returns the documenting module recorded for a canonical
// fqn, or "" when the item is only reachable through hidden modules.
func (r *ExportResolver) CanonicalModule(fqn string) string {
	return r.exportMap[fqn]
}

// Kind returns the item kind recorded for a canonical fqn.
func (r *ExportResolver) Kind(fqn string) (ItemKind, bool) {
	k, ok := r.kinds[fqn]
	return k, ok
}

// ExportMap returns the serializable fqn -> documenting-module table,
// omitting entries without a public home.
func (r *ExportResolver) ExportMap() map[string]string {
	out := make(map[string]string, len(r.exportMap))
	for fqn, mod := range r.exportMap {
		if mod != "" {
			out[fqn] = mod
		}
	}
	return out
}
