package stub

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// Registry aggregates metadata records into per-module trees. Records may
// arrive in any order: primary definitions (classes, enums, functions, ...)
// are placed immediately, while method-group and re-export records are
// queued and resolved in Finalize so no structural decision depends on
// arrival order. A Registry is built once per generation run and read-only
// afterwards.
type Registry struct {
	defaultModule string
	modules       map[string]*Module
	logger        *zap.Logger

	pendingGroups    []meta.MethodGroupRecord
	pendingReexports []meta.ReexportRecord
	finalized        bool
}

// NewRegistry creates a registry whose default-placement module is named
// defaultModule. A nil logger disables logging.
func NewRegistry(defaultModule string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		defaultModule: defaultModule,
		modules:       map[string]*Module{},
		logger:        logger,
	}
}

// DefaultModule returns the registry's default module name.
func (r *Registry) DefaultModule() string { return r.defaultModule }

func (r *Registry) module(name string) *Module {
	m, ok := r.modules[name]
	if !ok {
		m = newModule(name)
		r.modules[name] = m
	}
	return m
}

func (r *Registry) placement(ref pytype.ModuleRef) string {
	return ref.Or(r.defaultModule)
}

// AddClass registers a primary class definition under its identity token.
func (r *Registry) AddClass(rec meta.ClassRecord) error {
	if rec.ID == "" {
		return errors.Newf("class %q has no identity token", rec.Name)
	}
	mod := r.module(r.placement(rec.Module))
	if _, dup := mod.classes[rec.ID]; dup {
		return errors.Newf("class identity %q registered twice in module %q", rec.ID, mod.Name)
	}
	c := resolveClass(rec)
	c.resolveDefaults(r.defaultModule)
	mod.classes[rec.ID] = &c
	r.logger.Debug("registered class",
		zap.String("module", mod.Name), zap.String("class", rec.Name))
	return nil
}

// AddEnum registers a primary simple-enum definition.
func (r *Registry) AddEnum(rec meta.EnumRecord) error {
	if rec.ID == "" {
		return errors.Newf("enum %q has no identity token", rec.Name)
	}
	mod := r.module(r.placement(rec.Module))
	if _, dup := mod.enums[rec.ID]; dup {
		return errors.Newf("enum identity %q registered twice in module %q", rec.ID, mod.Name)
	}
	e := resolveEnum(rec)
	mod.enums[rec.ID] = &e
	r.logger.Debug("registered enum",
		zap.String("module", mod.Name), zap.String("enum", rec.Name))
	return nil
}

// AddTaggedEnum registers a tagged enum, lowered to a class tree with
// nested variant classes.
func (r *Registry) AddTaggedEnum(rec meta.TaggedEnumRecord) error {
	if rec.ID == "" {
		return errors.Newf("tagged enum %q has no identity token", rec.Name)
	}
	mod := r.module(r.placement(rec.Module))
	if _, dup := mod.classes[rec.ID]; dup {
		return errors.Newf("class identity %q registered twice in module %q", rec.ID, mod.Name)
	}
	c, err := resolveTaggedEnum(rec)
	if err != nil {
		return err
	}
	c.resolveDefaults(r.defaultModule)
	mod.classes[rec.ID] = &c
	return nil
}

// AddMethods queues a method-group record for merging in Finalize, so the
// merge works no matter whether the owning class arrives before or after.
func (r *Registry) AddMethods(rec meta.MethodGroupRecord) error {
	if rec.ID == "" {
		return errors.Newf("method group has no identity token")
	}
	r.pendingGroups = append(r.pendingGroups, rec)
	return nil
}

// AddFunction appends a function to its module's overload group. Two
// same-named records without the overload flag are rejected.
func (r *Registry) AddFunction(rec meta.FunctionRecord) error {
	f, err := resolveFunction(rec)
	if err != nil {
		return err
	}
	f.resolveDefaults(r.defaultModule)
	mod := r.module(r.placement(rec.Module))
	group, exists := mod.functions[f.Name]
	if exists && (!f.IsOverload || !group[0].IsOverload) {
		return errors.Newf(
			"module %q: duplicate function %q without overload marker", mod.Name, f.Name,
		)
	}
	if !exists {
		mod.functionNames = append(mod.functionNames, f.Name)
	}
	mod.functions[f.Name] = append(group, f)
	return nil
}

// AddVariable registers a module-level variable.
func (r *Registry) AddVariable(rec meta.VariableRecord) error {
	if rec.Module == "" {
		return errors.Newf("variable %q has no module", rec.Name)
	}
	v := VariableDef{Name: rec.Name, Type: pytype.Any()}
	if rec.Type != nil {
		v.Type = rec.Type()
	}
	v.Type = v.Type.ResolveDefaults(r.defaultModule)
	if expr, ok := rec.Default.Resolve(); ok {
		v.Default = &expr
	}
	r.module(rec.Module).variables[rec.Name] = v
	return nil
}

// AddError registers an exception type.
func (r *Registry) AddError(rec meta.ErrorRecord) error {
	mod := r.module(r.placement(rec.Module))
	mod.errDefs[rec.Name] = ErrorDef{Name: rec.Name, Base: rec.Base}
	return nil
}

// AddTypeAlias registers a module-level type alias.
func (r *Registry) AddTypeAlias(rec meta.TypeAliasRecord) error {
	if rec.Module == "" {
		return errors.Newf("type alias %q has no module", rec.Name)
	}
	a := TypeAliasDef{Name: rec.Name, Doc: rec.Doc, Type: pytype.Any()}
	if rec.Type != nil {
		a.Type = rec.Type()
	}
	a.Type = a.Type.ResolveDefaults(r.defaultModule)
	r.module(rec.Module).aliases[rec.Name] = a
	return nil
}

// AddModuleDoc attaches a docstring to a module.
func (r *Registry) AddModuleDoc(rec meta.ModuleDocRecord) error {
	if rec.Module == "" {
		return errors.Newf("module docstring has no module")
	}
	r.module(rec.Module).Doc = rec.Doc
	return nil
}

// AddReexport queues a re-export directive. Wildcards are expanded against
// the source module's resolved export set in Finalize.
func (r *Registry) AddReexport(rec meta.ReexportRecord) error {
	if rec.TargetModule == "" || rec.SourceModule == "" {
		return errors.Newf("re-export needs both target and source module")
	}
	r.pendingReexports = append(r.pendingReexports, rec)
	return nil
}

// AddVerbatimExport force-includes a name in a module's export set.
func (r *Registry) AddVerbatimExport(rec meta.ExportVerbatimRecord) error {
	r.module(rec.TargetModule).verbatim[rec.Name] = struct{}{}
	return nil
}

// AddExclude force-excludes a name from a module's export set.
func (r *Registry) AddExclude(rec meta.ExcludeRecord) error {
	r.module(rec.TargetModule).excluded[rec.Name] = struct{}{}
	return nil
}

// Finalize merges queued method groups by identity, registers intermediate
// parent modules, and resolves re-export directives. After Finalize the
// registry is read-only.
func (r *Registry) Finalize() error {
	if r.finalized {
		return errors.Newf("registry already finalized")
	}
	r.finalized = true

	for _, rec := range r.pendingGroups {
		if err := r.mergeGroup(rec); err != nil {
			return err
		}
	}
	r.pendingGroups = nil

	r.registerSubmodules()

	if err := r.resolveReexports(); err != nil {
		return err
	}
	r.pendingReexports = nil
	return nil
}

// mergeGroup finds, across all modules, the class or enum owning the
// record's identity token and merges the members in. A missing owner means
// a method group was submitted without its primary definition, which is a
// build-system bug, not recoverable input.
func (r *Registry) mergeGroup(rec meta.MethodGroupRecord) error {
	for _, mod := range r.modules {
		if c, ok := mod.classes[rec.ID]; ok {
			if err := c.mergeGroup(rec); err != nil {
				return err
			}
			c.resolveDefaults(r.defaultModule)
			return nil
		}
		if e, ok := mod.enums[rec.ID]; ok {
			if err := e.mergeGroup(rec); err != nil {
				return err
			}
			e.resolveDefaults(r.defaultModule)
			return nil
		}
	}
	return errors.AssertionFailedf(
		"method group references identity %q but no class or enum with that identity was registered",
		rec.ID,
	)
}

// registerSubmodules creates the intermediate modules implied by dotted
// names and records each module in its parent's submodule list, so parent
// stubs can emit the namespace-populating relative imports.
func (r *Registry) registerSubmodules() {
	if r.defaultModule != "" {
		r.module(r.defaultModule)
	}
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	for _, name := range names {
		for {
			i := strings.LastIndexByte(name, '.')
			if i < 0 {
				break
			}
			parent, child := name[:i], name[i+1:]
			r.module(parent).submodules[child] = struct{}{}
			name = parent
		}
	}
}

// resolveReexports expands each directive into a concrete name list.
// Wildcards copy the source module's resolved export set, flattened, not a
// live reference. Duplicate names landing in one target keep the last
// registered source, with a diagnostic.
func (r *Registry) resolveReexports() error {
	seen := map[string]map[string]string{} // target -> name -> source
	for _, rec := range r.pendingReexports {
		src, ok := r.modules[rec.SourceModule]
		if !ok {
			return errors.Newf(
				"re-export in %q references unknown module %q",
				rec.TargetModule, rec.SourceModule,
			)
		}
		names := rec.Items
		wildcard := names == nil
		if wildcard {
			names = src.ExportSet()
		}
		target := r.module(rec.TargetModule)
		if seen[target.Name] == nil {
			seen[target.Name] = map[string]string{}
		}
		kept := names[:0:0]
		for _, name := range names {
			if prev, dup := seen[target.Name][name]; dup {
				r.logger.Warn("re-export name collision, keeping latest source",
					zap.String("module", target.Name),
					zap.String("name", name),
					zap.String("previous_source", prev),
					zap.String("source", rec.SourceModule))
				r.dropReexportName(target, name)
			}
			seen[target.Name][name] = rec.SourceModule
			kept = append(kept, name)
		}
		target.reexports = append(target.reexports, resolvedReexport{
			Source:   rec.SourceModule,
			Names:    kept,
			Wildcard: wildcard,
		})
	}
	return nil
}

func (r *Registry) dropReexportName(mod *Module, name string) {
	for i := range mod.reexports {
		names := mod.reexports[i].Names
		for j, n := range names {
			if n == name {
				mod.reexports[i].Names = append(names[:j:j], names[j+1:]...)
				break
			}
		}
	}
}

// Modules returns the aggregated module trees keyed by dotted name.
func (r *Registry) Modules() map[string]*Module { return r.modules }

// ModuleSet returns the set of module names, for import rendering.
func (r *Registry) ModuleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.modules))
	for name := range r.modules {
		set[name] = struct{}{}
	}
	return set
}
