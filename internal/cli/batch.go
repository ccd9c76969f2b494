package cli

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
	"github.com/example/pystub-gen/pkg/stub"
	"github.com/example/pystub-gen/pkg/stubparse"
)

// batchFile is the JSON record batch exported by the annotation layer:
// one kind-tagged entry per metadata record, in registration order.
// Signatures arrive as stub-syntax snippets, standalone types as
// annotation expressions.
type batchFile struct {
	Records []batchRecord `json:"records"`
}

type batchRecord struct {
	Kind    string `json:"kind"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Module  string `json:"module,omitempty"`
	Doc     string `json:"doc,omitempty"`
	Stub    string `json:"stub,omitempty"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
	Base    string `json:"base,omitempty"`

	// Signature optionally declares the expected parameter names of a
	// function record; drift against the parsed stub is an error.
	Signature []string `json:"signature,omitempty"`

	Getters  []batchMember  `json:"getters,omitempty"`
	Setters  []batchMember  `json:"setters,omitempty"`
	Bases    []string       `json:"bases,omitempty"`
	Variants []batchVariant `json:"variants,omitempty"`

	// Re-export and export-directive fields.
	Target string   `json:"target,omitempty"`
	Source string   `json:"source,omitempty"`
	Items  []string `json:"items,omitempty"`
}

type batchMember struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Doc     string `json:"doc,omitempty"`
	Default string `json:"default,omitempty"`
}

type batchVariant struct {
	Name   string        `json:"name"`
	Doc    string        `json:"doc,omitempty"`
	Shape  string        `json:"shape"`
	Fields []batchMember `json:"fields,omitempty"`
	Ctor   []batchParam  `json:"ctor,omitempty"`
}

type batchParam struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
}

func loadBatch(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading record batch %s", path)
	}
	var b batchFile
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(err, "parsing record batch %s", path)
	}
	return &b, nil
}

// applyBatch registers every batch record with the registry. Records are
// applied in file order; order between primary definitions and their
// method groups does not matter. Records that carry their module as a
// plain string fall back to defaultModule when it is empty.
func applyBatch(reg *stub.Registry, b *batchFile, defaultModule string, lookup stubparse.NativeLookup) error {
	for i, rec := range b.Records {
		if rec.Module == "" {
			switch rec.Kind {
			case "module_doc", "variable", "type_alias":
				rec.Module = defaultModule
			}
		}
		if err := applyRecord(reg, rec, lookup); err != nil {
			return errors.Wrapf(err, "record %d (%s %q)", i, rec.Kind, rec.Name)
		}
	}
	return nil
}

func applyRecord(reg *stub.Registry, rec batchRecord, lookup stubparse.NativeLookup) error {
	switch rec.Kind {
	case "module_doc":
		return reg.AddModuleDoc(meta.ModuleDocRecord{Module: rec.Module, Doc: rec.Doc})
	case "class":
		return applyClass(reg, rec, lookup)
	case "methods":
		if rec.ID == "" {
			return errors.Newf("methods record needs an id")
		}
		group, err := stubparse.ParseMethods(rec.Stub, meta.TypeID(rec.ID), lookup)
		if err != nil {
			return err
		}
		return reg.AddMethods(*group)
	case "function":
		fn, err := stubparse.ParseFunction(rec.Stub, lookup)
		if err != nil {
			return err
		}
		if len(rec.Signature) > 0 {
			if err := meta.CheckSignatureNames(rec.Signature, fn.Params); err != nil {
				return err
			}
		}
		fn.Module = moduleRef(rec.Module)
		if rec.Doc != "" {
			fn.Doc = rec.Doc
		}
		return reg.AddFunction(*fn)
	case "enum":
		variants := make([]meta.EnumVariant, len(rec.Variants))
		for i, v := range rec.Variants {
			variants[i] = meta.EnumVariant{Name: v.Name, Doc: v.Doc}
		}
		return reg.AddEnum(meta.EnumRecord{
			ID: meta.TypeID(rec.ID), Name: rec.Name,
			Module: moduleRef(rec.Module), Doc: rec.Doc, Variants: variants,
		})
	case "tagged_enum":
		return applyTaggedEnum(reg, rec, lookup)
	case "variable":
		t, err := stubparse.ParseTypeExpr(rec.Type, lookup)
		if err != nil {
			return err
		}
		return reg.AddVariable(meta.VariableRecord{
			Name: rec.Name, Module: rec.Module,
			Type: thunkOf(t), Default: defaultOf(rec.Default),
		})
	case "error":
		return reg.AddError(meta.ErrorRecord{
			Name: rec.Name, Module: moduleRef(rec.Module), Base: rec.Base,
		})
	case "type_alias":
		aliases, err := stubparse.ParseTypeAliases(rec.Stub, rec.Module, lookup)
		if err != nil {
			return err
		}
		for _, a := range aliases {
			if err := reg.AddTypeAlias(a); err != nil {
				return err
			}
		}
		return nil
	case "reexport":
		return reg.AddReexport(meta.ReexportRecord{
			TargetModule: rec.Target, SourceModule: rec.Source, Items: rec.Items,
		})
	case "export":
		return reg.AddVerbatimExport(meta.ExportVerbatimRecord{TargetModule: rec.Target, Name: rec.Name})
	case "exclude":
		return reg.AddExclude(meta.ExcludeRecord{TargetModule: rec.Target, Name: rec.Name})
	}
	return errors.Newf("unknown record kind %q", rec.Kind)
}

func applyClass(reg *stub.Registry, rec batchRecord, lookup stubparse.NativeLookup) error {
	if rec.ID == "" {
		return errors.Newf("class record needs an id")
	}
	getters, err := members(rec.Getters, lookup)
	if err != nil {
		return err
	}
	setters, err := members(rec.Setters, lookup)
	if err != nil {
		return err
	}
	bases := make([]pytype.Thunk, len(rec.Bases))
	for i, expr := range rec.Bases {
		t, err := stubparse.ParseTypeExpr(expr, lookup)
		if err != nil {
			return err
		}
		bases[i] = thunkOf(t)
	}
	return reg.AddClass(meta.ClassRecord{
		ID: meta.TypeID(rec.ID), Name: rec.Name,
		Module: moduleRef(rec.Module), Doc: rec.Doc,
		Getters: getters, Setters: setters, Bases: bases,
	})
}

func applyTaggedEnum(reg *stub.Registry, rec batchRecord, lookup stubparse.NativeLookup) error {
	variants := make([]meta.VariantRecord, len(rec.Variants))
	for i, v := range rec.Variants {
		shape, err := variantShape(v.Shape)
		if err != nil {
			return err
		}
		fields, err := members(v.Fields, lookup)
		if err != nil {
			return err
		}
		params := make([]meta.ParamRecord, len(v.Ctor))
		for j, p := range v.Ctor {
			kind, err := paramKind(p.Kind)
			if err != nil {
				return err
			}
			t, err := stubparse.ParseTypeExpr(p.Type, lookup)
			if err != nil {
				return err
			}
			params[j] = meta.ParamRecord{
				Name: p.Name, Kind: kind, Type: thunkOf(t), Default: defaultOf(p.Default),
			}
		}
		variants[i] = meta.VariantRecord{
			Name: v.Name, Doc: v.Doc, Shape: shape, Fields: fields, CtorParams: params,
		}
	}
	return reg.AddTaggedEnum(meta.TaggedEnumRecord{
		ID: meta.TypeID(rec.ID), Name: rec.Name,
		Module: moduleRef(rec.Module), Doc: rec.Doc, Variants: variants,
	})
}

func members(ms []batchMember, lookup stubparse.NativeLookup) ([]meta.MemberRecord, error) {
	out := make([]meta.MemberRecord, len(ms))
	for i, m := range ms {
		t, err := stubparse.ParseTypeExpr(m.Type, lookup)
		if err != nil {
			return nil, err
		}
		out[i] = meta.MemberRecord{
			Name: m.Name, Type: thunkOf(t), Doc: m.Doc, Default: defaultOf(m.Default),
		}
	}
	return out, nil
}

func moduleRef(module string) pytype.ModuleRef {
	if module == "" {
		return pytype.ModuleRef{}
	}
	return pytype.NamedModule(module)
}

func thunkOf(t pytype.TypeInfo) pytype.Thunk {
	return func() pytype.TypeInfo { return t }
}

func defaultOf(expr string) meta.ParamDefault {
	if expr == "" {
		return meta.NoDefault()
	}
	return meta.DefaultExpr(expr)
}

func paramKind(s string) (meta.ParameterKind, error) {
	switch s {
	case "positional-only":
		return meta.PositionalOnly, nil
	case "", "positional-or-keyword":
		return meta.PositionalOrKeyword, nil
	case "var-positional":
		return meta.VarPositional, nil
	case "keyword-only":
		return meta.KeywordOnly, nil
	case "var-keyword":
		return meta.VarKeyword, nil
	}
	return 0, errors.Newf("unknown parameter kind %q", s)
}

func variantShape(s string) (meta.VariantShape, error) {
	switch s {
	case "", "unit":
		return meta.UnitVariant, nil
	case "tuple":
		return meta.TupleVariant, nil
	case "struct":
		return meta.StructVariant, nil
	}
	return 0, errors.Newf("unknown variant shape %q", s)
}
