package stub

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// resolveTaggedEnum lowers a tagged enum to a class tree: the enum itself
// becomes a plain class and each variant a nested class with its fields as
// getters, a __match_args__ tuple, and a synthesized constructor. Tuple
// variants additionally get __len__ and __getitem__ so they destructure
// like the native payload does.
func resolveTaggedEnum(rec meta.TaggedEnumRecord) (ClassDef, error) {
	parent := ClassDef{Name: rec.Name, Module: rec.Module, Doc: rec.Doc}
	for _, v := range rec.Variants {
		vc, err := resolveVariant(rec.Name, v)
		if err != nil {
			return ClassDef{}, errors.Wrapf(err, "tagged enum %q", rec.Name)
		}
		parent.Classes = append(parent.Classes, vc)
	}
	return parent, nil
}

func resolveVariant(enumName string, v meta.VariantRecord) (ClassDef, error) {
	vc := ClassDef{Name: v.Name, Doc: v.Doc}
	for _, f := range v.Fields {
		vc.Getters = append(vc.Getters, resolveMember(f))
	}
	if v.Shape != meta.UnitVariant {
		names := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			names[i] = f.Name
		}
		vc.MatchArgs = names
	}

	params, err := ResolveParams(v.CtorParams)
	if err != nil {
		return ClassDef{}, errors.Wrapf(err, "variant %q constructor", v.Name)
	}
	selfType := pytype.Unqualified(fmt.Sprintf("%s.%s", enumName, v.Name))
	vc.Ctor = &MethodDef{
		Name:   "__new__",
		Params: params,
		Return: selfType,
		Kind:   meta.NewMethod,
	}

	if v.Shape == meta.TupleVariant {
		lenDef := MethodDef{
			Name:   "__len__",
			Return: pytype.Int(),
			Kind:   meta.InstanceMethod,
		}
		indexParams, err := ResolveParams([]meta.ParamRecord{{
			Name: "index",
			Kind: meta.PositionalOnly,
			Type: pytype.Int,
		}})
		if err != nil {
			return ClassDef{}, err
		}
		getDef := MethodDef{
			Name:   "__getitem__",
			Params: indexParams,
			Return: pytype.Any(),
			Kind:   meta.InstanceMethod,
		}
		if err := vc.AddMethod(lenDef); err != nil {
			return ClassDef{}, err
		}
		if err := vc.AddMethod(getDef); err != nil {
			return ClassDef{}, err
		}
	}
	return vc, nil
}
