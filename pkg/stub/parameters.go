package stub

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// Parameter is one resolved parameter of a signature. Default holds the
// rendered default expression, nil when the parameter has none.
type Parameter struct {
	Name    string
	Kind    meta.ParameterKind
	Type    pytype.TypeInfo
	Default *string
}

// render emits the parameter as it appears in a signature for the given
// target module. Variadic markers are attached here; the bare "*" and "/"
// separators belong to Parameters.
func (p Parameter) render(targetModule string) string {
	var b strings.Builder
	switch p.Kind {
	case meta.VarPositional:
		b.WriteByte('*')
	case meta.VarKeyword:
		b.WriteString("**")
	}
	b.WriteString(p.Name)
	b.WriteString(": ")
	b.WriteString(p.Type.QualifiedFor(targetModule))
	if p.Default != nil {
		b.WriteString(" = ")
		b.WriteString(*p.Default)
	}
	return b.String()
}

// Parameters is an ordered signature: five kind buckets rendered with the
// "/" and "*" separators Python requires. Names are unique across all
// buckets and kinds appear in declaration order.
type Parameters struct {
	PositionalOnly      []Parameter
	PositionalOrKeyword []Parameter
	VarPositional       *Parameter
	KeywordOnly         []Parameter
	VarKeyword          *Parameter
}

// ResolveParams converts parameter records into a Parameters value,
// invoking type thunks and default formatters, and validates the ordering
// and uniqueness invariants.
func ResolveParams(records []meta.ParamRecord) (Parameters, error) {
	var out Parameters
	seen := make(map[string]struct{}, len(records))
	lastKind := meta.PositionalOnly
	for i, rec := range records {
		if rec.Name == "" {
			return Parameters{}, errors.Newf("parameter %d has no name", i)
		}
		if _, dup := seen[rec.Name]; dup {
			return Parameters{}, errors.Newf("duplicate parameter name %q", rec.Name)
		}
		seen[rec.Name] = struct{}{}
		if rec.Kind < lastKind {
			return Parameters{}, errors.Newf(
				"parameter %q: %s parameter after %s parameter",
				rec.Name, rec.Kind, lastKind,
			)
		}
		lastKind = rec.Kind

		p := Parameter{Name: rec.Name, Kind: rec.Kind}
		if rec.Type != nil {
			p.Type = rec.Type()
		} else {
			p.Type = pytype.Any()
		}
		if expr, ok := rec.Default.Resolve(); ok {
			p.Default = &expr
		}

		switch rec.Kind {
		case meta.PositionalOnly:
			out.PositionalOnly = append(out.PositionalOnly, p)
		case meta.PositionalOrKeyword:
			out.PositionalOrKeyword = append(out.PositionalOrKeyword, p)
		case meta.VarPositional:
			if out.VarPositional != nil {
				return Parameters{}, errors.Newf("second var-positional parameter %q", rec.Name)
			}
			out.VarPositional = &p
		case meta.KeywordOnly:
			out.KeywordOnly = append(out.KeywordOnly, p)
		case meta.VarKeyword:
			if out.VarKeyword != nil {
				return Parameters{}, errors.Newf("second var-keyword parameter %q", rec.Name)
			}
			out.VarKeyword = &p
		default:
			return Parameters{}, errors.Newf("parameter %q has invalid kind %d", rec.Name, rec.Kind)
		}
	}
	return out, nil
}

// Render emits the signature text between the parentheses, inserting "/"
// after the positional-only block and "*" before keyword-only parameters
// when no var-positional parameter carries the star.
func (ps Parameters) Render(targetModule string) string {
	var parts []string
	for _, p := range ps.PositionalOnly {
		parts = append(parts, p.render(targetModule))
	}
	if len(ps.PositionalOnly) > 0 {
		parts = append(parts, "/")
	}
	for _, p := range ps.PositionalOrKeyword {
		parts = append(parts, p.render(targetModule))
	}
	if ps.VarPositional != nil {
		parts = append(parts, ps.VarPositional.render(targetModule))
	} else if len(ps.KeywordOnly) > 0 {
		parts = append(parts, "*")
	}
	for _, p := range ps.KeywordOnly {
		parts = append(parts, p.render(targetModule))
	}
	if ps.VarKeyword != nil {
		parts = append(parts, ps.VarKeyword.render(targetModule))
	}
	return strings.Join(parts, ", ")
}

// Names returns every parameter name in declaration order.
func (ps Parameters) Names() []string {
	var names []string
	for _, p := range ps.PositionalOnly {
		names = append(names, p.Name)
	}
	for _, p := range ps.PositionalOrKeyword {
		names = append(names, p.Name)
	}
	if ps.VarPositional != nil {
		names = append(names, ps.VarPositional.Name)
	}
	for _, p := range ps.KeywordOnly {
		names = append(names, p.Name)
	}
	if ps.VarKeyword != nil {
		names = append(names, ps.VarKeyword.Name)
	}
	return names
}

// collectImports adds every module needed by the parameter types to dst.
func (ps Parameters) collectImports(dst pytype.ImportSet) {
	for _, p := range ps.PositionalOnly {
		dst.Union(p.Type.Import)
	}
	for _, p := range ps.PositionalOrKeyword {
		dst.Union(p.Type.Import)
	}
	if ps.VarPositional != nil {
		dst.Union(ps.VarPositional.Type.Import)
	}
	for _, p := range ps.KeywordOnly {
		dst.Union(p.Type.Import)
	}
	if ps.VarKeyword != nil {
		dst.Union(ps.VarKeyword.Type.Import)
	}
}
