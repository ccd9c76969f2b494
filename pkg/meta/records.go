// Package meta defines the metadata records consumed by the stub
// registry. Records are produced by the annotation layer (or by the
// stub-snippet parser) at independent sites and carry type-producing
// thunks so that type construction is deferred to generation time.
package meta

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/pytype"
)

// TypeID is the stable identity token correlating metadata fragments that
// describe the same native type. Classes are keyed by TypeID, never by
// display name: two modules may define same-named classes.
type TypeID string

// ParameterKind tags a parameter's position in the signature. Within a
// signature the kinds must appear in declaration order below, with at most
// one VarPositional and one VarKeyword.
type ParameterKind int

const (
	PositionalOnly ParameterKind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

// String returns the kind name used in diagnostics.
func (k ParameterKind) String() string {
	switch k {
	case PositionalOnly:
		return "positional-only"
	case PositionalOrKeyword:
		return "positional-or-keyword"
	case VarPositional:
		return "var-positional"
	case KeywordOnly:
		return "keyword-only"
	case VarKeyword:
		return "var-keyword"
	}
	return "unknown"
}

// ParamDefault is a parameter's default value: absent, a pre-rendered
// expression (stub-syntax source), or a deferred formatter (native-value
// source, stringified lazily at generation time).
type ParamDefault struct {
	expr  string
	thunk func() string
	set   bool
}

// NoDefault marks a parameter without a default value.
func NoDefault() ParamDefault { return ParamDefault{} }

// DefaultExpr carries an already-rendered default expression.
func DefaultExpr(expr string) ParamDefault {
	return ParamDefault{expr: expr, set: true}
}

// DefaultThunk defers rendering of the default expression.
func DefaultThunk(f func() string) ParamDefault {
	return ParamDefault{thunk: f, set: true}
}

// DefaultLiteral renders a Go value through the Python literal printer.
// Values without a literal form are treated as having no default.
func DefaultLiteral(v any) ParamDefault {
	s, ok := pytype.FormatLiteral(v)
	if !ok {
		return ParamDefault{}
	}
	return ParamDefault{expr: s, set: true}
}

// Resolve returns the rendered default expression, invoking a deferred
// formatter if one was registered. ok is false when no default exists.
func (d ParamDefault) Resolve() (expr string, ok bool) {
	if !d.set {
		return "", false
	}
	if d.thunk != nil {
		return d.thunk(), true
	}
	return d.expr, true
}

// ParamRecord describes one declared parameter.
type ParamRecord struct {
	Name    string
	Kind    ParameterKind
	Type    pytype.Thunk
	Default ParamDefault
}

// DeprecatedRecord carries deprecation metadata for an item.
type DeprecatedRecord struct {
	Since string
	Note  string
}

// Message renders the user-facing deprecation message, prefixing the
// version when one was recorded.
func (d DeprecatedRecord) Message() string {
	switch {
	case d.Since != "" && d.Note != "":
		return fmt.Sprintf("[Since %s] %s", d.Since, d.Note)
	case d.Since != "":
		return fmt.Sprintf("[Since %s]", d.Since)
	default:
		return d.Note
	}
}

// Decorator renders the deprecation decorator line. Users of the stub need
// typing_extensions imported for it to resolve.
func (d DeprecatedRecord) Decorator() string {
	return fmt.Sprintf("@typing_extensions.deprecated(%q)", d.Message())
}

// MemberRecord describes a class attribute, getter, or setter.
type MemberRecord struct {
	Name       string
	Type       pytype.Thunk
	Doc        string
	Default    ParamDefault
	Deprecated *DeprecatedRecord
}

// MethodKind distinguishes instance, static, class, and constructor
// methods.
type MethodKind int

const (
	InstanceMethod MethodKind = iota
	StaticMethod
	ClassMethod
	NewMethod
)

// MethodRecord describes a single method definition. Records sharing a
// name within a class form an overload group in submission order.
type MethodRecord struct {
	Name       string
	Params     []ParamRecord
	Return     pytype.Thunk
	Doc        string
	Kind       MethodKind
	IsAsync    bool
	IsOverload bool
	Deprecated *DeprecatedRecord
}

// ClassRecord is the primary definition of a native class. Methods arrive
// separately in MethodGroupRecords referencing the same TypeID.
type ClassRecord struct {
	ID      TypeID
	Name    string
	Module  pytype.ModuleRef
	Doc     string
	Getters []MemberRecord
	Setters []MemberRecord
	Bases   []pytype.Thunk
}

// MethodGroupRecord carries members produced by one annotation site of a
// class or enum. The owning type is referenced purely by identity; the
// record itself carries no module placement.
type MethodGroupRecord struct {
	ID      TypeID
	Attrs   []MemberRecord
	Getters []MemberRecord
	Setters []MemberRecord
	Methods []MethodRecord
}

// EnumVariant is one variant of a simple enum.
type EnumVariant struct {
	Name string
	Doc  string
}

// EnumRecord is the primary definition of a simple (fieldless) enum.
type EnumRecord struct {
	ID       TypeID
	Name     string
	Module   pytype.ModuleRef
	Doc      string
	Variants []EnumVariant
}

// VariantShape describes the payload shape of a tagged-enum variant.
type VariantShape int

const (
	UnitVariant VariantShape = iota
	TupleVariant
	StructVariant
)

// VariantRecord is one variant of a tagged enum: a named shape carrying
// member fields and the parameters of its synthesized constructor.
type VariantRecord struct {
	Name       string
	Doc        string
	Shape      VariantShape
	Fields     []MemberRecord
	CtorParams []ParamRecord
}

// TaggedEnumRecord is the primary definition of a tagged (data-carrying)
// enum, lowered at render time to a class tree of nested variant classes.
type TaggedEnumRecord struct {
	ID       TypeID
	Name     string
	Module   pytype.ModuleRef
	Doc      string
	Variants []VariantRecord
}

// FunctionRecord describes a module-level function definition.
type FunctionRecord struct {
	Name       string
	Module     pytype.ModuleRef
	Params     []ParamRecord
	Return     pytype.Thunk
	Doc        string
	IsAsync    bool
	IsOverload bool
	Deprecated *DeprecatedRecord
}

// VariableRecord describes a module-level variable.
type VariableRecord struct {
	Name    string
	Module  string
	Type    pytype.Thunk
	Default ParamDefault
}

// ErrorRecord describes an exception type rendered as a one-line subclass
// declaration.
type ErrorRecord struct {
	Name   string
	Module pytype.ModuleRef
	Base   string
}

// TypeAliasRecord describes a module-level type alias.
type TypeAliasRecord struct {
	Name   string
	Module string
	Type   pytype.Thunk
	Doc    string
}

// ModuleDocRecord attaches a docstring to a module.
type ModuleDocRecord struct {
	Module string
	Doc    string
}

// ReexportRecord re-exports members of a source module from a target
// module. A nil Items slice requests a wildcard: the source module's
// resolved export set is copied, flattened, at finalization.
type ReexportRecord struct {
	TargetModule string
	SourceModule string
	Items        []string
}

// ExportVerbatimRecord force-includes a name in a module's export set
// regardless of underscore hiding.
type ExportVerbatimRecord struct {
	TargetModule string
	Name         string
}

// ExcludeRecord force-excludes a name from a module's export set.
type ExcludeRecord struct {
	TargetModule string
	Name         string
}

// CheckSignatureNames verifies that a manually declared parameter-name
// list matches the structurally derived parameters. Drift between the two
// is an authoring mistake and must fail loudly rather than silently
// preferring either side.
func CheckSignatureNames(declared []string, params []ParamRecord) error {
	if len(declared) != len(params) {
		return errors.Newf(
			"signature mismatch: %d declared parameter names, %d structural parameters",
			len(declared), len(params),
		)
	}
	for i, name := range declared {
		if params[i].Name != name {
			return errors.Newf(
				"signature mismatch at position %d: declared %q, structural %q",
				i, name, params[i].Name,
			)
		}
	}
	return nil
}
