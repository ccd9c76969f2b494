// Package docgen builds a serializable documentation tree from aggregated
// stub modules: a kind-tagged item IR with resolved link targets, plus
// JSON/YAML and reStructuredText emitters.
package docgen

// ItemKind tags a documentation item.
type ItemKind string

const (
	KindFunction  ItemKind = "function"
	KindClass     ItemKind = "class"
	KindEnum      ItemKind = "enum"
	KindTypeAlias ItemKind = "type_alias"
	KindVariable  ItemKind = "variable"
	KindError     ItemKind = "error"
)

// LinkTarget names the module where an item is canonically documented.
type LinkTarget struct {
	FQN    string   `json:"fqn"`
	Module string   `json:"module"`
	Kind   ItemKind `json:"kind"`
}

// TypeExpr is a display-ready type expression: plain text plus structure.
// Exactly one of Args (generic) or Union is set for structured forms;
// simple types carry only Text and an optional resolved link.
type TypeExpr struct {
	Text  string      `json:"text"`
	Link  *LinkTarget `json:"link,omitempty"`
	Base  string      `json:"base,omitempty"`
	Args  []TypeExpr  `json:"args,omitempty"`
	Union []TypeExpr  `json:"union,omitempty"`
}

// DocParam is one parameter of a documented signature.
type DocParam struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Type    *TypeExpr `json:"type,omitempty"`
	Default string    `json:"default,omitempty"`
}

// DocSignature is one call shape of a function or method.
type DocSignature struct {
	Params  []DocParam `json:"params"`
	Returns *TypeExpr  `json:"returns,omitempty"`
}

// DocItem is implemented by every documentation item. Concrete items
// marshal naturally; the Kind field tags them in the serialized stream.
type DocItem interface {
	ItemName() string
	ItemKind() ItemKind
}

// DocFunction documents a function or method with all of its overloads.
type DocFunction struct {
	Kind       ItemKind       `json:"kind"`
	Name       string         `json:"name"`
	Doc        string         `json:"doc,omitempty"`
	Signatures []DocSignature `json:"signatures"`
	Async      bool           `json:"async,omitempty"`
	Deprecated string         `json:"deprecated,omitempty"`
}

func (f DocFunction) ItemName() string   { return f.Name }
func (f DocFunction) ItemKind() ItemKind { return f.Kind }

// DocMember documents an attribute or property.
type DocMember struct {
	Name     string    `json:"name"`
	Doc      string    `json:"doc,omitempty"`
	Type     *TypeExpr `json:"type,omitempty"`
	Default  string    `json:"default,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
}

// DocClass documents a class and its members.
type DocClass struct {
	Kind       ItemKind      `json:"kind"`
	Name       string        `json:"name"`
	Doc        string        `json:"doc,omitempty"`
	Bases      []TypeExpr    `json:"bases,omitempty"`
	Attrs      []DocMember   `json:"attrs,omitempty"`
	Properties []DocMember   `json:"properties,omitempty"`
	Ctor       *DocFunction  `json:"ctor,omitempty"`
	Methods    []DocFunction `json:"methods,omitempty"`
	Classes    []DocClass    `json:"classes,omitempty"`
}

func (c DocClass) ItemName() string   { return c.Name }
func (c DocClass) ItemKind() ItemKind { return c.Kind }

// DocEnumVariant is one variant of a documented enum.
type DocEnumVariant struct {
	Name string `json:"name"`
	Doc  string `json:"doc,omitempty"`
}

// DocEnum documents a simple enum.
type DocEnum struct {
	Kind     ItemKind         `json:"kind"`
	Name     string           `json:"name"`
	Doc      string           `json:"doc,omitempty"`
	Variants []DocEnumVariant `json:"variants"`
	Methods  []DocFunction    `json:"methods,omitempty"`
}

func (e DocEnum) ItemName() string   { return e.Name }
func (e DocEnum) ItemKind() ItemKind { return e.Kind }

// DocAlias documents a type alias.
type DocAlias struct {
	Kind ItemKind `json:"kind"`
	Name string   `json:"name"`
	Doc  string   `json:"doc,omitempty"`
	Type TypeExpr `json:"type"`
}

func (a DocAlias) ItemName() string   { return a.Name }
func (a DocAlias) ItemKind() ItemKind { return a.Kind }

// DocVariable documents a module-level variable.
type DocVariable struct {
	Kind    ItemKind  `json:"kind"`
	Name    string    `json:"name"`
	Type    *TypeExpr `json:"type,omitempty"`
	Default string    `json:"default,omitempty"`
}

func (v DocVariable) ItemName() string   { return v.Name }
func (v DocVariable) ItemKind() ItemKind { return v.Kind }

// DocError documents an exception type.
type DocError struct {
	Kind ItemKind `json:"kind"`
	Name string   `json:"name"`
	Base string   `json:"base"`
}

func (e DocError) ItemName() string   { return e.Name }
func (e DocError) ItemKind() ItemKind { return e.Kind }

// DocModule is the documented view of one module.
type DocModule struct {
	Name       string    `json:"name"`
	Doc        string    `json:"doc,omitempty"`
	Items      []DocItem `json:"items"`
	Exports    []string  `json:"exports"`
	Submodules []string  `json:"submodules,omitempty"`
}

// DocPackage is the serialized documentation tree for a whole package.
type DocPackage struct {
	Name      string            `json:"name"`
	Modules   []DocModule       `json:"modules"`
	ExportMap map[string]string `json:"export_map"`
}
