package pytype

import (
	"fmt"
	"strings"
)

// Constructors for the builtin/stdlib part of the type vocabulary. These
// replace a per-type lookup table: annotation-layer records reference them
// through thunks, and the stub-snippet parser resolves bare names through
// FromName.

// None_ is Python's None type.
func None_() TypeInfo { return TypeInfo{Name: "None"} }

// Any is typing.Any.
func Any() TypeInfo {
	return TypeInfo{Name: "typing.Any", Import: NewImportSet("typing")}
}

// Bool is the builtin bool.
func Bool() TypeInfo { return TypeInfo{Name: "bool"} }

// Int is the builtin int.
func Int() TypeInfo { return TypeInfo{Name: "int"} }

// Float is the builtin float.
func Float() TypeInfo { return TypeInfo{Name: "float"} }

// Str is the builtin str.
func Str() TypeInfo { return TypeInfo{Name: "str"} }

// Bytes is the builtin bytes.
func Bytes() TypeInfo { return TypeInfo{Name: "bytes"} }

// Ellipsis_ renders as "...", used in Callable argument positions.
func Ellipsis_() TypeInfo { return TypeInfo{Name: "..."} }

// List is list[T].
func List(elem TypeInfo) TypeInfo { return generic("list", nil, elem) }

// SetOf is set[T].
func SetOf(elem TypeInfo) TypeInfo { return generic("set", nil, elem) }

// FrozenSet is frozenset[T].
func FrozenSet(elem TypeInfo) TypeInfo { return generic("frozenset", nil, elem) }

// Dict is dict[K, V].
func Dict(key, value TypeInfo) TypeInfo { return generic("dict", nil, key, value) }

// Tuple is tuple[T1, T2, ...].
func Tuple(elems ...TypeInfo) TypeInfo { return generic("tuple", nil, elems...) }

// Sequence is typing.Sequence[T], the preferred input-position type for
// list-like values.
func Sequence(elem TypeInfo) TypeInfo {
	return generic("typing.Sequence", NewImportSet("typing"), elem)
}

// Mapping is typing.Mapping[K, V], the preferred input-position type for
// dict-like values.
func Mapping(key, value TypeInfo) TypeInfo {
	return generic("typing.Mapping", NewImportSet("typing"), key, value)
}

// Iterator is typing.Iterator[T].
func Iterator(elem TypeInfo) TypeInfo {
	return generic("typing.Iterator", NewImportSet("typing"), elem)
}

// Optional is typing.Optional[T].
func Optional(elem TypeInfo) TypeInfo {
	return generic("typing.Optional", NewImportSet("typing"), elem)
}

// Callable is typing.Callable[[args...], ret].
func Callable(args []TypeInfo, ret TypeInfo) TypeInfo {
	parts := make([]string, len(args))
	imports := NewImportSet("typing")
	refs := map[string]TypeIdentifierRef{}
	for i, a := range args {
		parts[i] = a.Name
		imports.Union(a.Import)
		mergeRefs(refs, a.TypeRefs)
	}
	imports.Union(ret.Import)
	mergeRefs(refs, ret.TypeRefs)
	return TypeInfo{
		Name:     fmt.Sprintf("typing.Callable[[%s], %s]", strings.Join(parts, ", "), ret.Name),
		Import:   imports,
		TypeRefs: refs,
	}
}

// Builtin names a builtin identifier that needs no import, e.g. "object".
func Builtin(name string) TypeInfo { return TypeInfo{Name: name} }

// Unqualified names a type assumed to be visible in the rendering module
// without imports or qualification, e.g. a sibling class.
func Unqualified(name string) TypeInfo { return TypeInfo{Name: name} }

// Custom names a package-local class defined in the given module. The
// expression records a type ref so renders into other modules qualify it.
func Custom(module ModuleRef, name string) TypeInfo {
	t := TypeInfo{
		Name:         name,
		SourceModule: module,
		TypeRefs: map[string]TypeIdentifierRef{
			name: {Module: module, Kind: ImportModule},
		},
	}
	if path, ok := module.Named(); ok {
		t.Import = NewImportSet(path)
	}
	return t
}

// FromName resolves a bare annotation name into a TypeInfo, recognizing
// builtins and common typing constructs. Unknown names are passed through
// unqualified (resolution ambiguity degrades, it does not fail).
func FromName(name string) TypeInfo {
	switch name {
	case "None":
		return None_()
	case "int", "str", "float", "bool", "bytes", "bytearray",
		"list", "dict", "tuple", "set", "frozenset",
		"object", "type", "complex", "slice", "range", "memoryview":
		return Builtin(name)
	}
	if strings.HasPrefix(name, "typing.") {
		return TypeInfo{Name: name, Import: NewImportSet("typing")}
	}
	if strings.HasPrefix(name, "collections.abc.") {
		return TypeInfo{Name: name, Import: NewImportSet("collections.abc")}
	}
	if strings.HasPrefix(name, "typing_extensions.") {
		return TypeInfo{Name: name, Import: NewImportSet("typing_extensions")}
	}
	return Unqualified(name)
}

// IsPythonBuiltin reports whether the identifier belongs to the builtin or
// typing vocabulary and must never be treated as package-local.
func IsPythonBuiltin(ident string) bool {
	switch ident {
	case "Any", "Optional", "Union", "List", "Dict", "Tuple", "Set",
		"Callable", "Sequence", "Mapping", "Iterable", "Iterator",
		"Literal", "TypeVar", "Generic", "Protocol", "TypeAlias",
		"Final", "ClassVar", "Annotated", "TypeGuard", "Never",
		"int", "str", "float", "bool", "bytes", "bytearray",
		"list", "dict", "tuple", "set", "frozenset",
		"object", "type", "None", "Ellipsis",
		"complex", "slice", "range", "memoryview",
		"typing", "collections", "abc", "builtins":
		return true
	}
	return false
}

func generic(base string, imports ImportSet, args ...TypeInfo) TypeInfo {
	parts := make([]string, len(args))
	if imports == nil {
		imports = ImportSet{}
	}
	refs := map[string]TypeIdentifierRef{}
	for i, a := range args {
		parts[i] = a.Name
		imports.Union(a.Import)
		mergeRefs(refs, a.TypeRefs)
	}
	return TypeInfo{
		Name:     fmt.Sprintf("%s[%s]", base, strings.Join(parts, ", ")),
		Import:   imports,
		TypeRefs: refs,
	}
}

func mergeRefs(dst map[string]TypeIdentifierRef, src map[string]TypeIdentifierRef) {
	for name, ref := range src {
		dst[name] = ref
	}
}
