package stubparse

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/pytype"
)

// NativeLookup resolves the token of a native-type marker into the type it
// stands for. The marker lets an otherwise-generic annotation embed a type
// only the native layer knows how to spell.
type NativeLookup func(token string) (pytype.TypeInfo, bool)

// nativeMarkerPath is the dotted path introducing a native-type reference
// inside an annotation, e.g. pystub.NativeType["Duration"]. Markers may
// appear at any nesting depth, including inside generic arguments.
const nativeMarkerPath = "pystub.NativeType"

// importEnv tracks the snippet's import statements so annotations can be
// resolved the way the snippet author wrote them.
type importEnv struct {
	modules map[string]struct{} // import typing
	byName  map[string]string   // from typing import Sequence -> typing
}

func newImportEnv() *importEnv {
	return &importEnv{modules: map[string]struct{}{}, byName: map[string]string{}}
}

func (e *importEnv) addModule(path string) { e.modules[path] = struct{}{} }

func (e *importEnv) addName(path, name string) { e.byName[name] = path }

func (e *importEnv) source(name string) (string, bool) {
	path, ok := e.byName[name]
	return path, ok
}

// typeFromExpr converts an annotation expression into a TypeInfo. Bare
// names imported via `from X import Y` are rewritten to their dotted form
// so the rendered stub never depends on the snippet's import style; dotted
// paths contribute their module to the import set; native-type markers are
// resolved through lookup wherever they appear, with the looked-up type's
// imports and identifier references merged into the result. Unknown bare
// names pass through unqualified.
func typeFromExpr(expr string, line int, env *importEnv, lookup NativeLookup) (pytype.TypeInfo, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return pytype.TypeInfo{}, errors.Newf("line %d: empty type annotation", line)
	}

	toks := pytype.Tokenize(expr)
	imports := pytype.NewImportSet()
	refs := map[string]pytype.TypeIdentifierRef{}
	var b strings.Builder
	for i := 0; i < len(toks); {
		tok := toks[i]
		switch tok.Kind {
		case pytype.TokIdent:
			if path, ok := env.source(tok.Text); ok {
				// Rewrite to the dotted form the import makes available.
				b.WriteString(path)
				b.WriteByte('.')
				b.WriteString(tok.Text)
				imports.Add(path)
				i++
				continue
			}
			resolved := pytype.FromName(tok.Text)
			b.WriteString(resolved.Name)
			imports.Union(resolved.Import)
			i++
		case pytype.TokDottedPath:
			if tok.Text == nativeMarkerPath {
				t, next, err := resolveNativeMarker(toks, i, line, lookup)
				if err != nil {
					return pytype.TypeInfo{}, err
				}
				if i == 0 && next == len(toks) {
					// The whole annotation is one marker: keep the
					// looked-up type intact, source module included.
					return t, nil
				}
				b.WriteString(t.Name)
				imports.Union(t.Import)
				for name, ref := range t.TypeRefs {
					refs[name] = ref
				}
				i = next
				continue
			}
			if module := modulePrefix(tok.Text, env); module != "" {
				imports.Add(module)
			}
			b.WriteString(tok.Text)
			i++
		default:
			b.WriteString(tok.String())
			i++
		}
	}
	return pytype.TypeInfo{Name: b.String(), Import: imports, TypeRefs: refs}, nil
}

// resolveNativeMarker consumes a pystub.NativeType["Token"] subscript
// starting at the marker path token and returns the type it stands for,
// along with the index of the first token past the closing bracket.
func resolveNativeMarker(toks []pytype.Token, i, line int, lookup NativeLookup) (pytype.TypeInfo, int, error) {
	j := i + 1
	skipSpace := func() {
		for j < len(toks) && toks[j].Kind == pytype.TokWhitespace {
			j++
		}
	}
	skipSpace()
	if j >= len(toks) || toks[j].Kind != pytype.TokOpenBracket {
		return pytype.TypeInfo{}, 0, errors.Newf("line %d: malformed native-type marker", line)
	}
	j++
	skipSpace()
	if j >= len(toks) || toks[j].Kind != pytype.TokString {
		return pytype.TypeInfo{}, 0, errors.Newf("line %d: native-type marker requires a quoted token", line)
	}
	token := toks[j].Text
	j++
	skipSpace()
	if j >= len(toks) || toks[j].Kind != pytype.TokCloseBracket {
		return pytype.TypeInfo{}, 0, errors.Newf("line %d: malformed native-type marker %q", line, token)
	}
	j++
	if lookup == nil {
		return pytype.TypeInfo{}, 0, errors.Newf("line %d: native-type marker %q but no lookup provided", line, token)
	}
	t, ok := lookup(token)
	if !ok {
		return pytype.TypeInfo{}, 0, errors.Newf("line %d: unknown native type %q", line, token)
	}
	return t, j, nil
}

// modulePrefix returns the module a dotted path needs imported: everything
// up to the final component when the head is a known or imported module.
func modulePrefix(path string, env *importEnv) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	prefix := path[:i]
	head := prefix
	if j := strings.IndexByte(prefix, '.'); j >= 0 {
		head = prefix[:j]
	}
	if _, ok := env.modules[prefix]; ok {
		return prefix
	}
	if _, ok := env.modules[head]; ok {
		return prefix
	}
	switch head {
	case "typing", "typing_extensions", "collections", "builtins", "os", "pathlib", "datetime":
		return prefix
	}
	return ""
}
