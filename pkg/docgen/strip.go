package docgen

import (
	"strings"

	"github.com/example/pystub-gen/pkg/pytype"
)

// stdlibHeads are module heads whose qualification is noise in rendered
// documentation: `typing.Optional` reads better as `Optional`.
var stdlibHeads = map[string]struct{}{
	"typing":            {},
	"typing_extensions": {},
	"collections":       {},
	"abc":               {},
	"builtins":          {},
}

// StripDisplayPrefixes rewrites a type expression for display: stdlib
// qualifiers, the package-name head, and hidden (underscore) path segments
// are dropped from dotted paths, recursively through nested brackets.
func StripDisplayPrefixes(expr, packageName string) string {
	var b strings.Builder
	for _, tok := range pytype.Tokenize(expr) {
		if tok.Kind == pytype.TokDottedPath {
			b.WriteString(stripPath(tok.Text, packageName))
			continue
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

func stripPath(path, packageName string) string {
	parts := strings.Split(path, ".")
	for len(parts) > 1 {
		head := parts[0]
		_, stdlib := stdlibHeads[head]
		if stdlib || head == packageName || strings.HasPrefix(head, "_") {
			parts = parts[1:]
			continue
		}
		break
	}
	return strings.Join(parts, ".")
}
