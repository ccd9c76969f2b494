package pytype

import "strings"

// TokKind represents the kind of token in a Python type expression.
type TokKind int

const (
	TokIdent TokKind = iota
	TokDottedPath
	TokOpenBracket
	TokCloseBracket
	TokComma
	TokPipe
	TokEllipsis
	TokString
	TokWhitespace
)

// Token is a single token of a type expression. Text holds the identifier,
// dotted path, string-literal content, or whitespace run; Bracket holds the
// bracket character for bracket tokens.
type Token struct {
	Kind    TokKind
	Text    string
	Bracket byte
}

// Tokenize splits a Python type expression into tokens: identifiers,
// dotted paths, brackets, commas, union pipes, ellipses, string literals
// (forward references), and preserved whitespace. Qualification operates on
// these tokens rather than raw text so that a bare identifier is never
// confused with a fragment of a dotted path.
func Tokenize(expr string) []Token {
	var toks []Token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			start := i
			for i < len(expr) && isSpace(expr[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokWhitespace, Text: expr[start:i]})
		case c == '[' || c == '(':
			toks = append(toks, Token{Kind: TokOpenBracket, Bracket: c})
			i++
		case c == ']' || c == ')':
			toks = append(toks, Token{Kind: TokCloseBracket, Bracket: c})
			i++
		case c == ',':
			toks = append(toks, Token{Kind: TokComma})
			i++
		case c == '|':
			toks = append(toks, Token{Kind: TokPipe})
			i++
		case c == '"' || c == '\'':
			lit, next := scanTypeString(expr, i)
			toks = append(toks, Token{Kind: TokString, Text: lit})
			i = next
		case c == '.':
			if strings.HasPrefix(expr[i:], "...") {
				toks = append(toks, Token{Kind: TokEllipsis})
				i += 3
			} else {
				// Stray dot outside a dotted path; drop it.
				i++
			}
		case isIdentStart(c):
			path, next := scanDottedPath(expr, i)
			kind := TokIdent
			if strings.ContainsRune(path, '.') {
				kind = TokDottedPath
			}
			toks = append(toks, Token{Kind: kind, Text: path})
			i = next
		default:
			i++
		}
	}
	return toks
}

// String reassembles the token into source text.
func (t Token) String() string {
	switch t.Kind {
	case TokOpenBracket, TokCloseBracket:
		return string(t.Bracket)
	case TokComma:
		return ","
	case TokPipe:
		return "|"
	case TokEllipsis:
		return "..."
	case TokString:
		return `"` + t.Text + `"`
	default:
		return t.Text
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func scanTypeString(s string, i int) (string, int) {
	quote := s[i]
	i++
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		if c == quote {
			i++
			break
		}
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

func scanDottedPath(s string, i int) (string, int) {
	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	// Extend through ".ident" segments, but not into an ellipsis.
	for i < len(s) && s[i] == '.' {
		if i+1 >= len(s) || !isIdentStart(s[i+1]) {
			break
		}
		i++
		for i < len(s) && isIdentChar(s[i]) {
			i++
		}
	}
	return s[start:i], i
}

// Qualifier rewrites bare identifiers inside type expressions so they are
// valid in a specific target module.
type Qualifier struct {
	targetModule string
}

// NewQualifier returns a Qualifier for the given target module.
func NewQualifier(targetModule string) *Qualifier {
	return &Qualifier{targetModule: targetModule}
}

// QualifyExpression rewrites expr for the qualifier's target module using
// the identifier references gathered during type construction. Identifiers
// defined in the target module, imported by name, or recognized as Python
// builtins stay bare; identifiers from other modules gain the trailing
// component of their defining module as a prefix. Dotted paths and string
// literals pass through unchanged.
func (q *Qualifier) QualifyExpression(expr string, refs map[string]TypeIdentifierRef) string {
	var b strings.Builder
	for _, tok := range Tokenize(expr) {
		if tok.Kind != TokIdent {
			b.WriteString(tok.String())
			continue
		}
		ref, ok := refs[tok.Text]
		if !ok || IsPythonBuiltin(tok.Text) {
			b.WriteString(tok.Text)
			continue
		}
		if ref.Kind == ImportByName {
			b.WriteString(tok.Text)
			continue
		}
		module, named := ref.Module.Named()
		if !named || module == q.targetModule {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(LastComponent(module))
		b.WriteByte('.')
		b.WriteString(tok.Text)
	}
	return b.String()
}
