package docgen

import (
	"strings"

	"github.com/example/pystub-gen/pkg/pytype"
)

// TypeRenderer turns TypeInfo values into display-ready TypeExpr trees:
// the expression is parsed into union/generic/simple structure, display
// prefixes are stripped, and package-local identifiers get resolved link
// targets.
type TypeRenderer struct {
	links       *LinkResolver
	packageName string
}

// NewTypeRenderer creates a renderer for the given package.
func NewTypeRenderer(links *LinkResolver, packageName string) *TypeRenderer {
	return &TypeRenderer{links: links, packageName: packageName}
}

// Render produces the TypeExpr for a type as seen from currentModule.
func (tr *TypeRenderer) Render(t pytype.TypeInfo, currentModule string) *TypeExpr {
	if t.IsNoReturn() {
		return nil
	}
	toks := meaningful(pytype.Tokenize(t.Name))
	expr := tr.renderTokens(toks, t.TypeRefs, currentModule)
	return &expr
}

func meaningful(toks []pytype.Token) []pytype.Token {
	out := toks[:0:0]
	for _, t := range toks {
		if t.Kind != pytype.TokWhitespace {
			out = append(out, t)
		}
	}
	return out
}

func (tr *TypeRenderer) renderTokens(toks []pytype.Token, refs map[string]pytype.TypeIdentifierRef, current string) TypeExpr {
	text := StripDisplayPrefixes(reassemble(toks), tr.packageName)

	// Union: split on top-level pipes.
	if arms := splitTop(toks, pytype.TokPipe); len(arms) > 1 {
		expr := TypeExpr{Text: text}
		for _, arm := range arms {
			expr.Union = append(expr.Union, tr.renderTokens(arm, refs, current))
		}
		return expr
	}

	// Generic: base followed by one bracketed argument list.
	if len(toks) > 2 &&
		(toks[0].Kind == pytype.TokIdent || toks[0].Kind == pytype.TokDottedPath) &&
		toks[1].Kind == pytype.TokOpenBracket &&
		toks[len(toks)-1].Kind == pytype.TokCloseBracket {
		inner := toks[2 : len(toks)-1]
		expr := TypeExpr{
			Text: text,
			Base: StripDisplayPrefixes(toks[0].Text, tr.packageName),
		}
		for _, arg := range splitTop(inner, pytype.TokComma) {
			if len(arg) == 0 {
				continue
			}
			expr.Args = append(expr.Args, tr.renderTokens(arg, refs, current))
		}
		expr.Link = tr.linkFor(toks[0], refs, current)
		return expr
	}

	expr := TypeExpr{Text: text}
	if len(toks) == 1 {
		expr.Link = tr.linkFor(toks[0], refs, current)
	}
	return expr
}

// linkFor resolves a link target for the leading identifier of a type,
// when it names something package-local. Unresolvable references degrade
// to unlinked text.
func (tr *TypeRenderer) linkFor(tok pytype.Token, refs map[string]pytype.TypeIdentifierRef, current string) *LinkTarget {
	var fqn string
	switch tok.Kind {
	case pytype.TokIdent:
		ref, ok := refs[tok.Text]
		if !ok {
			return nil
		}
		module, named := ref.Module.Named()
		if !named {
			return nil
		}
		fqn = module + "." + tok.Text
	case pytype.TokDottedPath:
		if !strings.HasPrefix(tok.Text, tr.packageName+".") {
			return nil
		}
		fqn = tok.Text
	default:
		return nil
	}
	target, ok := tr.links.ResolveLink(fqn, current)
	if !ok {
		return nil
	}
	return &target
}

// splitTop splits a token slice on a separator kind appearing at bracket
// depth zero.
func splitTop(toks []pytype.Token, sep pytype.TokKind) [][]pytype.Token {
	var out [][]pytype.Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Kind {
		case pytype.TokOpenBracket:
			depth++
		case pytype.TokCloseBracket:
			depth--
		case sep:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}

// reassemble renders tokens back to normalized source text: commas take a
// trailing space, pipes are spaced, everything else joins tightly.
func reassemble(toks []pytype.Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind {
		case pytype.TokComma:
			b.WriteString(", ")
		case pytype.TokPipe:
			b.WriteString(" | ")
		default:
			b.WriteString(t.String())
		}
	}
	return b.String()
}
