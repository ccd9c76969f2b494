package stubparse

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/example/pystub-gen/pkg/meta"
	"github.com/example/pystub-gen/pkg/pytype"
)

// ParseFunction parses a snippet that must contain exactly one top-level
// function definition. Zero or several definitions is an authoring error,
// never a silent pick-first.
func ParseFunction(src string, lookup NativeLookup) (*meta.FunctionRecord, error) {
	s, err := parseSnippet(src, lookup)
	if err != nil {
		return nil, err
	}
	if len(s.classes) > 0 {
		return nil, errors.Newf("expected a function definition, found class %q", s.classes[0].name)
	}
	if len(s.functions) != 1 {
		return nil, errors.Newf("expected exactly one function definition, found %d", len(s.functions))
	}
	rec := s.functions[0]
	return &rec, nil
}

// ParseMethods parses a snippet that must contain exactly one class
// definition and returns its members as a method-group record attached to
// the given identity token.
func ParseMethods(src string, id meta.TypeID, lookup NativeLookup) (*meta.MethodGroupRecord, error) {
	s, err := parseSnippet(src, lookup)
	if err != nil {
		return nil, err
	}
	if len(s.classes) != 1 {
		return nil, errors.Newf("expected exactly one class definition, found %d", len(s.classes))
	}
	group := s.classes[0].group
	group.ID = id
	return &group, nil
}

// ParseTypeAliases parses a snippet of type-alias statements, in either
// the legacy annotated form or the modern type-statement form, placed in
// the given module.
func ParseTypeAliases(src, module string, lookup NativeLookup) ([]meta.TypeAliasRecord, error) {
	s, err := parseSnippet(src, lookup)
	if err != nil {
		return nil, err
	}
	if len(s.functions) > 0 || len(s.classes) > 0 {
		return nil, errors.Newf("expected only type aliases in snippet")
	}
	if len(s.aliases) == 0 {
		return nil, errors.Newf("no type alias found in snippet")
	}
	out := make([]meta.TypeAliasRecord, len(s.aliases))
	for i, a := range s.aliases {
		a.Module = module
		out[i] = a
	}
	return out, nil
}

// ParseTypeExpr converts a standalone annotation expression into its type
// model, resolving native-type markers through lookup.
func ParseTypeExpr(expr string, lookup NativeLookup) (pytype.TypeInfo, error) {
	return typeFromExpr(expr, 1, newImportEnv(), lookup)
}

type parsedClass struct {
	name  string
	doc   string
	group meta.MethodGroupRecord
}

type snippet struct {
	functions []meta.FunctionRecord
	classes   []parsedClass
	aliases   []meta.TypeAliasRecord
}

type parser struct {
	src    string
	toks   []Token
	pos    int
	env    *importEnv
	lookup NativeLookup
}

func parseSnippet(src string, lookup NativeLookup) (*snippet, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, env: newImportEnv(), lookup: lookup}
	return p.parseTop()
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.Kind == TokenIdent && t.Text == kw
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.next()
	if t.Kind != kind {
		return t, errors.Newf("line %d: expected %s, found %s", t.Line, kind, t.Kind)
	}
	return t, nil
}

func (p *parser) parseTop() (*snippet, error) {
	s := &snippet{}
	for {
		t := p.peek()
		switch {
		case t.Kind == TokenEOF:
			return s, nil
		case t.Kind == TokenNewline:
			p.next()
		case p.atKeyword("import"):
			if err := p.parseImport(); err != nil {
				return nil, err
			}
		case p.atKeyword("from"):
			if err := p.parseFrom(); err != nil {
				return nil, err
			}
		case p.atKeyword("class"):
			c, err := p.parseClass()
			if err != nil {
				return nil, err
			}
			s.classes = append(s.classes, *c)
		case t.Kind == TokenAt || p.atKeyword("def") || p.atKeyword("async"):
			fn, err := p.parseTopLevelDef()
			if err != nil {
				return nil, err
			}
			s.functions = append(s.functions, *fn)
		case p.atKeyword("type") && p.lookaheadIsModernAlias():
			a, err := p.parseModernAlias()
			if err != nil {
				return nil, err
			}
			s.aliases = append(s.aliases, *a)
		case t.Kind == TokenIdent:
			a, err := p.parseLegacyAlias()
			if err != nil {
				return nil, err
			}
			s.aliases = append(s.aliases, *a)
		default:
			return nil, errors.Newf("line %d: unexpected %s at top level", t.Line, t.Kind)
		}
	}
}

func (p *parser) lookaheadIsModernAlias() bool {
	// type Name = ...
	return p.pos+2 < len(p.toks) &&
		p.toks[p.pos+1].Kind == TokenIdent &&
		p.toks[p.pos+2].Kind == TokenEquals
}

func (p *parser) parseImport() error {
	p.next() // import
	path, err := p.parseDottedName()
	if err != nil {
		return err
	}
	p.env.addModule(path)
	_, err = p.expect(TokenNewline)
	return err
}

func (p *parser) parseFrom() error {
	p.next() // from
	path, err := p.parseDottedName()
	if err != nil {
		return err
	}
	kw, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	if kw.Text != "import" {
		return errors.Newf("line %d: expected 'import' in from-statement", kw.Line)
	}
	for {
		name, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		p.env.addName(path, name.Text)
		if p.peek().Kind != TokenComma {
			break
		}
		p.next()
	}
	_, err = p.expect(TokenNewline)
	return err
}

func (p *parser) parseDottedName() (string, error) {
	first, err := p.expect(TokenIdent)
	if err != nil {
		return "", err
	}
	parts := []string{first.Text}
	for p.peek().Kind == TokenDot {
		p.next()
		seg, err := p.expect(TokenIdent)
		if err != nil {
			return "", err
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, "."), nil
}

// decorators accumulated before a def or class member.
type decorators struct {
	overload   bool
	static     bool
	classM     bool
	property   bool
	setterFor  string
	deprecated *meta.DeprecatedRecord
}

func (p *parser) parseDecorators() (decorators, error) {
	var d decorators
	for p.peek().Kind == TokenAt {
		at := p.next()
		name, err := p.parseDottedName()
		if err != nil {
			return d, err
		}
		switch name {
		case "overload", "typing.overload":
			d.overload = true
		case "staticmethod":
			d.static = true
		case "classmethod":
			d.classM = true
		case "property", "builtins.property":
			d.property = true
		case "deprecated", "typing_extensions.deprecated":
			dep := &meta.DeprecatedRecord{}
			if p.peek().Kind == TokenLParen {
				p.next()
				msg, err := p.expect(TokenString)
				if err != nil {
					return d, err
				}
				dep.Note = msg.Value
				if _, err := p.expect(TokenRParen); err != nil {
					return d, err
				}
			}
			d.deprecated = dep
		default:
			if strings.HasSuffix(name, ".setter") {
				d.setterFor = strings.TrimSuffix(name, ".setter")
				break
			}
			return d, errors.Newf("line %d: unsupported decorator @%s", at.Line, name)
		}
		if _, err := p.expect(TokenNewline); err != nil {
			return d, err
		}
	}
	return d, nil
}

// parsedDef is one def statement before conversion to a record.
type parsedDef struct {
	name    string
	params  []meta.ParamRecord
	ret     pytype.Thunk
	doc     string
	isAsync bool
	deco    decorators
	line    int
}

func (p *parser) parseTopLevelDef() (*meta.FunctionRecord, error) {
	deco, err := p.parseDecorators()
	if err != nil {
		return nil, err
	}
	if deco.static || deco.classM || deco.property || deco.setterFor != "" {
		return nil, errors.Newf("method decorators are not valid on module-level functions")
	}
	def, err := p.parseDef(deco, false)
	if err != nil {
		return nil, err
	}
	return &meta.FunctionRecord{
		Name:       def.name,
		Params:     def.params,
		Return:     def.ret,
		Doc:        def.doc,
		IsAsync:    def.isAsync,
		IsOverload: def.deco.overload,
		Deprecated: def.deco.deprecated,
	}, nil
}

// parseDef parses `[async] def name(params) [-> type]:` plus its body.
// In method context the leading self/cls receiver is stripped.
func (p *parser) parseDef(deco decorators, method bool) (*parsedDef, error) {
	isAsync := false
	if p.atKeyword("async") {
		p.next()
		isAsync = true
	}
	kw, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if kw.Text != "def" {
		return nil, errors.Newf("line %d: expected 'def', found %q", kw.Line, kw.Text)
	}
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if method && len(params) > 0 &&
		(params[0].Name == "self" || params[0].Name == "cls") {
		params = params[1:]
	}
	var ret pytype.Thunk
	if p.peek().Kind == TokenArrow {
		p.next()
		span, err := p.readExprSpan(func(t Token) bool { return t.Kind == TokenColon })
		if err != nil {
			return nil, err
		}
		t, err := typeFromExpr(span, name.Line, p.env, p.lookup)
		if err != nil {
			return nil, err
		}
		ret = func() pytype.TypeInfo { return t }
	} else {
		ret = pytype.None_
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	doc, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &parsedDef{
		name:    name.Text,
		params:  params,
		ret:     ret,
		doc:     doc,
		isAsync: isAsync,
		deco:    deco,
		line:    name.Line,
	}, nil
}

// parseParams consumes everything up to and including the closing paren.
func (p *parser) parseParams() ([]meta.ParamRecord, error) {
	var out []meta.ParamRecord
	kind := meta.PositionalOrKeyword
	for {
		t := p.peek()
		switch t.Kind {
		case TokenRParen:
			p.next()
			return out, nil
		case TokenComma:
			p.next()
		case TokenSlash:
			p.next()
			// Everything seen so far was positional-only.
			for i := range out {
				if out[i].Kind == meta.PositionalOrKeyword {
					out[i].Kind = meta.PositionalOnly
				}
			}
		case TokenStar:
			p.next()
			if p.peek().Kind == TokenIdent {
				rec, err := p.parseOneParam(meta.VarPositional)
				if err != nil {
					return nil, err
				}
				out = append(out, *rec)
			}
			kind = meta.KeywordOnly
		case TokenDoubleStar:
			p.next()
			rec, err := p.parseOneParam(meta.VarKeyword)
			if err != nil {
				return nil, err
			}
			out = append(out, *rec)
		case TokenIdent:
			rec, err := p.parseOneParam(kind)
			if err != nil {
				return nil, err
			}
			out = append(out, *rec)
		default:
			return nil, errors.Newf("line %d: unexpected %s in parameter list", t.Line, t.Kind)
		}
	}
}

func (p *parser) parseOneParam(kind meta.ParameterKind) (*meta.ParamRecord, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	rec := &meta.ParamRecord{Name: name.Text, Kind: kind, Type: pytype.Any}
	if p.peek().Kind == TokenColon {
		p.next()
		span, err := p.readExprSpan(func(t Token) bool {
			return t.Kind == TokenComma || t.Kind == TokenRParen || t.Kind == TokenEquals
		})
		if err != nil {
			return nil, err
		}
		typ, err := typeFromExpr(span, name.Line, p.env, p.lookup)
		if err != nil {
			return nil, err
		}
		rec.Type = func() pytype.TypeInfo { return typ }
	}
	if p.peek().Kind == TokenEquals {
		p.next()
		expr, err := p.parseLiteralDefault()
		if err != nil {
			return nil, err
		}
		rec.Default = meta.DefaultExpr(expr)
	}
	return rec, nil
}

// parseLiteralDefault accepts the supported default literals: None, bools,
// numbers (including negative), strings, and ellipsis.
func (p *parser) parseLiteralDefault() (string, error) {
	t := p.next()
	switch t.Kind {
	case TokenIdent:
		switch t.Text {
		case "None", "True", "False":
			return t.Text, nil
		}
		return "", errors.Newf("line %d: unsupported default value %q", t.Line, t.Text)
	case TokenNumber:
		return t.Text, nil
	case TokenMinus:
		num, err := p.expect(TokenNumber)
		if err != nil {
			return "", err
		}
		return "-" + num.Text, nil
	case TokenString:
		return strconv.Quote(t.Value), nil
	case TokenEllipsis:
		return "...", nil
	}
	return "", errors.Newf("line %d: unsupported default value (%s)", t.Line, t.Kind)
}

// readExprSpan consumes tokens until stop matches at bracket depth zero
// and returns the covered raw source text.
func (p *parser) readExprSpan(stop func(Token) bool) (string, error) {
	start := p.peek()
	if start.Kind == TokenNewline || start.Kind == TokenEOF {
		return "", errors.Newf("line %d: expected expression", start.Line)
	}
	depth := 0
	end := start.Offset
	for {
		t := p.peek()
		if t.Kind == TokenEOF || t.Kind == TokenNewline {
			if depth != 0 {
				return "", errors.Newf("line %d: unbalanced brackets in expression", t.Line)
			}
			break
		}
		if depth == 0 && stop(t) {
			break
		}
		switch t.Kind {
		case TokenLParen, TokenLBracket:
			depth++
		case TokenRParen, TokenRBracket:
			if depth == 0 {
				return "", errors.Newf("line %d: unbalanced brackets in expression", t.Line)
			}
			depth--
		}
		end = t.End
		p.next()
	}
	if end <= start.Offset {
		return "", errors.Newf("line %d: expected expression", start.Line)
	}
	return p.src[start.Offset:end], nil
}

// parseBody consumes a def body: inline `...`, or an indented block with
// an optional docstring followed by optional ellipsis lines.
func (p *parser) parseBody() (string, error) {
	if p.peek().Kind == TokenEllipsis {
		p.next()
		_, err := p.expect(TokenNewline)
		return "", err
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return "", err
	}
	if _, err := p.expect(TokenIndent); err != nil {
		return "", err
	}
	doc := ""
	if p.peek().Kind == TokenString {
		doc = p.next().Value
		if _, err := p.expect(TokenNewline); err != nil {
			return "", err
		}
	}
	for {
		t := p.peek()
		switch t.Kind {
		case TokenEllipsis:
			p.next()
		case TokenIdent:
			if t.Text == "pass" {
				p.next()
				continue
			}
			return "", errors.Newf("line %d: unexpected statement in stub body", t.Line)
		case TokenNewline:
			p.next()
		case TokenDedent:
			p.next()
			return doc, nil
		case TokenEOF:
			return doc, nil
		default:
			return "", errors.Newf("line %d: unexpected %s in stub body", t.Line, t.Kind)
		}
	}
}

func (p *parser) parseClass() (*parsedClass, error) {
	p.next() // class
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == TokenLParen {
		// Base list is accepted but carries no metadata here; the primary
		// class record owns the bases.
		depth := 0
		for {
			t := p.next()
			if t.Kind == TokenLParen {
				depth++
			}
			if t.Kind == TokenRParen {
				depth--
				if depth == 0 {
					break
				}
			}
			if t.Kind == TokenEOF {
				return nil, errors.Newf("line %d: unterminated base list", name.Line)
			}
		}
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	c := &parsedClass{name: name.Text}

	if p.peek().Kind == TokenEllipsis {
		p.next()
		_, err := p.expect(TokenNewline)
		return c, err
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIndent); err != nil {
		return nil, err
	}
	if p.peek().Kind == TokenString {
		c.doc = p.next().Value
		if _, err := p.expect(TokenNewline); err != nil {
			return nil, err
		}
	}
	for {
		t := p.peek()
		switch {
		case t.Kind == TokenDedent:
			p.next()
			return c, nil
		case t.Kind == TokenEOF:
			return c, nil
		case t.Kind == TokenNewline, t.Kind == TokenEllipsis:
			p.next()
		case t.Kind == TokenAt || p.atKeyword("def") || p.atKeyword("async"):
			if err := p.parseClassMember(c); err != nil {
				return nil, err
			}
		case t.Kind == TokenIdent:
			if err := p.parseAttr(c); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Newf("line %d: unexpected %s in class body", t.Line, t.Kind)
		}
	}
}

func (p *parser) parseClassMember(c *parsedClass) error {
	deco, err := p.parseDecorators()
	if err != nil {
		return err
	}
	def, err := p.parseDef(deco, true)
	if err != nil {
		return err
	}
	member := meta.MemberRecord{
		Name:       def.name,
		Doc:        def.doc,
		Deprecated: def.deco.deprecated,
	}
	switch {
	case def.deco.property:
		member.Type = def.ret
		c.group.Getters = append(c.group.Getters, member)
		return nil
	case def.deco.setterFor != "":
		if def.deco.setterFor != def.name {
			return errors.Newf(
				"line %d: setter decorator @%s.setter does not match method %q",
				def.line, def.deco.setterFor, def.name,
			)
		}
		if len(def.params) != 1 {
			return errors.Newf("line %d: setter %q must take exactly one value parameter", def.line, def.name)
		}
		member.Type = def.params[0].Type
		c.group.Setters = append(c.group.Setters, member)
		return nil
	}

	kind := meta.InstanceMethod
	switch {
	case def.name == "__new__":
		kind = meta.NewMethod
	case def.deco.static:
		kind = meta.StaticMethod
	case def.deco.classM:
		kind = meta.ClassMethod
	}
	c.group.Methods = append(c.group.Methods, meta.MethodRecord{
		Name:       def.name,
		Params:     def.params,
		Return:     def.ret,
		Doc:        def.doc,
		Kind:       kind,
		IsAsync:    def.isAsync,
		IsOverload: def.deco.overload,
		Deprecated: def.deco.deprecated,
	})
	return nil
}

func (p *parser) parseAttr(c *parsedClass) error {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return err
	}
	span, err := p.readExprSpan(func(t Token) bool { return t.Kind == TokenEquals })
	if err != nil {
		return err
	}
	typ, err := typeFromExpr(span, name.Line, p.env, p.lookup)
	if err != nil {
		return err
	}
	rec := meta.MemberRecord{
		Name: name.Text,
		Type: func() pytype.TypeInfo { return typ },
	}
	if p.peek().Kind == TokenEquals {
		p.next()
		expr, err := p.parseLiteralDefault()
		if err != nil {
			return err
		}
		rec.Default = meta.DefaultExpr(expr)
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return err
	}
	c.group.Attrs = append(c.group.Attrs, rec)
	return nil
}

func (p *parser) parseModernAlias() (*meta.TypeAliasRecord, error) {
	p.next() // type
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEquals); err != nil {
		return nil, err
	}
	return p.finishAlias(name)
}

func (p *parser) parseLegacyAlias() (*meta.TypeAliasRecord, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	marker, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if marker != "TypeAlias" && marker != "typing.TypeAlias" {
		return nil, errors.Newf(
			"line %d: expected a TypeAlias annotation on %q, found %q",
			name.Line, name.Text, marker,
		)
	}
	if _, err := p.expect(TokenEquals); err != nil {
		return nil, err
	}
	return p.finishAlias(name)
}

func (p *parser) finishAlias(name Token) (*meta.TypeAliasRecord, error) {
	span, err := p.readExprSpan(func(Token) bool { return false })
	if err != nil {
		return nil, err
	}
	typ, err := typeFromExpr(span, name.Line, p.env, p.lookup)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return nil, err
	}
	return &meta.TypeAliasRecord{
		Name: name.Text,
		Type: func() pytype.TypeInfo { return typ },
	}, nil
}
