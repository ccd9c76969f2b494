package stubparse

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// lexer produces the token stream for a snippet, synthesizing Indent and
// Dedent tokens from leading whitespace the way Python's grammar does.
// Newlines inside brackets are implicit line joins and emit nothing.
type lexer struct {
	src    string
	pos    int
	line   int
	indent []int
	depth  int
	tokens []Token
}

// lex tokenizes the whole snippet up front. Parsing works over the slice;
// snippets are small so there is no point streaming.
func lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, indent: []int{0}}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	atLineStart := true
	for l.pos < len(l.src) {
		if atLineStart && l.depth == 0 {
			blank, err := l.handleIndent()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
			atLineStart = false
			continue
		}
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++
			if l.depth == 0 {
				l.emit(Token{Kind: TokenNewline, Line: l.line - 1})
				atLineStart = true
			}
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '"' || c == '\'':
			if err := l.scanString(); err != nil {
				return err
			}
		case isIdentStart(c):
			if err := l.scanIdent(); err != nil {
				return err
			}
		case c >= '0' && c <= '9':
			l.scanNumber()
		default:
			if err := l.scanOperator(); err != nil {
				return err
			}
		}
	}
	if l.depth > 0 {
		return errors.Newf("line %d: unclosed bracket at end of input", l.line)
	}
	if len(l.tokens) > 0 && l.tokens[len(l.tokens)-1].Kind != TokenNewline {
		l.emit(Token{Kind: TokenNewline, Line: l.line})
	}
	for len(l.indent) > 1 {
		l.indent = l.indent[:len(l.indent)-1]
		l.emit(Token{Kind: TokenDedent, Line: l.line})
	}
	l.emit(Token{Kind: TokenEOF, Line: l.line})
	return nil
}

// handleIndent measures the leading whitespace of a logical line and emits
// Indent/Dedent tokens. Blank and comment-only lines are skipped entirely.
func (l *lexer) handleIndent() (blank bool, err error) {
	start := l.pos
	width := 0
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			goto measured
		}
		l.pos++
	}
measured:
	if l.pos >= len(l.src) {
		return true, nil
	}
	if l.src[l.pos] == '\n' {
		l.pos++
		l.line++
		return true, nil
	}
	if l.src[l.pos] == '#' {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return true, nil
	}
	current := l.indent[len(l.indent)-1]
	switch {
	case width > current:
		l.indent = append(l.indent, width)
		l.emit(Token{Kind: TokenIndent, Line: l.line, Offset: start})
	case width < current:
		for len(l.indent) > 1 && l.indent[len(l.indent)-1] > width {
			l.indent = l.indent[:len(l.indent)-1]
			l.emit(Token{Kind: TokenDedent, Line: l.line, Offset: start})
		}
		if l.indent[len(l.indent)-1] != width {
			return false, errors.Newf("line %d: inconsistent indentation", l.line)
		}
	}
	return false, nil
}

func (l *lexer) emit(t Token) { l.tokens = append(l.tokens, t) }

func (l *lexer) scanIdent() error {
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	// A quote directly after r/b/rb is a prefixed string literal.
	if (text == "r" || text == "b" || text == "rb") && l.pos < len(l.src) &&
		(l.src[l.pos] == '"' || l.src[l.pos] == '\'') {
		l.pos = start
		return l.scanString()
	}
	l.emit(Token{Kind: TokenIdent, Text: text, Line: l.line, Offset: start, End: l.pos})
	return nil
}

func (l *lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'e' || c == 'E' {
			l.pos++
			continue
		}
		if (c == '+' || c == '-') && l.pos > start &&
			(l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.pos++
			continue
		}
		break
	}
	l.emit(Token{Kind: TokenNumber, Text: l.src[start:l.pos], Line: l.line, Offset: start, End: l.pos})
}

func (l *lexer) scanString() error {
	start := l.pos
	for l.pos < len(l.src) && isIdentStart(l.src[l.pos]) {
		l.pos++ // string prefix (r, b, rb)
	}
	quote := l.src[l.pos]
	triple := strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3))
	if triple {
		l.pos += 3
		end := strings.Index(l.src[l.pos:], strings.Repeat(string(quote), 3))
		if end < 0 {
			return errors.Newf("line %d: unterminated triple-quoted string", l.line)
		}
		value := l.src[l.pos : l.pos+end]
		l.line += strings.Count(value, "\n")
		l.pos += end + 3
		l.emit(Token{Kind: TokenString, Value: value, Line: l.line, Offset: start, End: l.pos})
		return nil
	}
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			l.emit(Token{Kind: TokenString, Value: b.String(), Line: l.line, Offset: start, End: l.pos})
			return nil
		}
		if c == '\n' {
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			next := l.src[l.pos+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return errors.Newf("line %d: unterminated string literal", l.line)
}

func (l *lexer) scanOperator() error {
	start := l.pos
	emitOp := func(kind TokenKind, width int) {
		l.pos += width
		l.emit(Token{Kind: kind, Text: l.src[start:l.pos], Line: l.line, Offset: start, End: l.pos})
	}
	rest := l.src[l.pos:]
	switch {
	case strings.HasPrefix(rest, "..."):
		emitOp(TokenEllipsis, 3)
	case strings.HasPrefix(rest, "->"):
		emitOp(TokenArrow, 2)
	case strings.HasPrefix(rest, "**"):
		emitOp(TokenDoubleStar, 2)
	default:
		switch rest[0] {
		case '(':
			l.depth++
			emitOp(TokenLParen, 1)
		case ')':
			l.depth--
			emitOp(TokenRParen, 1)
		case '[':
			l.depth++
			emitOp(TokenLBracket, 1)
		case ']':
			l.depth--
			emitOp(TokenRBracket, 1)
		case ':':
			emitOp(TokenColon, 1)
		case ',':
			emitOp(TokenComma, 1)
		case '=':
			emitOp(TokenEquals, 1)
		case '*':
			emitOp(TokenStar, 1)
		case '/':
			emitOp(TokenSlash, 1)
		case '@':
			emitOp(TokenAt, 1)
		case '.':
			emitOp(TokenDot, 1)
		case '|':
			emitOp(TokenPipe, 1)
		case '-':
			emitOp(TokenMinus, 1)
		default:
			return errors.Newf("line %d: unexpected character %q", l.line, rest[0])
		}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
