// Package stubparse parses the auxiliary textual-stub snippet format into
// metadata records: a small subset of Python stub syntax covering function
// and class definitions with annotations, decorators, literal defaults,
// imports, and type aliases. It exists so hand-written signature overrides
// can feed the same registry as generated metadata.
package stubparse

import "fmt"

// TokenKind enumerates the lexical vocabulary of the stub subset.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenIndent
	TokenDedent
	TokenIdent
	TokenNumber
	TokenString
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenComma
	TokenEquals
	TokenArrow
	TokenStar
	TokenDoubleStar
	TokenSlash
	TokenAt
	TokenDot
	TokenPipe
	TokenMinus
	TokenEllipsis
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenNewline:
		return "newline"
	case TokenIndent:
		return "indent"
	case TokenDedent:
		return "dedent"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenEquals:
		return "'='"
	case TokenArrow:
		return "'->'"
	case TokenStar:
		return "'*'"
	case TokenDoubleStar:
		return "'**'"
	case TokenSlash:
		return "'/'"
	case TokenAt:
		return "'@'"
	case TokenDot:
		return "'.'"
	case TokenPipe:
		return "'|'"
	case TokenMinus:
		return "'-'"
	case TokenEllipsis:
		return "'...'"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexeme with its source location. Text holds the raw source
// for identifiers and numbers; Value holds the decoded content of string
// literals. Offset/End delimit the raw source span.
type Token struct {
	Kind   TokenKind
	Text   string
	Value  string
	Line   int
	Offset int
	End    int
}
