// lexer.go: hand-written scanner for Lattice source.
package lattice

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	tEOF TokenType = iota
	tIllegal

	// Literals & identifiers
	tIdent
	tInt
	tFloat
	tString
	tInterpStart // opening segment of an interpolated string: "text${
	tInterpMid   // }text${
	tInterpEnd   // }text"

	// Punctuation
	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBracket
	tRBracket
	tComma
	tColon
	tColonColon
	tSemicolon

	// Operators
	tPlus
	tMinus
	tStar
	tSlash
	tPercent
	tAssign  // =
	tEq      // ==
	tNotEq   // !=
	tLess    // <
	tGreater // >
	tLessEq
	tGreaterEq
	tAnd  // &&
	tOr   // ||
	tBang // !
	tDot
	tDotDot
	tArrow    // ->
	tFatArrow // =>
	tPipe     // |
	tTilde    // ~
	tPlusEq
	tMinusEq
	tStarEq
	tSlashEq
	tPercentEq

	// Keywords
	tFlux
	tFix
	tLet
	tFn
	tStruct
	tIf
	tElse
	tFor
	tIn
	tWhile
	tLoop
	tReturn
	tBreak
	tContinue
	tSpawn
	tScope
	tTrue
	tFalse
	tNil
	tClone
	tPrint
	tTry
	tCatch
	tMatch
	tFreeze
	tThaw
	tAnneal
	tCrystallize
	tSublimate
	tImport
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // parsed value for literals
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"flux":        tFlux,
	"fix":         tFix,
	"let":         tLet,
	"fn":          tFn,
	"struct":      tStruct,
	"if":          tIf,
	"else":        tElse,
	"for":         tFor,
	"in":          tIn,
	"while":       tWhile,
	"loop":        tLoop,
	"return":      tReturn,
	"break":       tBreak,
	"continue":    tContinue,
	"spawn":       tSpawn,
	"scope":       tScope,
	"true":        tTrue,
	"false":       tFalse,
	"nil":         tNil,
	"clone":       tClone,
	"print":       tPrint,
	"try":         tTry,
	"catch":       tCatch,
	"match":       tMatch,
	"freeze":      tFreeze,
	"thaw":        tThaw,
	"anneal":      tAnneal,
	"crystallize": tCrystallize,
	"sublimate":   tSublimate,
	"import":      tImport,
}

// Lexer scans a Lattice source string into tokens.
type Lexer struct {
	src    string
	start  int
	cur    int
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) match(expected byte) bool {
	if b, ok := l.peek(); ok && b == expected {
		l.advance()
		return true
	}
	return false
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// skipWhitespace eats spaces, line comments (//) and nestable block
// comments (/* */).
func (l *Lexer) skipWhitespace() error {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
		case '/':
			b2, ok := l.peekN(1)
			if ok && b2 == '/' {
				for {
					b, ok := l.peek()
					if !ok || b == '\n' {
						break
					}
					l.advance()
				}
			} else if ok && b2 == '*' {
				l.advance()
				l.advance()
				depth := 1
				for depth > 0 {
					c, ok := l.advance()
					if !ok {
						return l.err("unterminated block comment")
					}
					if c == '/' {
						if b, ok := l.peek(); ok && b == '*' {
							l.advance()
							depth++
						}
					} else if c == '*' {
						if b, ok := l.peek(); ok && b == '/' {
							l.advance()
							depth--
						}
					}
				}
			} else {
				l.start = l.cur
				return nil
			}
		default:
			l.start = l.cur
			return nil
		}
		l.start = l.cur
	}
	return nil
}

// scanString handles both plain strings and ${...} interpolation. An
// interpolated string emits segment tokens with the embedded expression
// tokens lexed in between, and the parser pairs segments with
// sub-expressions.
func (l *Lexer) scanString() error {
	var out []byte
	segStart := tString // becomes tInterpStart once a ${ is seen
	for {
		ch, ok := l.advance()
		if !ok {
			return l.err("unterminated string")
		}
		if ch == '"' {
			if segStart == tString {
				l.addToken(tString, string(out))
			} else {
				l.addToken(tInterpEnd, string(out))
			}
			return nil
		}
		if ch == '\\' {
			esc, ok := l.advance()
			if !ok {
				return l.err("unfinished escape sequence")
			}
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '0':
				out = append(out, 0)
			case '$':
				out = append(out, '$')
			default:
				return l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		if ch == '$' {
			if b, ok := l.peek(); ok && b == '{' {
				l.advance() // consume '{'
				if segStart == tString {
					segStart = tInterpStart
				}
				l.addToken(segStart, string(out))
				out = out[:0]
				segStart = tInterpMid
				// lex the embedded expression up to the matching '}'
				depth := 1
				for depth > 0 {
					if err := l.skipWhitespace(); err != nil {
						return err
					}
					b, ok := l.peek()
					if !ok {
						return l.err("unterminated interpolation")
					}
					if b == '{' {
						depth++
					} else if b == '}' {
						depth--
						if depth == 0 {
							l.advance()
							l.start = l.cur
							break
						}
					}
					if err := l.scanToken(); err != nil {
						return err
					}
				}
				continue
			}
		}
		out = append(out, ch)
	}
}

func (l *Lexer) scanNumber() error {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	isFloat := false
	if b, ok := l.peek(); ok && b == '.' {
		// don't eat `..` (range operator)
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			isFloat = true
			l.advance()
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		if b2, ok2 := l.peekN(1); ok2 && (isDigit(b2) || b2 == '+' || b2 == '-') {
			isFloat = true
			l.advance()
			if b, ok := l.peek(); ok && (b == '+' || b == '-') {
				l.advance()
			}
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	if isFloat {
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return l.err("invalid float literal")
		}
		l.addToken(tFloat, f)
		return nil
	}
	n, err := strconv.ParseInt(lex, 10, 64)
	if err != nil {
		return l.err("invalid integer literal")
	}
	l.addToken(tInt, n)
	return nil
}

func (l *Lexer) scanIdentifier() {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	lex := l.src[l.start:l.cur]
	if tt, ok := keywords[lex]; ok {
		l.addToken(tt, lex)
		return
	}
	l.addToken(tIdent, lex)
}

func (l *Lexer) scanToken() error {
	if err := l.skipWhitespace(); err != nil {
		return err
	}
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		l.addToken(tEOF, nil)
		return nil
	}

	ch, _ := l.advance()
	switch ch {
	case '(':
		l.addToken(tLParen, nil)
	case ')':
		l.addToken(tRParen, nil)
	case '{':
		l.addToken(tLBrace, nil)
	case '}':
		l.addToken(tRBrace, nil)
	case '[':
		l.addToken(tLBracket, nil)
	case ']':
		l.addToken(tRBracket, nil)
	case ',':
		l.addToken(tComma, nil)
	case ';':
		l.addToken(tSemicolon, nil)
	case ':':
		if l.match(':') {
			l.addToken(tColonColon, nil)
		} else {
			l.addToken(tColon, nil)
		}
	case '+':
		if l.match('=') {
			l.addToken(tPlusEq, nil)
		} else {
			l.addToken(tPlus, nil)
		}
	case '-':
		if l.match('>') {
			l.addToken(tArrow, nil)
		} else if l.match('=') {
			l.addToken(tMinusEq, nil)
		} else {
			l.addToken(tMinus, nil)
		}
	case '*':
		if l.match('=') {
			l.addToken(tStarEq, nil)
		} else {
			l.addToken(tStar, nil)
		}
	case '/':
		if l.match('=') {
			l.addToken(tSlashEq, nil)
		} else {
			l.addToken(tSlash, nil)
		}
	case '%':
		if l.match('=') {
			l.addToken(tPercentEq, nil)
		} else {
			l.addToken(tPercent, nil)
		}
	case '=':
		if l.match('=') {
			l.addToken(tEq, nil)
		} else if l.match('>') {
			l.addToken(tFatArrow, nil)
		} else {
			l.addToken(tAssign, nil)
		}
	case '!':
		if l.match('=') {
			l.addToken(tNotEq, nil)
		} else {
			l.addToken(tBang, nil)
		}
	case '<':
		if l.match('=') {
			l.addToken(tLessEq, nil)
		} else {
			l.addToken(tLess, nil)
		}
	case '>':
		if l.match('=') {
			l.addToken(tGreaterEq, nil)
		} else {
			l.addToken(tGreater, nil)
		}
	case '&':
		if l.match('&') {
			l.addToken(tAnd, nil)
		} else {
			return l.err("unexpected character: '&'")
		}
	case '|':
		if l.match('|') {
			l.addToken(tOr, nil)
		} else {
			l.addToken(tPipe, nil)
		}
	case '~':
		l.addToken(tTilde, nil)
	case '.':
		if l.match('.') {
			l.addToken(tDotDot, nil)
		} else {
			l.addToken(tDot, nil)
		}
	case '"':
		return l.scanString()
	default:
		if isDigit(ch) {
			l.cur = l.start
			l.col--
			return l.scanNumber()
		}
		if isAlpha(ch) {
			l.cur = l.start
			l.col--
			l.scanIdentifier()
			return nil
		}
		return l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
	return nil
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		if err := l.scanToken(); err != nil {
			return nil, err
		}
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Type == tEOF {
			return l.tokens, nil
		}
	}
}
