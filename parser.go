// parser.go: recursive-descent parser for Lattice.
//
// Produces the typed AST in ast.go. Statement separators are optional
// semicolons; blocks are brace-delimited. Errors surface as *ParseError
// with 1-based line and 0-based column, matching the lexer.
package lattice

import (
	"fmt"
	"strings"
)

type Parser struct {
	toks []Token
	cur  int
}

// Parse tokenizes and parses a whole source file.
func Parse(src string) ([]Stmt, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	var out []Stmt
	for !p.atEOF() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		p.skipSemis()
	}
	return out, nil
}

// --- token plumbing ---------------------------------------------------------

func (p *Parser) peek() Token      { return p.toks[p.cur] }
func (p *Parser) peekType() TokenType {
	return p.toks[p.cur].Type
}
func (p *Parser) peekN(n int) Token {
	if p.cur+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.cur+n]
}
func (p *Parser) atEOF() bool { return p.peekType() == tEOF }

func (p *Parser) advance() Token {
	t := p.toks[p.cur]
	if p.cur < len(p.toks)-1 {
		p.cur++
	}
	return t
}

func (p *Parser) check(tt TokenType) bool { return p.peekType() == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errf("expected %s, got '%s'", what, p.describe(p.peek()))
}

func (p *Parser) describe(t Token) string {
	if t.Type == tEOF {
		return "end of input"
	}
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return fmt.Sprintf("token %d", t.Type)
}

func (p *Parser) errf(format string, args ...interface{}) error {
	t := p.peek()
	return &ParseError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) pos() Pos {
	t := p.peek()
	return Pos{Line: t.Line, Col: t.Col}
}

func (p *Parser) skipSemis() {
	for p.match(tSemicolon) {
	}
}

// contextual keywords (not reserved by the lexer)
func (p *Parser) checkIdent(name string) bool {
	return p.check(tIdent) && p.peek().Literal == name
}

// --- statements -------------------------------------------------------------

func (p *Parser) parseStmt() (Stmt, error) {
	switch p.peekType() {
	case tFlux, tFix, tLet:
		return p.parseBind()
	case tFn:
		return p.parseFnDecl()
	case tStruct:
		return p.parseStructDecl()
	case tReturn:
		pos := p.pos()
		p.advance()
		if p.check(tRBrace) || p.check(tSemicolon) || p.atEOF() {
			return ReturnStmt{Pos: pos}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ReturnStmt{Pos: pos, E: e}, nil
	case tBreak:
		pos := p.pos()
		p.advance()
		return BreakStmt{Pos: pos}, nil
	case tContinue:
		pos := p.pos()
		p.advance()
		return ContinueStmt{Pos: pos}, nil
	case tWhile:
		pos := p.pos()
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
	case tLoop:
		pos := p.pos()
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return LoopStmt{Pos: pos, Body: body}, nil
	case tFor:
		pos := p.pos()
		p.advance()
		name, err := p.expect(tIdent, "loop variable")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tIn, "'in'"); err != nil {
			return nil, err
		}
		iter, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ForStmt{Pos: pos, Var: name.Literal.(string), Iter: iter, Body: body}, nil
	case tTry:
		return p.parseTry()
	case tImport:
		return p.parseImport()
	}
	return p.parseExprOrAssign()
}

func (p *Parser) parseBind() (Stmt, error) {
	pos := p.pos()
	var kind BindKind
	switch p.advance().Type {
	case tFlux:
		kind = BindFlux
	case tFix:
		kind = BindFix
	default:
		kind = BindLet
	}
	name, err := p.expect(tIdent, "binding name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tAssign, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return BindStmt{Pos: pos, Kind: kind, Name: name.Literal.(string), Init: init}, nil
}

func (p *Parser) parseFnDecl() (Stmt, error) {
	pos := p.pos()
	p.advance() // fn
	name, err := p.expect(tIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLParen, "'('"); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return FnDecl{Pos: pos, Name: name.Literal.(string), Params: params, Body: body}, nil
}

// parseParams consumes up to and including the closing ')'. Parameters may
// carry phase qualifiers: ~x / flux x (fluid-only), *x / fix x
// (crystal-only). A trailing `: Type` annotation is accepted and recorded
// nowhere; Lattice is dynamically typed.
func (p *Parser) parseParams() ([]Param, error) {
	var params []Param
	for !p.check(tRParen) {
		qual := QualNone
		switch p.peekType() {
		case tTilde:
			p.advance()
			qual = QualFluid
		case tStar:
			p.advance()
			qual = QualCrystal
		case tFlux:
			p.advance()
			qual = QualFluid
		case tFix:
			p.advance()
			qual = QualCrystal
		}
		name, err := p.expect(tIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if p.match(tColon) {
			if _, err := p.expect(tIdent, "type name"); err != nil {
				return nil, err
			}
		}
		params = append(params, Param{Name: name.Literal.(string), Qual: qual})
		if !p.check(tRParen) {
			if _, err := p.expect(tComma, "','"); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // ')'
	return params, nil
}

func (p *Parser) parseStructDecl() (Stmt, error) {
	pos := p.pos()
	p.advance() // struct
	name, err := p.expect(tIdent, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	var fields []FieldDecl
	for !p.check(tRBrace) {
		fname, err := p.expect(tIdent, "field name")
		if err != nil {
			return nil, err
		}
		fd := FieldDecl{Name: fname.Literal.(string)}
		if p.match(tColon) {
			switch p.peekType() {
			case tFix:
				p.advance()
				fd.Qual = AlloyFix
			case tFlux:
				p.advance()
				fd.Qual = AlloyFlux
			}
			if p.check(tIdent) {
				fd.Type = p.advance().Literal.(string)
			}
		}
		fields = append(fields, fd)
		if !p.check(tRBrace) {
			if _, err := p.expect(tComma, "','"); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // '}'
	return StructDecl{Pos: pos, Name: name.Literal.(string), Fields: fields}, nil
}

func (p *Parser) parseTry() (Stmt, error) {
	pos := p.pos()
	p.advance() // try
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tCatch, "'catch'"); err != nil {
		return nil, err
	}
	errName := "err"
	if p.check(tIdent) {
		errName = p.advance().Literal.(string)
	}
	catch, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return TryStmt{Pos: pos, Body: body, ErrName: errName, Catch: catch}, nil
}

func (p *Parser) parseImport() (Stmt, error) {
	pos := p.pos()
	p.advance() // import
	path, err := p.expect(tString, "module path string")
	if err != nil {
		return nil, err
	}
	st := ImportStmt{Pos: pos, Path: path.Literal.(string)}
	if p.checkIdent("as") {
		p.advance()
		alias, err := p.expect(tIdent, "module alias")
		if err != nil {
			return nil, err
		}
		st.Alias = alias.Literal.(string)
	}
	return st, nil
}

func (p *Parser) parseExprOrAssign() (Stmt, error) {
	pos := p.pos()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	switch p.peekType() {
	case tAssign, tPlusEq, tMinusEq, tStarEq, tSlashEq, tPercentEq:
		op := p.advance().Type
		switch e.(type) {
		case Ident, FieldAccess, Index:
		default:
			return nil, p.errf("invalid assignment target")
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return AssignStmt{Pos: pos, Target: e, Op: op, Value: v}, nil
	}
	return ExprStmt{Pos: pos, E: e}, nil
}

// parseBlock consumes '{' stmts '}'.
func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	var out []Stmt
	p.skipSemis()
	for !p.check(tRBrace) && !p.atEOF() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		p.skipSemis()
	}
	if _, err := p.expect(tRBrace, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}

// --- expressions ------------------------------------------------------------

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(tOr) {
		pos := p.pos()
		p.advance()
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: tOr, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	l, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(tAnd) {
		pos := p.pos()
		p.advance()
		r, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: tAnd, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	l, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.check(tEq) || p.check(tNotEq) {
		pos := p.pos()
		op := p.advance().Type
		r, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseComparison() (Expr, error) {
	l, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for p.check(tLess) || p.check(tLessEq) || p.check(tGreater) || p.check(tGreaterEq) {
		pos := p.pos()
		op := p.advance().Type
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseRange() (Expr, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.check(tDotDot) {
		pos := p.pos()
		p.advance()
		r, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return Binary{Pos: pos, Op: tDotDot, L: l, R: r}, nil
	}
	return l, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(tPlus) || p.check(tMinus) {
		pos := p.pos()
		op := p.advance().Type
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(tStar) || p.check(tSlash) || p.check(tPercent) {
		pos := p.pos()
		op := p.advance().Type
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = Binary{Pos: pos, Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	switch p.peekType() {
	case tMinus, tBang:
		pos := p.pos()
		op := p.advance().Type
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Pos: pos, Op: op, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekType() {
		case tLParen:
			pos := p.pos()
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = Call{Pos: pos, Callee: e, Args: args}
		case tDot:
			pos := p.pos()
			p.advance()
			name, err := p.expect(tIdent, "field or method name")
			if err != nil {
				return nil, err
			}
			if p.check(tLParen) {
				p.advance()
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				e = MethodCall{Pos: pos, Recv: e, Name: name.Literal.(string), Args: args}
			} else {
				e = FieldAccess{Pos: pos, X: e, Name: name.Literal.(string)}
			}
		case tLBracket:
			// A '[' on a later line starts an array-literal statement, not
			// an index into the expression above it.
			if p.cur > 0 && p.peek().Line != p.toks[p.cur-1].Line {
				return e, nil
			}
			pos := p.pos()
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tRBracket, "']'"); err != nil {
				return nil, err
			}
			e = Index{Pos: pos, X: e, Idx: idx}
		default:
			return e, nil
		}
	}
}

// parseArgs consumes args up to and including ')'.
func (p *Parser) parseArgs() ([]Expr, error) {
	var args []Expr
	for !p.check(tRParen) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.check(tRParen) {
			if _, err := p.expect(tComma, "','"); err != nil {
				return nil, err
			}
		}
	}
	p.advance()
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	pos := p.pos()
	switch p.peekType() {
	case tInt:
		return IntLit{Pos: pos, V: p.advance().Literal.(int64)}, nil
	case tFloat:
		return FloatLit{Pos: pos, V: p.advance().Literal.(float64)}, nil
	case tString:
		return StrLit{Pos: pos, V: p.advance().Literal.(string)}, nil
	case tTrue:
		p.advance()
		return BoolLit{Pos: pos, V: true}, nil
	case tFalse:
		p.advance()
		return BoolLit{Pos: pos, V: false}, nil
	case tNil:
		p.advance()
		return NilLit{Pos: pos}, nil
	case tInterpStart:
		return p.parseInterp()
	case tIdent:
		return p.parseIdentExpr()
	case tLParen:
		p.advance()
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.match(tComma) {
			elems := []Expr{first}
			for !p.check(tRParen) {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if !p.check(tRParen) {
					if _, err := p.expect(tComma, "','"); err != nil {
						return nil, err
					}
				}
			}
			p.advance()
			return TupleLit{Pos: pos, Elems: elems}, nil
		}
		if _, err := p.expect(tRParen, "')'"); err != nil {
			return nil, err
		}
		return first, nil
	case tLBracket:
		p.advance()
		var elems []Expr
		for !p.check(tRBracket) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.check(tRBracket) {
				if _, err := p.expect(tComma, "','"); err != nil {
					return nil, err
				}
			}
		}
		p.advance()
		return ArrayLit{Pos: pos, Elems: elems}, nil
	case tPipe:
		return p.parseClosure()
	case tOr:
		// '||' scans as one token; it opens a parameterless closure here
		p.advance()
		if p.check(tLBrace) {
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return ClosureLit{Pos: pos, Body: body}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ClosureLit{Pos: pos, Expr: e}, nil
	case tIf:
		return p.parseIf()
	case tMatch:
		return p.parseMatch()
	case tFreeze:
		return p.parseFreeze()
	case tThaw:
		p.advance()
		x, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		return ThawExpr{Pos: pos, X: x}, nil
	case tSublimate:
		p.advance()
		x, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		return SublimateExpr{Pos: pos, X: x}, nil
	case tClone:
		p.advance()
		x, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		return CloneExpr{Pos: pos, X: x}, nil
	case tAnneal:
		p.advance()
		target, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		if !p.check(tPipe) {
			return nil, p.errf("anneal requires a closure: anneal(val) |v| { ... }")
		}
		fn, err := p.parseClosure()
		if err != nil {
			return nil, err
		}
		return AnnealExpr{Pos: pos, Target: target, Transform: fn}, nil
	case tCrystallize:
		p.advance()
		target, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return CrystallizeExpr{Pos: pos, Target: target, Body: body}, nil
	case tSpawn:
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return SpawnExpr{Pos: pos, Body: body}, nil
	case tScope:
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ScopeExpr{Pos: pos, Body: body}, nil
	case tPrint:
		p.advance()
		if _, err := p.expect(tLParen, "'('"); err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return PrintExpr{Pos: pos, Args: args}, nil
	}
	return nil, p.errf("unexpected token '%s'", p.describe(p.peek()))
}

func (p *Parser) parseParenExpr() (Expr, error) {
	if _, err := p.expect(tLParen, "'('"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tRParen, "')'"); err != nil {
		return nil, err
	}
	return e, nil
}

// parseIdentExpr handles bare identifiers, Type::name(...) static calls,
// and struct literals (capitalized identifier directly followed by '{').
func (p *Parser) parseIdentExpr() (Expr, error) {
	pos := p.pos()
	name := p.advance().Literal.(string)

	if p.check(tColonColon) {
		p.advance()
		member, err := p.expect(tIdent, "member name after '::'")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tLParen, "'('"); err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return StaticCall{Pos: pos, Type: name, Name: member.Literal.(string), Args: args}, nil
	}

	// Struct literal: `Point { x: 1, y: 2 }`. Restricted to capitalized
	// names so that `if ready { ... }` keeps parsing as a block.
	if p.check(tLBrace) && len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		p.advance()
		var fieldNames []string
		var fieldValues []Expr
		for !p.check(tRBrace) {
			fname, err := p.expect(tIdent, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tColon, "':'"); err != nil {
				return nil, err
			}
			fval, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fieldNames = append(fieldNames, fname.Literal.(string))
			fieldValues = append(fieldValues, fval)
			if !p.check(tRBrace) {
				if _, err := p.expect(tComma, "','"); err != nil {
					return nil, err
				}
			}
		}
		p.advance()
		return StructLit{Pos: pos, Name: name, FieldNames: fieldNames, FieldValues: fieldValues}, nil
	}

	return Ident{Pos: pos, Name: name}, nil
}

func (p *Parser) parseInterp() (Expr, error) {
	pos := p.pos()
	first := p.advance() // tInterpStart
	parts := []string{first.Literal.(string)}
	var exprs []Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		switch p.peekType() {
		case tInterpMid:
			parts = append(parts, p.advance().Literal.(string))
		case tInterpEnd:
			parts = append(parts, p.advance().Literal.(string))
			return InterpStr{Pos: pos, Parts: parts, Exprs: exprs}, nil
		default:
			return nil, p.errf("malformed string interpolation")
		}
	}
}

func (p *Parser) parseClosure() (Expr, error) {
	pos := p.pos()
	p.advance() // '|'
	var params []Param
	for !p.check(tPipe) {
		qual := QualNone
		switch p.peekType() {
		case tTilde:
			p.advance()
			qual = QualFluid
		case tStar:
			p.advance()
			qual = QualCrystal
		}
		name, err := p.expect(tIdent, "closure parameter")
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: name.Literal.(string), Qual: qual})
		if !p.check(tPipe) {
			if _, err := p.expect(tComma, "','"); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // closing '|'

	if p.check(tLBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ClosureLit{Pos: pos, Params: params, Body: body}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ClosureLit{Pos: pos, Params: params, Expr: e}, nil
}

func (p *Parser) parseIf() (Expr, error) {
	pos := p.pos()
	p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els []Stmt
	if p.match(tElse) {
		if p.check(tIf) {
			chained, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			els = []Stmt{ExprStmt{E: chained}}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return IfExpr{Pos: pos, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseMatch() (Expr, error) {
	pos := p.pos()
	p.advance() // match
	scrut, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	var arms []MatchArm
	for !p.check(tRBrace) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tFatArrow, "'=>'"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, MatchArm{Pat: pat, Body: body})
		if !p.check(tRBrace) {
			if _, err := p.expect(tComma, "','"); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // '}'
	return MatchExpr{Pos: pos, Scrutinee: scrut, Arms: arms}, nil
}

// parsePattern: optional `fluid`/`crystal` qualifier, then literal, binding
// identifier, `_` wildcard, or `[p, ...]` array pattern.
func (p *Parser) parsePattern() (Pattern, error) {
	var pat Pattern
	if p.checkIdent("fluid") && p.peekN(1).Type != tFatArrow {
		p.advance()
		pat.Qual = QualFluid
	} else if p.checkIdent("crystal") && p.peekN(1).Type != tFatArrow {
		p.advance()
		pat.Qual = QualCrystal
	}

	switch p.peekType() {
	case tInt, tFloat, tString, tTrue, tFalse, tNil:
		lit, err := p.parsePrimary()
		if err != nil {
			return pat, err
		}
		pat.Kind = PatLiteral
		pat.Lit = lit
	case tMinus:
		lit, err := p.parseUnary()
		if err != nil {
			return pat, err
		}
		pat.Kind = PatLiteral
		pat.Lit = lit
	case tIdent:
		name := p.advance().Literal.(string)
		if name == "_" {
			pat.Kind = PatWildcard
		} else {
			pat.Kind = PatBind
			pat.Name = name
		}
	case tLBracket:
		p.advance()
		pat.Kind = PatArray
		for !p.check(tRBracket) {
			sub, err := p.parsePattern()
			if err != nil {
				return pat, err
			}
			pat.Elems = append(pat.Elems, sub)
			if !p.check(tRBracket) {
				if _, err := p.expect(tComma, "','"); err != nil {
					return pat, err
				}
			}
		}
		p.advance()
	default:
		return pat, p.errf("expected a pattern, got '%s'", p.describe(p.peek()))
	}
	return pat, nil
}

func (p *Parser) parseFreeze() (Expr, error) {
	pos := p.pos()
	p.advance() // freeze
	target, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	fe := FreezeExpr{Pos: pos, Target: target}
	if p.checkIdent("where") {
		p.advance()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fe.Where = w
	}
	if p.checkIdent("except") {
		p.advance()
		if _, err := p.expect(tLBracket, "'['"); err != nil {
			return nil, err
		}
		for !p.check(tRBracket) {
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fe.Except = append(fe.Except, k)
			if !p.check(tRBracket) {
				if _, err := p.expect(tComma, "','"); err != nil {
					return nil, err
				}
			}
		}
		p.advance()
	}
	return fe, nil
}

// sourceName derives a default module alias from an import path:
// "lib/util.lat" -> "util".
func sourceName(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
