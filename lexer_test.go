package lattice

import "testing"

func scanTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("scan %q: %v", src, err)
	}
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func wantTokens(t *testing.T, src string, want []TokenType) {
	t.Helper()
	got := scanTypes(t, src)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens, want %d", src, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %d, want %d", src, i, got[i], want[i])
		}
	}
}

func TestScanBasics(t *testing.T) {
	wantTokens(t, `flux x = 1 + 2.5`,
		[]TokenType{tFlux, tIdent, tAssign, tInt, tPlus, tFloat, tEOF})
	wantTokens(t, `a == b != c <= d >= e`,
		[]TokenType{tIdent, tEq, tIdent, tNotEq, tIdent, tLessEq, tIdent, tGreaterEq, tIdent, tEOF})
	wantTokens(t, `x += 1`, []TokenType{tIdent, tPlusEq, tInt, tEOF})
	wantTokens(t, `0..10`, []TokenType{tInt, tDotDot, tInt, tEOF})
	wantTokens(t, `a.b(c)[0]`,
		[]TokenType{tIdent, tDot, tIdent, tLParen, tIdent, tRParen, tLBracket, tInt, tRBracket, tEOF})
}

func TestScanPhaseKeywords(t *testing.T) {
	wantTokens(t, `freeze thaw anneal crystallize sublimate clone`,
		[]TokenType{tFreeze, tThaw, tAnneal, tCrystallize, tSublimate, tClone, tEOF})
	// bond/react/track are plain identifiers, not keywords
	wantTokens(t, `bond react track`, []TokenType{tIdent, tIdent, tIdent, tEOF})
}

func TestScanQualifierSigils(t *testing.T) {
	wantTokens(t, `fn f(~a, *b)`,
		[]TokenType{tFn, tIdent, tLParen, tTilde, tIdent, tComma, tStar, tIdent, tRParen, tEOF})
	wantTokens(t, `|x| x`, []TokenType{tPipe, tIdent, tPipe, tIdent, tEOF})
	wantTokens(t, `a || b`, []TokenType{tIdent, tOr, tIdent, tEOF})
}

func TestScanStrings(t *testing.T) {
	toks, err := NewLexer(`"hi\n\"there\""`).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if toks[0].Type != tString || toks[0].Literal.(string) != "hi\n\"there\"" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestScanInterpolation(t *testing.T) {
	wantTokens(t, `"a${x}b${y}c"`,
		[]TokenType{tInterpStart, tIdent, tInterpMid, tIdent, tInterpEnd, tEOF})
	// a plain string produces no interpolation tokens
	wantTokens(t, `"ab"`, []TokenType{tString, tEOF})
}

func TestScanComments(t *testing.T) {
	wantTokens(t, "1 // trailing\n2", []TokenType{tInt, tInt, tEOF})
	wantTokens(t, "1 /* a /* nested */ b */ 2", []TokenType{tInt, tInt, tEOF})
	if _, err := NewLexer("/* open").Scan(); err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := NewLexer(`"open`).Scan(); err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if _, err := NewLexer("`").Scan(); err == nil {
		t.Fatal("expected an error for an illegal character")
	}
}

func TestTokenPositions(t *testing.T) {
	toks, err := NewLexer("a\n  b").Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if toks[0].Line != 1 || toks[0].Col != 0 {
		t.Fatalf("a at %d:%d", toks[0].Line, toks[0].Col)
	}
	if toks[1].Line != 2 || toks[1].Col != 2 {
		t.Fatalf("b at %d:%d", toks[1].Line, toks[1].Col)
	}
}
