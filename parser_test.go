package lattice

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) Stmt {
	t.Helper()
	stmts, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("parse %q: got %d statements, want 1", src, len(stmts))
	}
	return stmts[0]
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	if _, err := Parse(src); err != nil {
		return err
	}
	t.Fatalf("parse %q: expected an error", src)
	return nil
}

func TestParseBindings(t *testing.T) {
	b := parseOne(t, `flux x = 1`).(BindStmt)
	if b.Kind != BindFlux || b.Name != "x" {
		t.Fatalf("got %+v", b)
	}
	if parseOne(t, `fix y = [1]`).(BindStmt).Kind != BindFix {
		t.Fatal("fix kind")
	}
	if parseOne(t, `let z = 0`).(BindStmt).Kind != BindLet {
		t.Fatal("let kind")
	}
}

func TestParseAssignTargets(t *testing.T) {
	a := parseOne(t, `x.f = 1`).(AssignStmt)
	if _, ok := a.Target.(FieldAccess); !ok {
		t.Fatalf("target %T", a.Target)
	}
	a = parseOne(t, `xs[0] += 2`).(AssignStmt)
	if _, ok := a.Target.(Index); !ok || a.Op != tPlusEq {
		t.Fatalf("got %T op %d", a.Target, a.Op)
	}
}

func TestParsePrecedence(t *testing.T) {
	e := parseOne(t, `1 + 2 * 3`).(ExprStmt).E.(Binary)
	if e.Op != tPlus {
		t.Fatalf("root op %d", e.Op)
	}
	if r := e.R.(Binary); r.Op != tStar {
		t.Fatalf("right op %d", r.Op)
	}
	e = parseOne(t, `a || b && c`).(ExprStmt).E.(Binary)
	if e.Op != tOr {
		t.Fatalf("root op %d", e.Op)
	}
}

func TestParseFnQualifiers(t *testing.T) {
	fn := parseOne(t, `fn f(~a, *b, c) { a }`).(FnDecl)
	quals := []PhaseQual{QualFluid, QualCrystal, QualNone}
	for i, p := range fn.Params {
		if p.Qual != quals[i] {
			t.Fatalf("param %d qual %v", i, p.Qual)
		}
	}
	// keyword spellings mean the same thing as the sigils
	fn = parseOne(t, `fn g(flux a, fix b) { a }`).(FnDecl)
	if fn.Params[0].Qual != QualFluid || fn.Params[1].Qual != QualCrystal {
		t.Fatalf("got %+v", fn.Params)
	}
}

func TestParseStructDecl(t *testing.T) {
	sd := parseOne(t, `struct Account { id: fix Str, balance: flux Int, owner }`).(StructDecl)
	if sd.Name != "Account" || len(sd.Fields) != 3 {
		t.Fatalf("got %+v", sd)
	}
	if sd.Fields[0].Qual != AlloyFix || sd.Fields[1].Qual != AlloyFlux || sd.Fields[2].Qual != AlloyNone {
		t.Fatalf("got %+v", sd.Fields)
	}
	if sd.Fields[0].Type != "Str" || sd.Fields[2].Type != "" {
		t.Fatalf("types %+v", sd.Fields)
	}
}

func TestParseStructLiteralRequiresCapital(t *testing.T) {
	st := parseOne(t, `Account { id: 1 }`).(ExprStmt).E.(StructLit)
	if st.Name != "Account" {
		t.Fatalf("got %+v", st)
	}
	// a lowercase name followed by a brace is not a struct literal
	if _, ok := parseOne(t, `account`).(ExprStmt).E.(Ident); !ok {
		t.Fatal("lowercase ident")
	}
}

func TestParseFreezeForms(t *testing.T) {
	fe := parseOne(t, `freeze(x)`).(ExprStmt).E.(FreezeExpr)
	if fe.Where != nil || fe.Except != nil {
		t.Fatalf("got %+v", fe)
	}
	fe = parseOne(t, `freeze(x) where |v| v > 0`).(ExprStmt).E.(FreezeExpr)
	if _, ok := fe.Where.(ClosureLit); !ok {
		t.Fatalf("where %T", fe.Where)
	}
	fe = parseOne(t, `freeze(cfg) except ["debug", "cache"]`).(ExprStmt).E.(FreezeExpr)
	if len(fe.Except) != 2 {
		t.Fatalf("except %+v", fe.Except)
	}
}

func TestParseMatchPhasePatterns(t *testing.T) {
	m := parseOne(t, `match x { fluid v => 1, crystal _ => 2, _ => 3 }`).(ExprStmt).E.(MatchExpr)
	if len(m.Arms) != 3 {
		t.Fatalf("arms %d", len(m.Arms))
	}
	if m.Arms[0].Pat.Qual != QualFluid || m.Arms[0].Pat.Kind != PatBind {
		t.Fatalf("arm 0 %+v", m.Arms[0].Pat)
	}
	if m.Arms[1].Pat.Qual != QualCrystal || m.Arms[1].Pat.Kind != PatWildcard {
		t.Fatalf("arm 1 %+v", m.Arms[1].Pat)
	}
	if m.Arms[2].Pat.Qual != QualNone {
		t.Fatalf("arm 2 %+v", m.Arms[2].Pat)
	}
}

func TestParseClosures(t *testing.T) {
	c := parseOne(t, `|x, ~y| x`).(ExprStmt).E.(ClosureLit)
	if len(c.Params) != 2 || c.Params[1].Qual != QualFluid || c.Expr == nil {
		t.Fatalf("got %+v", c)
	}
	c = parseOne(t, `|| { 1 }`).(ExprStmt).E.(ClosureLit)
	if len(c.Params) != 0 || c.Body == nil {
		t.Fatalf("got %+v", c)
	}
}

func TestParseBracketOnNewLineStartsStatement(t *testing.T) {
	stmts, err := Parse("f(x)\n[a, b]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if _, ok := stmts[0].(ExprStmt).E.(Call); !ok {
		t.Fatalf("first statement %T", stmts[0].(ExprStmt).E)
	}
	if _, ok := stmts[1].(ExprStmt).E.(ArrayLit); !ok {
		t.Fatalf("second statement %T", stmts[1].(ExprStmt).E)
	}
	// same-line indexing is untouched
	if _, ok := parseOne(t, `xs[0]`).(ExprStmt).E.(Index); !ok {
		t.Fatal("same-line index")
	}
}

func TestParseInterpolation(t *testing.T) {
	is := parseOne(t, `"a${x}b"`).(ExprStmt).E.(InterpStr)
	if len(is.Parts) != 2 || len(is.Exprs) != 1 {
		t.Fatalf("got %+v", is)
	}
	if is.Parts[0] != "a" || is.Parts[1] != "b" {
		t.Fatalf("parts %q", is.Parts)
	}
}

func TestParseImport(t *testing.T) {
	im := parseOne(t, `import "lib/util.lat"`).(ImportStmt)
	if im.Path != "lib/util.lat" || im.Alias != "" {
		t.Fatalf("got %+v", im)
	}
	im = parseOne(t, `import "lib/util.lat" as u`).(ImportStmt)
	if im.Alias != "u" {
		t.Fatalf("got %+v", im)
	}
}

func TestParseErrors(t *testing.T) {
	err := parseErr(t, `fn f( {`)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T", err)
	}
	if pe.Line != 1 {
		t.Fatalf("line %d", pe.Line)
	}
	if !strings.Contains(parseErr(t, `if x {`).Error(), "end of input") {
		t.Fatal("truncated block should report end of input")
	}
	if _, err := Parse(`1 +`); err == nil {
		t.Fatal("dangling operator")
	}
}
