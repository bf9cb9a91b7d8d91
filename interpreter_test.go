package lattice

import (
	"strings"
	"testing"
)

// evalSrc runs a program on a fresh interpreter and returns the value of
// its last statement.
func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	ip := NewInterpreter()
	v, err := ip.EvalSource("test.lat", src)
	if err != nil {
		t.Fatalf("eval error: %v\nsource:\n%s", err, src)
	}
	return v
}

// evalRTE runs a program expecting a runtime error.
func evalRTE(t *testing.T, src string) *RuntimeError {
	t.Helper()
	ip := NewInterpreter()
	_, err := ip.EvalSource("test.lat", src)
	if err == nil {
		t.Fatalf("expected a runtime error\nsource:\n%s", src)
	}
	rte, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	return rte
}

func errContains(t *testing.T, src, substr string) *RuntimeError {
	t.Helper()
	rte := evalRTE(t, src)
	if !strings.Contains(rte.Msg, substr) {
		t.Fatalf("error %q does not contain %q", rte.Msg, substr)
	}
	return rte
}

func wantIntV(t *testing.T, v Value, n int64) {
	t.Helper()
	if v.Tag != VTInt || v.Data.(int64) != n {
		t.Fatalf("want int %d, got %s", n, Display(v))
	}
}

func wantStrV(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("want string %q, got %s", s, Display(v))
	}
}

func wantBoolV(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %s", b, Display(v))
	}
}

func wantNilV(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNil {
		t.Fatalf("want nil, got %s", Display(v))
	}
}

func TestArithmetic(t *testing.T) {
	wantIntV(t, evalSrc(t, `1 + 2 * 3`), 7)
	wantIntV(t, evalSrc(t, `(1 + 2) * 3`), 9)
	wantIntV(t, evalSrc(t, `10 % 3`), 1)
	v := evalSrc(t, `7 / 2.0`)
	if v.Tag != VTNum || v.Data.(float64) != 3.5 {
		t.Fatalf("want 3.5, got %s", Display(v))
	}
	errContains(t, `1 / 0`, "division by zero")
}

func TestStringsAndInterpolation(t *testing.T) {
	wantStrV(t, evalSrc(t, `"foo" + "bar"`), "foobar")
	wantStrV(t, evalSrc(t, `"n = ${2 + 3}!"`), "n = 5!")
	wantStrV(t, evalSrc(t, `let x = "w"
"ans ${x}${1}"`), "ans w1")
}

func TestBindingsAndAssignment(t *testing.T) {
	wantIntV(t, evalSrc(t, `flux x = 1
x = x + 4
x`), 5)
	wantIntV(t, evalSrc(t, `flux x = 10
x += 5
x -= 3
x`), 12)
	errContains(t, `y = 1`, "undefined variable 'y'")
}

func TestIfAndLoops(t *testing.T) {
	wantStrV(t, evalSrc(t, `if 2 > 1 { "yes" } else { "no" }`), "yes")
	wantIntV(t, evalSrc(t, `flux n = 0
while n < 5 { n = n + 1 }
n`), 5)
	wantIntV(t, evalSrc(t, `flux sum = 0
for i in 1..5 { sum = sum + i }
sum`), 10)
	wantIntV(t, evalSrc(t, `flux sum = 0
for x in [2, 4, 6] {
  if x == 4 { continue }
  sum = sum + x
}
sum`), 8)
	wantIntV(t, evalSrc(t, `flux n = 0
loop {
  n = n + 1
  if n >= 3 { break }
}
n`), 3)
}

func TestFunctionsAndClosures(t *testing.T) {
	wantIntV(t, evalSrc(t, `fn add(a, b) { return a + b }
add(2, 3)`), 5)
	wantIntV(t, evalSrc(t, `let twice = |f, x| f(f(x))
twice(|n| n * 2, 5)`), 20)
	wantIntV(t, evalSrc(t, `fn counter() {
  flux n = 0
  return || { n = n + 1
    return n }
}
let c = counter()
c()
c()
c()`), 3)
	errContains(t, `fn f(a) { return a }
f(1, 2)`, "expects 1 arguments")
}

func TestRecursionDepthGuard(t *testing.T) {
	errContains(t, `fn boom(n) { return boom(n + 1) }
boom(0)`, "call stack overflow")
}

func TestArraysAndMethods(t *testing.T) {
	wantIntV(t, evalSrc(t, `let a = [1, 2, 3]
a.len()`), 3)
	wantIntV(t, evalSrc(t, `flux a = [1, 2]
a.push(3)
a[2]`), 3)
	wantIntV(t, evalSrc(t, `let a = [5, 1, 4]
a.sort()[0]`), 1)
	wantIntV(t, evalSrc(t, `[1, 2, 3].map(|x| x * 10).reduce(|a, b| a + b, 0)`), 60)
	wantStrV(t, evalSrc(t, `["a", "b"].join("-")`), "a-b")
	wantIntV(t, evalSrc(t, `let a = [1, 2, 3]
a[-1]`), 3)
	wantIntV(t, evalSrc(t, `[10, 20, 30, 40][1..3].len()`), 2)
	errContains(t, `[1][5]`, "out of bounds")
}

func TestMaps(t *testing.T) {
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["a"] = 1
m["b"] = 2
m.len()`), 2)
	wantNilV(t, evalSrc(t, `let m = Map::new()
m["missing"]`))
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m.set("k", 7)
m.get("k")`), 7)
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["k"] = 1
m.get("absent", 42)`), 42)
	wantBoolV(t, evalSrc(t, `flux m = Map::new()
m["x"] = 1
m.remove("x")
m.has("x")`), false)
}

func TestTuples(t *testing.T) {
	wantIntV(t, evalSrc(t, `let p = (1, 2, 3)
p[1]`), 2)
	errContains(t, `(1, 2)[9]`, "out of bounds")
}

func TestStructs(t *testing.T) {
	wantIntV(t, evalSrc(t, `struct Point { x: Int, y: Int }
let p = Point { x: 3, y: 4 }
p.x + p.y`), 7)
	errContains(t, `struct Point { x: Int }
Point { z: 1 }`, "has no field 'z'")
	wantIntV(t, evalSrc(t, `struct Point { x: Int, y: Int }
flux p = Point { x: 1, y: 2 }
p.y = 9
p.y`), 9)
}

func TestMatch(t *testing.T) {
	wantStrV(t, evalSrc(t, `match 2 {
  1 => "one",
  2 => "two",
  _ => "many"
}`), "two")
	wantIntV(t, evalSrc(t, `match [1, 2] {
  [a, b] => a + b,
  _ => 0
}`), 3)
	wantStrV(t, evalSrc(t, `match "x" {
  n => "bound " + n
}`), "bound x")
	errContains(t, `match 5 { 1 => "one" }`, "no match arm matched")
}

func TestMatchPhasePatterns(t *testing.T) {
	wantStrV(t, evalSrc(t, `fix v = [1]
match v {
  fluid _ => "water",
  crystal _ => "ice",
  _ => "other"
}`), "ice")
	wantStrV(t, evalSrc(t, `flux v = [1]
match v {
  crystal _ => "ice",
  fluid _ => "water",
  _ => "other"
}`), "water")
	// an unphased scalar matches neither qualified arm
	wantStrV(t, evalSrc(t, `let v = 42
match v {
  crystal _ => "ice",
  fluid _ => "water",
  _ => "other"
}`), "other")
}

func TestTryCatch(t *testing.T) {
	wantStrV(t, evalSrc(t, `try { raise("boom") } catch e { e }`), "boom")
	wantIntV(t, evalSrc(t, `try { 42 } catch e { 0 }`), 42)
	wantStrV(t, evalSrc(t, `try {
  fix c = [1]
  c.push(2)
} catch e { e }`), "cannot push to a crystal array")
}

func TestReturnOutsideFunction(t *testing.T) {
	rte := evalRTE(t, `return 5`)
	if !strings.Contains(rte.Msg, "return outside function") {
		t.Fatalf("unexpected message: %q", rte.Msg)
	}
}

func TestPrintGoesToStdout(t *testing.T) {
	var buf strings.Builder
	ip := NewInterpreter(WithStdout(&buf))
	if _, err := ip.EvalSource("t", `print("a", 1 + 1)`); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := buf.String(); got != "a 2\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestPersistentEval(t *testing.T) {
	ip := NewInterpreter()
	if _, err := ip.EvalPersistentSource(`flux n = 1`); err != nil {
		t.Fatalf("eval: %v", err)
	}
	v, err := ip.EvalPersistentSource(`n + 1`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantIntV(t, v, 2)
}

func TestApply(t *testing.T) {
	ip := NewInterpreter()
	fv, err := ip.EvalSource("t", `|a, b| a * b`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	out, err := ip.Apply(fv, []Value{Int(6), Int(7)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	wantIntV(t, out, 42)
}
