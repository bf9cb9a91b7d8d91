package lattice

import "testing"

func TestLenBuiltin(t *testing.T) {
	wantIntV(t, evalSrc(t, `len("héllo")`), 6) // byte length
	wantIntV(t, evalSrc(t, `len([1, 2, 3])`), 3)
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["a"] = 1
len(m)`), 1)
	wantIntV(t, evalSrc(t, `len(0..5)`), 5)
}

func TestTypeOfAndConversion(t *testing.T) {
	wantStrV(t, evalSrc(t, `type_of(1)`), "Int")
	wantStrV(t, evalSrc(t, `type_of(1.5)`), "Float")
	wantStrV(t, evalSrc(t, `type_of("x")`), "String")
	wantStrV(t, evalSrc(t, `type_of([1])`), "Array")
	wantStrV(t, evalSrc(t, `type_of(nil)`), "Nil")
	wantStrV(t, evalSrc(t, `type_of(|x| x)`), "Closure")
	wantStrV(t, evalSrc(t, `struct Q { a: Int }
type_of(Q { a: 1 })`), "Struct")
	wantStrV(t, evalSrc(t, `to_string([1, "a"])`), `[1, "a"]`)
	wantIntV(t, evalSrc(t, `parse_int("42")`), 42)
	wantNilV(t, evalSrc(t, `parse_int("nope")`))
	wantNilV(t, evalSrc(t, `parse_int(1.5)`))
}

func TestOrdChr(t *testing.T) {
	wantIntV(t, evalSrc(t, `ord("A")`), 65)
	wantIntV(t, evalSrc(t, `ord("")`), -1)
	wantStrV(t, evalSrc(t, `chr(97)`), "a")
}

func TestAssertAndRaise(t *testing.T) {
	wantNilV(t, evalSrc(t, `assert(1 < 2)`))
	errContains(t, `assert(false, "boom")`, "assertion failed: boom")
	errContains(t, `raise("bad input")`, "bad input")
}

func TestFormatBuiltin(t *testing.T) {
	wantStrV(t, evalSrc(t, `format("%s=%s", "k", 3)`), "k=3")
}

func TestStringBuiltins(t *testing.T) {
	wantStrV(t, evalSrc(t, `substr("hello", 1, 4)`), "ell")
	wantStrV(t, evalSrc(t, `substr("hi", -2, 99)`), "hi")
	wantStrV(t, evalSrc(t, `lstrip("  x ")`), "x ")
	wantStrV(t, evalSrc(t, `rstrip("  x ")`), "  x")
	wantStrV(t, evalSrc(t, `pad_left("7", 3, "0")`), "007")
	wantStrV(t, evalSrc(t, `pad_right("ab", 4, ".")`), "ab..")
}

func TestMathBuiltins(t *testing.T) {
	wantIntV(t, evalSrc(t, `abs(-5)`), 5)
	v := evalSrc(t, `abs(-2.5)`)
	if v.Tag != VTNum || v.Data.(float64) != 2.5 {
		t.Fatalf("got %v", v)
	}
	wantIntV(t, evalSrc(t, `floor(3.9)`), 3)
	wantIntV(t, evalSrc(t, `ceil(3.1)`), 4)
	wantIntV(t, evalSrc(t, `round(2.5)`), 3)
	wantIntV(t, evalSrc(t, `floor(7)`), 7)
	wantIntV(t, evalSrc(t, `pow(2, 10)`), 1024)
	v = evalSrc(t, `pow(2, -1)`)
	if v.Tag != VTNum || v.Data.(float64) != 0.5 {
		t.Fatalf("got %v", v)
	}
	wantIntV(t, evalSrc(t, `min(3, 1)`), 1)
	wantIntV(t, evalSrc(t, `max(3, 1)`), 3)
	v = evalSrc(t, `sqrt(9)`)
	if v.Tag != VTNum || v.Data.(float64) != 3 {
		t.Fatalf("got %v", v)
	}
}

func TestRandomBuiltins(t *testing.T) {
	v := evalSrc(t, `random()`)
	if v.Tag != VTNum || v.Data.(float64) < 0 || v.Data.(float64) >= 1 {
		t.Fatalf("got %v", v)
	}
	v = evalSrc(t, `random_int(10)`)
	if v.Tag != VTInt || v.Data.(int64) < 0 || v.Data.(int64) >= 10 {
		t.Fatalf("got %v", v)
	}
	// same seed, same sequence
	wantBoolV(t, evalSrc(t, `random_seed(7)
flux a = random_int(1000)
random_seed(7)
a == random_int(1000)`), true)
	errContains(t, `random_int(0)`, "must be positive")
}

func TestVersionBuiltin(t *testing.T) {
	wantStrV(t, evalSrc(t, `version()`), Version)
}
