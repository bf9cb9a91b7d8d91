package lattice

import "testing"

func TestFixFieldRejectsAssignment(t *testing.T) {
	errContains(t, `struct Account { id: fix Str, balance: Int }
flux a = Account { id: "acc-1", balance: 10 }
a.id = "acc-2"`, "cannot assign to fix field 'id' of struct Account")
	// even while the instance is fluid, and other fields stay writable
	wantIntV(t, evalSrc(t, `struct Account { id: fix Str, balance: Int }
flux a = Account { id: "acc-1", balance: 10 }
a.balance = 20
a.balance`), 20)
}

func TestFixFieldFrozenAtConstruction(t *testing.T) {
	wantStrV(t, evalSrc(t, `struct Account { id: fix Str, balance: Int }
let a = Account { id: "acc-1", balance: 10 }
phase_of(a.id)`), "crystal")
}

func TestFluxFieldSurvivesFreeze(t *testing.T) {
	wantIntV(t, evalSrc(t, `struct Gauge { name: Str, reading: flux Int }
flux g = Gauge { name: "temp", reading: 20 }
freeze(g)
g.reading = 21
g.reading`), 21)
	errContains(t, `struct Gauge { name: Str, reading: flux Int }
flux g = Gauge { name: "temp", reading: 20 }
freeze(g)
g.name = "other"`, "crystal")
}

func TestUndeclaredFieldsFollowInstancePhase(t *testing.T) {
	// plain fields obey the container phase like any map key
	errContains(t, `struct P { a: Int, b: Int }
flux p = P { a: 1, b: 2 }
freeze(p)
p.a = 3`, "crystal")
	wantIntV(t, evalSrc(t, `struct P { a: Int, b: Int }
flux p = P { a: 1, b: 2 }
p.a = 3
p.a`), 3)
}

func TestAlloyTableIsPerType(t *testing.T) {
	// the same field name on another type carries no qualifier
	wantStrV(t, evalSrc(t, `struct A { id: fix Str }
struct B { id: Str }
flux b = B { id: "x" }
b.id = "y"
b.id`), "y")
}

func TestUndeclaredStructLiteral(t *testing.T) {
	// literals of undeclared types work and have no alloy table
	wantIntV(t, evalSrc(t, `flux q = Anon { n: 1 }
q.n = 5
q.n`), 5)
}
