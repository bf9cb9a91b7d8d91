package lattice

import "testing"

func TestDefaultPhases(t *testing.T) {
	// fresh composites are fluid, scalars unphased
	wantStrV(t, evalSrc(t, `phase_of([1, 2])`), "fluid")
	wantStrV(t, evalSrc(t, `phase_of(Map::new())`), "fluid")
	wantStrV(t, evalSrc(t, `phase_of(42)`), "unphased")
	wantStrV(t, evalSrc(t, `phase_of("s")`), "unphased")
	wantStrV(t, evalSrc(t, `let x = 5
phase_of(x)`), "unphased")
	// flux promotes a scalar binding to fluid
	wantStrV(t, evalSrc(t, `flux x = 5
phase_of(x)`), "fluid")
}

func TestFreezeThawRoundTrip(t *testing.T) {
	wantStrV(t, evalSrc(t, `flux a = [1, 2]
freeze(a)
phase_of(a)`), "crystal")
	wantStrV(t, evalSrc(t, `flux a = [1, 2]
freeze(a)
thaw(a)
phase_of(a)`), "fluid")
	// thaw then mutate works again
	wantIntV(t, evalSrc(t, `flux a = [1]
freeze(a)
thaw(a)
a.push(2)
a.len()`), 2)
}

func TestFixBindingDeepFreezes(t *testing.T) {
	wantStrV(t, evalSrc(t, `fix c = [1, [2, 3]]
phase_of(c[1])`), "crystal")
	errContains(t, `fix c = [1]
c.push(2)`, "cannot push to a crystal array")
}

func TestCrystalRejectsAllMutation(t *testing.T) {
	errContains(t, `fix a = [1, 2]
a[0] = 9`, "crystal")
	errContains(t, `fix a = [1]
a.pop()`, "cannot pop from a crystal array")
	errContains(t, `flux m = Map::new()
m["k"] = 1
freeze(m)
m["k"] = 2`, "crystal")
	errContains(t, `flux m = Map::new()
freeze(m)
m["new"] = 1`, "crystal")
}

func TestCrystalBindingRebind(t *testing.T) {
	errContains(t, `flux x = [1]
freeze(x)
x = [2]`, "cannot assign to crystal binding 'x'")
}

func TestSublimated(t *testing.T) {
	// structure locked, slots writable
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["k"] = 1
sublimate(m)
m["k"] = 9
m["k"]`), 9)
	errContains(t, `flux m = Map::new()
m["k"] = 1
sublimate(m)
m["new"] = 1`, "cannot add keys to a sublimated map")
	errContains(t, `flux m = Map::new()
m["k"] = 1
sublimate(m)
m.remove("k")`, "cannot remove keys from a sublimated map")
	errContains(t, `flux a = [1]
sublimate(a)
a.push(2)`, "cannot push to a sublimated array")
	wantIntV(t, evalSrc(t, `flux a = [1, 2]
sublimate(a)
a[0] = 7
a[0]`), 7)
	wantStrV(t, evalSrc(t, `flux a = [1]
sublimate(a)
phase_of(a)`), "sublimated")
}

func TestFreezeReturnsSnapshot(t *testing.T) {
	wantStrV(t, evalSrc(t, `flux a = [1]
let snap = freeze(a)
phase_of(snap)`), "crystal")
}

func TestClonePreservesPhase(t *testing.T) {
	// clone copies the phase along with the structure
	wantStrV(t, evalSrc(t, `fix a = [1]
let b = clone(a)
phase_of(b)`), "crystal")
	// but the copy is independent after thawing
	wantIntV(t, evalSrc(t, `fix a = [1]
flux b = thaw(clone(a))
b.push(2)
a.len()`), 1)
}

func TestSubLocationFreeze(t *testing.T) {
	// freeze a single map key, the rest stays mutable
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["host"] = "db1"
m["port"] = 5432
freeze(m["host"])
m["port"] = 5433
m["port"]`), 5433)
	errContains(t, `flux m = Map::new()
m["host"] = "db1"
freeze(m["host"])
m["host"] = "db2"`, "crystal")
	// struct field freeze
	errContains(t, `struct Cfg { name: Str, tries: Int }
flux c = Cfg { name: "a", tries: 1 }
freeze(c.name)
c.name = "b"`, "crystal")
	wantIntV(t, evalSrc(t, `struct Cfg { name: Str, tries: Int }
flux c = Cfg { name: "a", tries: 1 }
freeze(c.name)
c.tries = 2
c.tries`), 2)
}

func TestFreezeExcept(t *testing.T) {
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["host"] = "db1"
m["retries"] = 3
freeze(m) except ["retries"]
m["retries"] = 5
m["retries"]`), 5)
	errContains(t, `flux m = Map::new()
m["host"] = "db1"
m["retries"] = 3
freeze(m) except ["retries"]
m["host"] = "other"`, "crystal")
	// a later exception-free freeze clears the override
	errContains(t, `flux m = Map::new()
m["retries"] = 3
freeze(m) except ["retries"]
thaw(m)
freeze(m)
m["retries"] = 9`, "crystal")
}

func TestWholeFreezeClearsOverrides(t *testing.T) {
	// a container-wide transition replaces every sub-location override
	wantIntV(t, evalSrc(t, `flux m = Map::new()
m["a"] = 1
freeze(m["a"])
thaw(m)
m["a"] = 2
m["a"]`), 2)
}

func TestCrystallizeScope(t *testing.T) {
	wantStrV(t, evalSrc(t, `flux d = [1]
crystallize(d) {
  phase_of(d)
}`), "crystal")
	wantStrV(t, evalSrc(t, `flux d = [1]
crystallize(d) { 0 }
phase_of(d)`), "fluid")
	// mutation inside the window is rejected, binding restored after
	wantIntV(t, evalSrc(t, `flux d = [1]
try {
  crystallize(d) { d.push(2) }
} catch e { 0 }
d.push(3)
d.len()`), 2)
}

func TestCrystallizeKeepsFluxFieldWrites(t *testing.T) {
	wantIntV(t, evalSrc(t, `struct Gauge { name: Str, reading: flux Int }
flux g = Gauge { name: "t", reading: 1 }
crystallize(g) { g.reading = 9 }
g.reading`), 9)
	wantStrV(t, evalSrc(t, `struct Gauge { name: Str, reading: flux Int }
flux g = Gauge { name: "t", reading: 1 }
crystallize(g) { 0 }
phase_of(g)`), "fluid")
}

func TestCrystallizeRunsFreezePipeline(t *testing.T) {
	// entry and exit are commits: reactions observe both transitions
	wantStrV(t, evalSrc(t, `flux log = []
flux d = [1]
react(d, |p, v| { log.push(p) })
crystallize(d) { 0 }
log.join(",")`), "crystal,fluid")
	// a gate bond blocks the scoped freeze like any other
	errContains(t, `flux d = [1]
flux g = [2]
bond(d, g, "gate")
crystallize(d) { 0 }`, "gate bond")
}

func TestCrystallizeRestoresSublimated(t *testing.T) {
	wantStrV(t, evalSrc(t, `flux d = [1]
sublimate(d)
crystallize(d) { 0 }
phase_of(d)`), "sublimated")
}

func TestChannelValuesCannotFreeze(t *testing.T) {
	errContains(t, `flux ch = Chan::new()
freeze(ch)`, "cannot freeze a channel")
}
