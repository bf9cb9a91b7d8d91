// contract.go: validator closures around freeze, seed/grow and anneal.
//
// Contracts run against the pre-transition value. A contract that raises
// aborts the transition with nothing committed; the raised text is wrapped
// with a fixed prefix so callers can tell contract failures from ordinary
// runtime errors.
package lattice

// callChecked invokes fn and rewraps any evaluation error it raises as
// kind with the given message prefix.
func (ip *Interpreter) callChecked(fn *Fun, args []Value, kind ErrKind, prefix string) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			if ee, ok := r.(evalErr); ok {
				panic(evalErr{kind: kind, msg: prefix + ee.msg, line: ee.line, col: ee.col})
			}
			panic(r)
		}
	}()
	return ip.callFun(fn, args, 0)
}

// runFreezeContract validates a `where` closure against the current value.
// Only a raised error rejects the freeze; the contract's return value is
// discarded.
func (ip *Interpreter) runFreezeContract(contract *Fun, v Value) {
	ip.callChecked(contract, []Value{DeepClone(v)}, ErrContract, "freeze contract failed: ")
}

// setSeed installs (or replaces) the pending predicate on a slot.
func (ip *Interpreter) setSeed(s *Slot, pred *Fun) {
	ip.seeds[s] = pred
}

// clearSeed removes a pending predicate without evaluating it.
func (ip *Interpreter) clearSeed(s *Slot) {
	delete(ip.seeds, s)
}

// validateSeeds checks the slot's pending seed predicate against its
// current value. A raised predicate error surfaces as a contract failure;
// a falsy result is a plain error. consume removes the seed afterward
// (grow consumes, plain freeze only validates).
func (ip *Interpreter) validateSeeds(s *Slot, consume bool) {
	pred, ok := ip.seeds[s]
	if !ok {
		return
	}
	res := ip.callChecked(pred, []Value{DeepClone(s.Val)}, ErrContract, "seed contract failed: ")
	if !Truthy(res) {
		if consume {
			delete(ip.seeds, s)
		}
		fail("grow() seed contract returned false")
	}
	if consume {
		delete(ip.seeds, s)
	}
}

// runAnneal transforms a crystal value: conceptually thaw, apply the
// closure, re-freeze the result. The slot ends crystal holding the
// transformed value; transform errors leave it crystal with the old value.
func (ip *Interpreter) runAnneal(s *Slot, transform *Fun) Value {
	if PhaseOf(s.Val) != PhaseCrystal {
		failState("anneal requires a crystal value")
	}
	loose := thawValue(DeepClone(s.Val))
	out := ip.callChecked(transform, []Value{loose}, ErrContract, "anneal failed: ")
	s.Val = freezeValue(out)
	ip.notifyCommits([]commitRec{{slot: s, phase: PhaseCrystal}})
	return DeepClone(s.Val)
}

// annealValue is the non-slot variant for anneal on an arbitrary crystal
// expression: the transformed result is returned re-frozen, with no slot
// to notify.
func (ip *Interpreter) annealValue(v Value, transform *Fun) Value {
	if PhaseOf(v) != PhaseCrystal {
		failState("anneal requires a crystal value")
	}
	loose := thawValue(DeepClone(v))
	out := ip.callChecked(transform, []Value{loose}, ErrContract, "anneal failed: ")
	return freezeValue(out)
}
