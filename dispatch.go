// dispatch.go: phase-qualified function overloading.
//
// Top-level fn declarations whose first parameter carries a phase
// qualifier join an overload set keyed by (name, qualifier). Resolution
// matches the first argument's phase exactly, falling back to the
// unqualified definition; no match is a dispatch error.
package lattice

import "fmt"

// declareFn registers a named function, replacing any prior definition
// with the identical (name, qualifier) key.
func (ip *Interpreter) declareFn(fn *Fun) {
	qual := QualNone
	if len(fn.Params) > 0 {
		qual = fn.Params[0].Qual
	}
	set, ok := ip.overloads[fn.Name]
	if !ok {
		set = map[PhaseQual]*Fun{}
		ip.overloads[fn.Name] = set
	}
	set[qual] = fn

	// The global binding holds the unqualified definition when one exists,
	// else the latest overload, so the name stays first-class.
	if s, ok := ip.globals.Resolve(fn.Name); ok && s.Val.Tag == VTFun {
		if plain, has := set[QualNone]; has {
			s.Val = FunVal(plain)
		} else {
			s.Val = FunVal(fn)
		}
		return
	}
	ip.globals.Define(ip, fn.Name, FunVal(fn), BindLet)
}

// resolveOverload picks the definition for a call by the first argument's
// phase. Matching is exact; the unqualified definition is the only
// fallback. Unphased arguments resolve to the unqualified definition.
func (ip *Interpreter) resolveOverload(name string, args []Value) (*Fun, bool) {
	set, ok := ip.overloads[name]
	if !ok {
		return nil, false
	}
	if len(set) == 1 {
		for _, f := range set {
			return f, true
		}
	}
	want := QualNone
	have := PhaseUnphased
	if len(args) > 0 {
		have = PhaseOf(args[0])
		switch have {
		case PhaseFluid:
			want = QualFluid
		case PhaseCrystal:
			want = QualCrystal
		}
	}
	if f, ok := set[want]; ok {
		return f, true
	}
	if f, ok := set[QualNone]; ok {
		return f, true
	}
	failDispatch(fmt.Sprintf("no overload of '%s' accepts a %s argument", name, have))
	return nil, false
}

func funInSet(set map[PhaseQual]*Fun, fn *Fun) bool {
	for _, f := range set {
		if f == fn {
			return true
		}
	}
	return false
}

// checkParamQuals validates every qualified parameter against its
// argument's phase at call time. This covers closures and direct calls
// that bypass overload resolution.
func checkParamQuals(fn *Fun, args []Value) {
	for i, p := range fn.Params {
		if p.Qual == QualNone || i >= len(args) {
			continue
		}
		have := PhaseOf(args[i])
		switch p.Qual {
		case QualFluid:
			// Unphased is rejected here too, matching overload resolution
			// and `fluid` match patterns.
			if have != PhaseFluid {
				failDispatch(fmt.Sprintf("parameter '%s' of '%s' requires a fluid value, got %s",
					p.Name, fnLabel(fn), have))
			}
		case QualCrystal:
			if have != PhaseCrystal {
				failDispatch(fmt.Sprintf("parameter '%s' of '%s' requires a crystal value, got %s",
					p.Name, fnLabel(fn), have))
			}
		}
	}
}

func fnLabel(fn *Fun) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "closure"
}

// matchPhaseQual tests a pattern qualifier against a scrutinee's phase.
func matchPhaseQual(q PhaseQual, v Value) bool {
	switch q {
	case QualFluid:
		return PhaseOf(v) == PhaseFluid
	case QualCrystal:
		return PhaseOf(v) == PhaseCrystal
	default:
		return true
	}
}
