// builtin_phase.go: the phase-system surface: bond/react/track/pressure/
// seed and their queries.
//
// These are special forms, not ordinary builtins: they need the argument
// expression itself (an identifier) to resolve a binding slot, so the
// evaluator intercepts them before argument evaluation. phase_of is the
// one ordinary builtin here since it only inspects a value.
package lattice

import "fmt"

var phaseForms = map[string]bool{
	"bond":         true,
	"unbond":       true,
	"react":        true,
	"unreact":      true,
	"track":        true,
	"phases":       true,
	"history":      true,
	"rewind":       true,
	"pressurize":   true,
	"depressurize": true,
	"pressure_of":  true,
	"seed":         true,
	"unseed":       true,
	"grow":         true,
}

func isPhaseForm(name string) bool { return phaseForms[name] }

// softResolveSlot is resolveSlot without the undefined-name error, for
// queries whose contract says "nil, not an error".
func (ip *Interpreter) softResolveSlot(env *Env, arg Expr) *Slot {
	var name string
	switch a := arg.(type) {
	case Ident:
		name = a.Name
	case StrLit:
		name = a.V
	default:
		return nil
	}
	s, _ := env.Resolve(name)
	return s
}

func (ip *Interpreter) evalPhaseForm(env *Env, name string, args []Expr) Value {
	argn := func(n int) {
		if len(args) != n {
			failUsage(fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args)))
		}
	}

	switch name {
	case "bond":
		if len(args) != 2 && len(args) != 3 {
			failUsage("bond expects 2 or 3 arguments")
		}
		from := ip.resolveSlot(env, args[0], "bond")
		to := ip.resolveSlot(env, args[1], "bond")
		strat := bondMirror
		if len(args) == 3 {
			s := wantStr(ip.evalExpr(env, args[2]), "bond strategy")
			var ok bool
			if strat, ok = parseStrategy(s); !ok {
				failUsage(fmt.Sprintf("unknown bond strategy '%s'", s))
			}
		}
		ip.addBond(from, to, strat)
		return Nil

	case "unbond":
		argn(2)
		a := ip.resolveSlot(env, args[0], "unbond")
		b := ip.resolveSlot(env, args[1], "unbond")
		ip.removeBond(a, b)
		return Nil

	case "react":
		argn(2)
		s := ip.resolveSlot(env, args[0], "react")
		cb := ip.evalExpr(env, args[1])
		if cb.Tag != VTFun {
			failUsage("react requires a closure callback")
		}
		ip.addReaction(s, cb.Data.(*Fun))
		return Nil

	case "unreact":
		argn(1)
		ip.clearReactions(ip.resolveSlot(env, args[0], "unreact"))
		return Nil

	case "track":
		argn(1)
		ip.startTracking(ip.resolveSlot(env, args[0], "track"))
		return Nil

	case "phases", "history":
		argn(1)
		s := ip.softResolveSlot(env, args[0])
		if s == nil {
			return Arr(nil)
		}
		return ip.phasesFor(s)

	case "rewind":
		argn(2)
		s := ip.softResolveSlot(env, args[0])
		n := wantInt(ip.evalExpr(env, args[1]), "rewind steps")
		if s == nil {
			return Nil
		}
		return ip.rewindFor(s, n)

	case "pressurize":
		argn(2)
		s := ip.resolveSlot(env, args[0], "pressurize")
		raw := wantStr(ip.evalExpr(env, args[1]), "pressure mode")
		m, ok := parsePressureMode(raw)
		if !ok {
			failUsage(fmt.Sprintf("unknown pressure mode '%s'", raw))
		}
		ip.setPressure(s, m)
		return Nil

	case "depressurize":
		argn(1)
		ip.clearPressure(ip.resolveSlot(env, args[0], "depressurize"))
		return Nil

	case "pressure_of":
		argn(1)
		s := ip.resolveSlot(env, args[0], "pressure_of")
		if m, ok := ip.pressureOf(s); ok {
			return Str(m.String())
		}
		return Nil

	case "seed":
		argn(2)
		s := ip.resolveSlot(env, args[0], "seed")
		pred := ip.evalExpr(env, args[1])
		if pred.Tag != VTFun {
			failUsage("seed requires a predicate closure")
		}
		ip.setSeed(s, pred.Data.(*Fun))
		return Nil

	case "unseed":
		argn(1)
		ip.clearSeed(ip.resolveSlot(env, args[0], "unseed"))
		return Nil

	case "grow":
		argn(1)
		s := ip.resolveSlot(env, args[0], "grow")
		ip.commitFreeze(s, true)
		return DeepClone(s.Val)
	}

	failUsage(fmt.Sprintf("unknown phase operation '%s'", name))
	return Nil
}

func registerPhaseBuiltins(ip *Interpreter) {
	ip.defineBuiltin("phase_of", func(ip *Interpreter, args []Value) Value {
		if len(args) != 1 {
			failUsage("phase_of expects 1 argument")
		}
		return Str(PhaseOf(args[0]).String())
	})
}
