// builtin_math.go: numeric builtins.
package lattice

import (
	"math"
	"math/rand"
	"time"
)

func registerMathBuiltins(ip *Interpreter) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ip.defineBuiltin("random", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 0, "random")
		return Num(rng.Float64())
	})

	ip.defineBuiltin("random_int", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "random_int")
		n := wantInt(args[0], "random_int bound")
		if n <= 0 {
			failUsage("random_int bound must be positive")
		}
		return Int(rng.Int63n(n))
	})

	ip.defineBuiltin("random_seed", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "random_seed")
		rng = rand.New(rand.NewSource(wantInt(args[0], "random_seed seed")))
		return Nil
	})

	math1 := func(name string, fn func(float64) float64) {
		ip.defineBuiltin(name, func(_ *Interpreter, args []Value) Value {
			wantArgs(args, 1, name)
			f, ok := toFloat(args[0])
			if !ok {
				failUsage(name + " requires a number")
			}
			return Num(fn(f))
		})
	}
	math1("sqrt", math.Sqrt)
	math1("sin", math.Sin)
	math1("cos", math.Cos)
	math1("tan", math.Tan)
	math1("log", math.Log)
	math1("exp", math.Exp)

	ip.defineBuiltin("abs", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "abs")
		switch args[0].Tag {
		case VTInt:
			n := args[0].Data.(int64)
			if n < 0 {
				n = -n
			}
			return Int(n)
		case VTNum:
			return Num(math.Abs(args[0].Data.(float64)))
		}
		failUsage("abs requires a number")
		return Nil
	})

	ip.defineBuiltin("floor", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "floor")
		if args[0].Tag == VTInt {
			return args[0]
		}
		f, ok := toFloat(args[0])
		if !ok {
			failUsage("floor requires a number")
		}
		return Int(int64(math.Floor(f)))
	})

	ip.defineBuiltin("ceil", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "ceil")
		if args[0].Tag == VTInt {
			return args[0]
		}
		f, ok := toFloat(args[0])
		if !ok {
			failUsage("ceil requires a number")
		}
		return Int(int64(math.Ceil(f)))
	})

	ip.defineBuiltin("round", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "round")
		if args[0].Tag == VTInt {
			return args[0]
		}
		f, ok := toFloat(args[0])
		if !ok {
			failUsage("round requires a number")
		}
		return Int(int64(math.Round(f)))
	})

	ip.defineBuiltin("pow", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "pow")
		a, aok := toFloat(args[0])
		b, bok := toFloat(args[1])
		if !aok || !bok {
			failUsage("pow requires numbers")
		}
		out := math.Pow(a, b)
		if args[0].Tag == VTInt && args[1].Tag == VTInt && b >= 0 {
			return Int(int64(out))
		}
		return Num(out)
	})

	ip.defineBuiltin("min", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "min")
		if Truthy(compareOp(tLess, args[0], args[1])) {
			return args[0]
		}
		return args[1]
	})

	ip.defineBuiltin("max", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "max")
		if Truthy(compareOp(tGreater, args[0], args[1])) {
			return args[0]
		}
		return args[1]
	})
}
