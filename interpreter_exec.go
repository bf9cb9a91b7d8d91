// interpreter_exec.go: the tree-walking evaluator.
//
// Errors travel as evalErr panics (see errors.go); return/break/continue
// travel as their own panic signals, recovered at function and loop
// boundaries. Every container mutation funnels through assign(), which
// stacks the phase guard, the pressure guard and the alloy guard before
// touching the value.
package lattice

import (
	"fmt"
	"strings"
)

type returnSignal struct{ v Value }
type breakSignal struct{}
type continueSignal struct{}

// execStmts runs a statement list and yields the last statement's value.
func (ip *Interpreter) execStmts(env *Env, stmts []Stmt) Value {
	out := Nil
	for _, s := range stmts {
		out = ip.execStmt(env, s)
	}
	return out
}

func (ip *Interpreter) execStmt(env *Env, st Stmt) Value {
	switch s := st.(type) {
	case BindStmt:
		ip.curLine = s.Line
		v := ip.evalExpr(env, s.Init)
		switch s.Kind {
		case BindFlux:
			if v.Phase == PhaseUnphased && !isComposite(v) {
				v.Phase = PhaseFluid
			}
		case BindFix:
			v = freezeValue(v)
		}
		env.Define(ip, s.Name, v, s.Kind)
		return Nil

	case AssignStmt:
		ip.curLine = s.Line
		ip.assign(env, s.Target, s.Op, s.Value)
		return Nil

	case ExprStmt:
		return ip.evalExpr(env, s.E)

	case ReturnStmt:
		v := Nil
		if s.E != nil {
			v = ip.evalExpr(env, s.E)
		}
		panic(returnSignal{v: v})

	case BreakStmt:
		panic(breakSignal{})

	case ContinueStmt:
		panic(continueSignal{})

	case WhileStmt:
		for {
			if !Truthy(ip.evalExpr(env, s.Cond)) {
				break
			}
			if ip.runLoopBody(NewEnv(env), s.Body) {
				break
			}
		}
		return Nil

	case LoopStmt:
		for {
			if ip.runLoopBody(NewEnv(env), s.Body) {
				break
			}
		}
		return Nil

	case ForStmt:
		ip.execFor(env, s)
		return Nil

	case FnDecl:
		fn := &Fun{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
		// Top-level declarations join the overload registry even when the
		// script runs in a child of the global scope. Module files keep
		// their functions in the module scope so they export by name.
		if ip.depth == 0 && len(ip.loading) == 0 {
			ip.declareFn(fn)
		} else {
			env.Define(ip, s.Name, FunVal(fn), BindLet)
		}
		return Nil

	case StructDecl:
		ip.declareStruct(s.Name, s.Fields)
		return Nil

	case TryStmt:
		return ip.execTry(env, s)

	case ImportStmt:
		ip.execImport(env, s)
		return Nil
	}
	fail("unknown statement")
	return Nil
}

// runLoopBody reports true when the body broke out of the loop.
func (ip *Interpreter) runLoopBody(env *Env, body []Stmt) (broke bool) {
	defer func() {
		switch r := recover(); r {
		case nil:
		default:
			if _, ok := r.(breakSignal); ok {
				broke = true
				return
			}
			if _, ok := r.(continueSignal); ok {
				return
			}
			panic(r)
		}
	}()
	ip.execStmts(env, body)
	return false
}

func (ip *Interpreter) execFor(env *Env, s ForStmt) {
	iter := ip.evalExpr(env, s.Iter)
	step := func(v Value) bool {
		loopEnv := NewEnv(env)
		loopEnv.Define(ip, s.Var, v, BindFlux)
		return ip.runLoopBody(loopEnv, s.Body)
	}
	switch iter.Tag {
	case VTRange:
		r := iter.Data.(*RangeObject)
		for i := r.Start; i < r.End; i++ {
			if step(Int(i)) {
				return
			}
		}
	case VTArray:
		for _, e := range iter.Data.(*ArrayObject).Elems {
			if step(e) {
				return
			}
		}
	case VTMap:
		mo := iter.Data.(*MapObject)
		for _, k := range append([]string(nil), mo.Keys...) {
			if step(Str(k)) {
				return
			}
		}
	case VTStr:
		for _, ch := range iter.Data.(string) {
			if step(Str(string(ch))) {
				return
			}
		}
	default:
		failUsage(fmt.Sprintf("cannot iterate over %s", TypeName(iter)))
	}
}

func (ip *Interpreter) execTry(env *Env, s TryStmt) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			ee, ok := r.(evalErr)
			if !ok {
				panic(r)
			}
			catchEnv := NewEnv(env)
			catchEnv.Define(ip, s.ErrName, Str(ee.msg), BindFlux)
			out = ip.execStmts(catchEnv, s.Catch)
		}
	}()
	return ip.execStmts(NewEnv(env), s.Body)
}

// --- assignment -------------------------------------------------------------

func (ip *Interpreter) assign(env *Env, target Expr, op TokenType, rhs Expr) {
	newVal := func(old Value) Value {
		v := ip.evalExpr(env, rhs)
		if op == tAssign {
			return v
		}
		return binaryOp(compoundBase(op), old, v)
	}

	switch t := target.(type) {
	case Ident:
		s, ok := env.Resolve(t.Name)
		if !ok {
			failUsage(fmt.Sprintf("undefined variable '%s'", t.Name))
		}
		v := newVal(s.Val)
		env.Set(t.Name, v)
		ip.recordHistory(s)

	case FieldAccess:
		obj := ip.evalExpr(env, t.X)
		ip.setMember(env, t.X, obj, t.Name, newVal(ip.member(obj, t.Name)))

	case Index:
		obj := ip.evalExpr(env, t.X)
		idx := ip.evalExpr(env, t.Idx)
		switch obj.Tag {
		case VTArray:
			ao := obj.Data.(*ArrayObject)
			i := arrayIndex(ao, idx)
			guardMutation(obj, "", opIndexSet)
			ao.Elems[i] = newVal(ao.Elems[i])
		case VTMap:
			key := wantStr(idx, "map key")
			mo := obj.Data.(*MapObject)
			old, exists := mo.Get(key)
			if exists {
				guardMutation(obj, key, opIndexSet)
			} else {
				guardMutation(obj, key, opGrow)
				if s := baseSlot(env, t.X); s != nil {
					ip.guardPressure(s, opGrow)
				}
			}
			mo.Set(key, newVal(old))
		case VTStruct:
			ip.setMember(env, t.X, obj, wantStr(idx, "field name"), newVal(ip.member(obj, wantStr(idx, "field name"))))
		default:
			failUsage(fmt.Sprintf("cannot index-assign into %s", TypeName(obj)))
		}

	default:
		failUsage("invalid assignment target")
	}
}

// setMember writes a struct field or map key, applying alloy, phase and
// pressure guards in that order.
func (ip *Interpreter) setMember(env *Env, baseExpr Expr, obj Value, name string, v Value) {
	switch obj.Tag {
	case VTStruct:
		so := obj.Data.(*StructObject)
		idx := so.FieldIndex(name)
		if idx < 0 {
			failUsage(fmt.Sprintf("struct %s has no field '%s'", so.Name, name))
		}
		if ip.guardFieldAssign(so, name) {
			guardMutation(obj, name, opFieldSet)
		}
		so.FieldValues[idx] = v
	case VTMap:
		mo := obj.Data.(*MapObject)
		_, exists := mo.Get(name)
		if exists {
			guardMutation(obj, name, opIndexSet)
		} else {
			guardMutation(obj, name, opGrow)
			if s := baseSlot(env, baseExpr); s != nil {
				ip.guardPressure(s, opGrow)
			}
		}
		mo.Set(name, v)
	default:
		failUsage(fmt.Sprintf("cannot set field '%s' on %s", name, TypeName(obj)))
	}
}

// baseSlot resolves the slot behind an expression when it is a bare
// identifier; pressure constraints attach to slots, so non-identifier
// bases have no constraint to consult.
func baseSlot(env *Env, e Expr) *Slot {
	id, ok := e.(Ident)
	if !ok {
		return nil
	}
	s, _ := env.Resolve(id.Name)
	return s
}

func compoundBase(op TokenType) TokenType {
	switch op {
	case tPlusEq:
		return tPlus
	case tMinusEq:
		return tMinus
	case tStarEq:
		return tStar
	case tSlashEq:
		return tSlash
	case tPercentEq:
		return tPercent
	}
	return op
}

// --- expressions ------------------------------------------------------------

func (ip *Interpreter) evalExpr(env *Env, ex Expr) Value {
	switch e := ex.(type) {
	case IntLit:
		return Int(e.V)
	case FloatLit:
		return Num(e.V)
	case StrLit:
		return Str(e.V)
	case BoolLit:
		return Bool(e.V)
	case NilLit:
		return Nil

	case InterpStr:
		var b strings.Builder
		for i, part := range e.Parts {
			b.WriteString(part)
			if i < len(e.Exprs) {
				b.WriteString(Display(ip.evalExpr(env, e.Exprs[i])))
			}
		}
		return Str(b.String())

	case Ident:
		return env.Get(e.Name)

	case Binary:
		return ip.evalBinary(env, e)

	case Unary:
		v := ip.evalExpr(env, e.X)
		switch e.Op {
		case tMinus:
			switch v.Tag {
			case VTInt:
				return Int(-v.Data.(int64))
			case VTNum:
				return Num(-v.Data.(float64))
			}
			failUsage(fmt.Sprintf("cannot negate %s", TypeName(v)))
		case tBang:
			return Bool(!Truthy(v))
		}

	case Call:
		return ip.evalCall(env, e)

	case MethodCall:
		return ip.evalMethod(env, e)

	case StaticCall:
		return ip.evalStatic(env, e)

	case FieldAccess:
		return ip.member(ip.evalExpr(env, e.X), e.Name)

	case Index:
		return ip.evalIndex(env, e)

	case ArrayLit:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = ip.evalExpr(env, el)
		}
		return Arr(elems)

	case TupleLit:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = ip.evalExpr(env, el)
		}
		return Value{Tag: VTTuple, Data: &TupleObject{Elems: elems, Phase: PhaseFluid}}

	case StructLit:
		return ip.evalStructLit(env, e)

	case ClosureLit:
		return FunVal(&Fun{Params: e.Params, Body: e.Body, Expr: e.Expr, Env: env})

	case IfExpr:
		if Truthy(ip.evalExpr(env, e.Cond)) {
			return ip.execStmts(NewEnv(env), e.Then)
		}
		if e.Else != nil {
			return ip.execStmts(NewEnv(env), e.Else)
		}
		return Nil

	case MatchExpr:
		return ip.evalMatch(env, e)

	case FreezeExpr:
		return ip.evalFreeze(env, e)

	case ThawExpr:
		if s := baseSlot(env, e.X); s != nil {
			ip.commitThaw(s)
			return DeepClone(s.Val)
		}
		return thawValue(ip.evalExpr(env, e.X))

	case SublimateExpr:
		if s := baseSlot(env, e.X); s != nil {
			ip.commitSublimate(s)
			return DeepClone(s.Val)
		}
		return sublimateValue(ip.evalExpr(env, e.X))

	case CloneExpr:
		return DeepClone(ip.evalExpr(env, e.X))

	case AnnealExpr:
		fn := ip.wantClosure(env, e.Transform, "anneal")
		if s := baseSlot(env, e.Target); s != nil {
			return ip.runAnneal(s, fn)
		}
		return ip.annealValue(ip.evalExpr(env, e.Target), fn)

	case CrystallizeExpr:
		return ip.evalCrystallize(env, e)

	case SpawnExpr:
		ip.spawnTask(env, e.Body)
		return Nil

	case ScopeExpr:
		return ip.runScope(env, e.Body)

	case PrintExpr:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = Display(ip.evalExpr(env, a))
		}
		fmt.Fprintln(ip.stdout, strings.Join(parts, " "))
		return Nil
	}
	fail("unknown expression")
	return Nil
}

func (ip *Interpreter) evalBinary(env *Env, e Binary) Value {
	switch e.Op {
	case tAnd:
		l := ip.evalExpr(env, e.L)
		if !Truthy(l) {
			return Bool(false)
		}
		return Bool(Truthy(ip.evalExpr(env, e.R)))
	case tOr:
		l := ip.evalExpr(env, e.L)
		if Truthy(l) {
			return Bool(true)
		}
		return Bool(Truthy(ip.evalExpr(env, e.R)))
	}
	l := ip.evalExpr(env, e.L)
	r := ip.evalExpr(env, e.R)
	ip.curLine = e.Line
	return binaryOp(e.Op, l, r)
}

func binaryOp(op TokenType, l, r Value) Value {
	switch op {
	case tDotDot:
		if l.Tag != VTInt || r.Tag != VTInt {
			failUsage("range bounds must be integers")
		}
		return Value{Tag: VTRange, Data: &RangeObject{Start: l.Data.(int64), End: r.Data.(int64)}}
	case tEq:
		return Bool(Equal(l, r))
	case tNotEq:
		return Bool(!Equal(l, r))
	case tLess, tLessEq, tGreater, tGreaterEq:
		return compareOp(op, l, r)
	case tPlus:
		if l.Tag == VTStr || r.Tag == VTStr {
			return Str(Display(l) + Display(r))
		}
		if l.Tag == VTArray && r.Tag == VTArray {
			la, ra := l.Data.(*ArrayObject), r.Data.(*ArrayObject)
			out := make([]Value, 0, len(la.Elems)+len(ra.Elems))
			out = append(out, la.Elems...)
			out = append(out, ra.Elems...)
			return Arr(out)
		}
		return numericOp(op, l, r)
	case tMinus, tStar, tSlash, tPercent:
		return numericOp(op, l, r)
	}
	failUsage("unsupported operator")
	return Nil
}

func numericOp(op TokenType, l, r Value) Value {
	if l.Tag == VTInt && r.Tag == VTInt {
		a, b := l.Data.(int64), r.Data.(int64)
		switch op {
		case tPlus:
			return Int(a + b)
		case tMinus:
			return Int(a - b)
		case tStar:
			return Int(a * b)
		case tSlash:
			if b == 0 {
				fail("division by zero")
			}
			return Int(a / b)
		case tPercent:
			if b == 0 {
				fail("division by zero")
			}
			return Int(a % b)
		}
	}
	af, aok := toFloat(l)
	bf, bok := toFloat(r)
	if !aok || !bok {
		failUsage(fmt.Sprintf("invalid operands for arithmetic: %s and %s", TypeName(l), TypeName(r)))
	}
	switch op {
	case tPlus:
		return Num(af + bf)
	case tMinus:
		return Num(af - bf)
	case tStar:
		return Num(af * bf)
	case tSlash:
		if bf == 0 {
			fail("division by zero")
		}
		return Num(af / bf)
	case tPercent:
		failUsage("modulo requires integer operands")
	}
	return Nil
}

func compareOp(op TokenType, l, r Value) Value {
	if l.Tag == VTStr && r.Tag == VTStr {
		a, b := l.Data.(string), r.Data.(string)
		switch op {
		case tLess:
			return Bool(a < b)
		case tLessEq:
			return Bool(a <= b)
		case tGreater:
			return Bool(a > b)
		case tGreaterEq:
			return Bool(a >= b)
		}
	}
	af, aok := toFloat(l)
	bf, bok := toFloat(r)
	if !aok || !bok {
		failUsage(fmt.Sprintf("cannot compare %s and %s", TypeName(l), TypeName(r)))
	}
	switch op {
	case tLess:
		return Bool(af < bf)
	case tLessEq:
		return Bool(af <= bf)
	case tGreater:
		return Bool(af > bf)
	case tGreaterEq:
		return Bool(af >= bf)
	}
	return Nil
}

func toFloat(v Value) (float64, bool) {
	switch v.Tag {
	case VTInt:
		return float64(v.Data.(int64)), true
	case VTNum:
		return v.Data.(float64), true
	}
	return 0, false
}

// --- calls ------------------------------------------------------------------

func (ip *Interpreter) evalCall(env *Env, e Call) Value {
	ip.curLine = e.Line
	if id, ok := e.Callee.(Ident); ok {
		if isPhaseForm(id.Name) {
			return ip.evalPhaseForm(env, id.Name, e.Args)
		}
		if set, isOverloaded := ip.overloads[id.Name]; isOverloaded {
			// a local binding shadows the overload set
			useSet := true
			if s, found := env.Resolve(id.Name); found {
				if s.Val.Tag != VTFun || !funInSet(set, s.Val.Data.(*Fun)) {
					useSet = false
				}
			}
			if useSet {
				args := ip.evalArgs(env, e.Args)
				fn, _ := ip.resolveOverload(id.Name, args)
				return ip.callFun(fn, args, e.Line)
			}
		}
	}
	callee := ip.evalExpr(env, e.Callee)
	if callee.Tag != VTFun {
		failUsage(fmt.Sprintf("cannot call %s", TypeName(callee)))
	}
	args := ip.evalArgs(env, e.Args)
	return ip.callFun(callee.Data.(*Fun), args, e.Line)
}

func (ip *Interpreter) evalArgs(env *Env, exprs []Expr) []Value {
	args := make([]Value, len(exprs))
	for i, a := range exprs {
		args[i] = ip.evalExpr(env, a)
	}
	return args
}

// callFun invokes any callable with a depth guard and qualifier checks.
func (ip *Interpreter) callFun(fn *Fun, args []Value, line int) Value {
	if fn.Native != nil {
		return fn.Native(ip, args)
	}
	if ip.depth >= maxCallDepth {
		fail("call stack overflow")
	}
	checkParamQuals(fn, args)
	if len(args) != len(fn.Params) {
		failUsage(fmt.Sprintf("%s expects %d arguments, got %d", fnLabel(fn), len(fn.Params), len(args)))
	}
	callEnv := NewEnv(fn.Env)
	for i, p := range fn.Params {
		callEnv.Define(ip, p.Name, args[i], BindFlux)
	}
	prevFn := ip.curFn
	if fn.Name != "" {
		ip.curFn = fn.Name
	}
	ip.depth++
	defer func() {
		ip.depth--
		ip.curFn = prevFn
	}()

	if fn.Expr != nil {
		return ip.evalExpr(callEnv, fn.Expr)
	}
	return ip.runBody(callEnv, fn.Body)
}

// runBody executes a function body, turning a return signal into a value.
func (ip *Interpreter) runBody(env *Env, body []Stmt) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			if rs, ok := r.(returnSignal); ok {
				out = rs.v
				return
			}
			panic(r)
		}
	}()
	return ip.execStmts(env, body)
}

func (ip *Interpreter) wantClosure(env *Env, e Expr, what string) *Fun {
	v := ip.evalExpr(env, e)
	if v.Tag != VTFun {
		failUsage(fmt.Sprintf("%s requires a closure, got %s", what, TypeName(v)))
	}
	return v.Data.(*Fun)
}

// --- member access and indexing ---------------------------------------------

func (ip *Interpreter) member(obj Value, name string) Value {
	switch obj.Tag {
	case VTStruct:
		so := obj.Data.(*StructObject)
		idx := so.FieldIndex(name)
		if idx < 0 {
			failUsage(fmt.Sprintf("struct %s has no field '%s'", so.Name, name))
		}
		return so.FieldValues[idx]
	case VTMap:
		mo := obj.Data.(*MapObject)
		if v, ok := mo.Get(name); ok {
			return v
		}
		return Nil
	}
	failUsage(fmt.Sprintf("%s has no field '%s'", TypeName(obj), name))
	return Nil
}

func (ip *Interpreter) evalIndex(env *Env, e Index) Value {
	obj := ip.evalExpr(env, e.X)
	idx := ip.evalExpr(env, e.Idx)
	switch obj.Tag {
	case VTArray:
		ao := obj.Data.(*ArrayObject)
		if idx.Tag == VTRange {
			r := idx.Data.(*RangeObject)
			return Arr(sliceRange(ao.Elems, r))
		}
		return ao.Elems[arrayIndex(ao, idx)]
	case VTMap:
		key := wantStr(idx, "map key")
		if v, ok := obj.Data.(*MapObject).Get(key); ok {
			return v
		}
		return Nil
	case VTStr:
		s := obj.Data.(string)
		if idx.Tag == VTRange {
			r := idx.Data.(*RangeObject)
			lo, hi := clampRange(r, int64(len(s)))
			return Str(s[lo:hi])
		}
		i := wantInt(idx, "string index")
		if i < 0 || i >= int64(len(s)) {
			failUsage(fmt.Sprintf("string index %d out of bounds", i))
		}
		return Str(string(s[i]))
	case VTStruct:
		return ip.member(obj, wantStr(idx, "field name"))
	case VTTuple:
		to := obj.Data.(*TupleObject)
		i := wantInt(idx, "tuple index")
		if i < 0 || i >= int64(len(to.Elems)) {
			failUsage(fmt.Sprintf("tuple index %d out of bounds", i))
		}
		return to.Elems[i]
	}
	failUsage(fmt.Sprintf("cannot index %s", TypeName(obj)))
	return Nil
}

func arrayIndex(ao *ArrayObject, idx Value) int64 {
	i := wantInt(idx, "array index")
	if i < 0 {
		i += int64(len(ao.Elems))
	}
	if i < 0 || i >= int64(len(ao.Elems)) {
		failUsage(fmt.Sprintf("array index %d out of bounds (len %d)", idx.Data, len(ao.Elems)))
	}
	return i
}

func sliceRange(elems []Value, r *RangeObject) []Value {
	lo, hi := clampRange(r, int64(len(elems)))
	out := make([]Value, hi-lo)
	copy(out, elems[lo:hi])
	return out
}

func clampRange(r *RangeObject, n int64) (int64, int64) {
	lo, hi := r.Start, r.End
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func wantStr(v Value, what string) string {
	if v.Tag != VTStr {
		failUsage(fmt.Sprintf("%s must be a string, got %s", what, TypeName(v)))
	}
	return v.Data.(string)
}

func wantInt(v Value, what string) int64 {
	if v.Tag != VTInt {
		failUsage(fmt.Sprintf("%s must be an integer, got %s", what, TypeName(v)))
	}
	return v.Data.(int64)
}

func isComposite(v Value) bool {
	switch v.Tag {
	case VTArray, VTMap, VTStruct, VTTuple:
		return true
	}
	return false
}

// --- struct literals --------------------------------------------------------

func (ip *Interpreter) evalStructLit(env *Env, e StructLit) Value {
	st, declared := ip.structType(e.Name)
	if declared {
		for _, fn := range e.FieldNames {
			found := false
			for _, f := range st.Fields {
				if f.Name == fn {
					found = true
					break
				}
			}
			if !found {
				failUsage(fmt.Sprintf("struct %s has no field '%s'", e.Name, fn))
			}
		}
	}
	so := &StructObject{
		Name:        e.Name,
		FieldNames:  append([]string(nil), e.FieldNames...),
		FieldValues: make([]Value, len(e.FieldValues)),
		Phase:       PhaseFluid,
	}
	for i, fe := range e.FieldValues {
		v := ip.evalExpr(env, fe)
		// fix-declared fields freeze at construction
		if declared && st.fieldQual(e.FieldNames[i]) == AlloyFix {
			v = freezeValue(v)
		}
		so.FieldValues[i] = v
	}
	return Value{Tag: VTStruct, Data: so}
}

// --- match ------------------------------------------------------------------

func (ip *Interpreter) evalMatch(env *Env, e MatchExpr) Value {
	scrut := ip.evalExpr(env, e.Scrutinee)
	for _, arm := range e.Arms {
		armEnv := NewEnv(env)
		if ip.matchPattern(armEnv, arm.Pat, scrut) {
			return ip.evalExpr(armEnv, arm.Body)
		}
	}
	fail("no match arm matched")
	return Nil
}

func (ip *Interpreter) matchPattern(env *Env, pat Pattern, v Value) bool {
	if !matchPhaseQual(pat.Qual, v) {
		return false
	}
	switch pat.Kind {
	case PatWildcard:
		return true
	case PatBind:
		env.Define(ip, pat.Name, v, BindFlux)
		return true
	case PatLiteral:
		return Equal(ip.evalExpr(env, pat.Lit), v)
	case PatArray:
		if v.Tag != VTArray {
			return false
		}
		elems := v.Data.(*ArrayObject).Elems
		if len(elems) != len(pat.Elems) {
			return false
		}
		for i, sub := range pat.Elems {
			if !ip.matchPattern(env, sub, elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// --- freeze / crystallize ---------------------------------------------------

func (ip *Interpreter) evalFreeze(env *Env, e FreezeExpr) Value {
	ip.curLine = e.Line

	// freeze(s.field) / freeze(m["k"]): sub-location override only
	switch t := e.Target.(type) {
	case FieldAccess:
		container := ip.evalExpr(env, t.X)
		freezeSubLocation(container, t.Name)
		return DeepClone(ip.member(container, t.Name))
	case Index:
		container := ip.evalExpr(env, t.X)
		key := wantStr(ip.evalExpr(env, t.Idx), "map key")
		freezeSubLocation(container, key)
		return DeepClone(ip.member(container, key))
	}

	var except []string
	for _, ke := range e.Except {
		except = append(except, wantStr(ip.evalExpr(env, ke), "except key"))
	}

	s := baseSlot(env, e.Target)
	if s == nil {
		// value-level freeze: no slot, no contract registry interplay
		v := ip.evalExpr(env, e.Target)
		if e.Where != nil {
			ip.runFreezeContract(ip.wantClosure(env, e.Where, "freeze where"), v)
		}
		if len(except) > 0 {
			return freezeExcept(v, except)
		}
		return freezeValue(v)
	}

	if e.Where != nil {
		ip.runFreezeContract(ip.wantClosure(env, e.Where, "freeze where"), s.Val)
	}
	if len(except) > 0 {
		ip.commitFreezeExcept(s, except)
	} else {
		ip.commitFreeze(s, false)
	}
	return DeepClone(s.Val)
}

// commitFreezeExcept runs the normal commit pipeline with the trigger
// slot's freeze replaced by a freeze-except.
func (ip *Interpreter) commitFreezeExcept(s *Slot, except []string) {
	ip.validateSeeds(s, false)
	closure := ip.mirrorClosure(s)
	for _, cs := range closure {
		for _, e := range ip.bonds[cs] {
			if e.strategy == bondGate && PhaseOf(e.to.Val) != PhaseCrystal {
				failState(fmt.Sprintf("gate bond: '%s' must be crystal before '%s' can freeze",
					e.to.Name, cs.Name))
			}
		}
	}
	var commits []commitRec
	for i, cs := range closure {
		if i == 0 {
			cs.Val = freezeExcept(cs.Val, except)
		} else {
			cs.Val = freezeValue(cs.Val)
		}
		commits = append(commits, commitRec{slot: cs, phase: PhaseCrystal})
	}
	ip.notifyCommits(commits)
}

func (ip *Interpreter) evalCrystallize(env *Env, e CrystallizeExpr) Value {
	s := baseSlot(env, e.Target)
	if s == nil {
		failUsage("crystallize requires an identifier")
	}
	prior := PhaseOf(s.Val)
	if prior == PhaseCrystal {
		// already crystal: run the block, no phase change either side
		return ip.execStmts(NewEnv(env), e.Body)
	}
	// Entry is a real freeze: seeds, gates, cascade, reactions, history.
	ip.commitFreeze(s, false)
	defer func() {
		// Restore the prior phase only. Writes made through flux fields
		// inside the window persist.
		switch prior {
		case PhaseSublimated:
			s.Val = sublimateValue(thawValue(s.Val))
		case PhaseFluid:
			s.Val = thawValue(s.Val)
		default:
			setPhaseDeep(&s.Val, prior)
		}
		ip.notifyCommits([]commitRec{{slot: s, phase: PhaseOf(s.Val)}})
	}()
	return ip.execStmts(NewEnv(env), e.Body)
}

// --- static calls -----------------------------------------------------------

func (ip *Interpreter) evalStatic(env *Env, e StaticCall) Value {
	switch e.Type + "::" + e.Name {
	case "Map::new":
		return NewMap()
	case "Array::new":
		return Arr(nil)
	case "Chan::new":
		return ChanVal()
	}
	failUsage(fmt.Sprintf("unknown static call %s::%s", e.Type, e.Name))
	return Nil
}
