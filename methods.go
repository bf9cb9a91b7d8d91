// methods.go: receiver-style methods on the built-in types.
//
// Mutating array/map methods clear the phase guard and the pressure guard
// before touching the payload; pressure attaches to the receiver's binding
// slot, so only identifier receivers are constrained.
package lattice

import (
	"fmt"
	"sort"
	"strings"
)

func (ip *Interpreter) evalMethod(env *Env, e MethodCall) Value {
	recv := ip.evalExpr(env, e.Recv)
	args := ip.evalArgs(env, e.Args)
	slot := baseSlot(env, e.Recv)
	ip.curLine = e.Line

	switch recv.Tag {
	case VTArray:
		return ip.arrayMethod(recv, slot, e.Name, args)
	case VTMap:
		return ip.mapMethod(recv, slot, e.Name, args)
	case VTStr:
		return stringMethod(recv.Data.(string), e.Name, args)
	case VTChan:
		return chanMethod(recv.Data.(*Channel), e.Name, args)
	case VTRange:
		return rangeMethod(recv.Data.(*RangeObject), e.Name, args)
	case VTHandle:
		return ip.handleMethod(recv.Data.(*Handle), e.Name, args)
	case VTStruct:
		// a closure-valued field is callable as a method
		so := recv.Data.(*StructObject)
		if idx := so.FieldIndex(e.Name); idx >= 0 && so.FieldValues[idx].Tag == VTFun {
			return ip.callFun(so.FieldValues[idx].Data.(*Fun), args, e.Line)
		}
	}
	failUsage(fmt.Sprintf("%s has no method '%s'", TypeName(recv), e.Name))
	return Nil
}

func (ip *Interpreter) arrayMethod(recv Value, slot *Slot, name string, args []Value) Value {
	ao := recv.Data.(*ArrayObject)
	switch name {
	case "push":
		wantArgs(args, 1, "push")
		guardMutation(recv, "", opGrow)
		if slot != nil {
			ip.guardPressure(slot, opGrow)
		}
		ao.Elems = append(ao.Elems, args[0])
		return Int(int64(len(ao.Elems)))
	case "pop":
		wantArgs(args, 0, "pop")
		guardMutation(recv, "", opShrink)
		if slot != nil {
			ip.guardPressure(slot, opShrink)
		}
		if len(ao.Elems) == 0 {
			return Nil
		}
		v := ao.Elems[len(ao.Elems)-1]
		ao.Elems = ao.Elems[:len(ao.Elems)-1]
		return v
	case "insert":
		wantArgs(args, 2, "insert")
		guardMutation(recv, "", opGrow)
		if slot != nil {
			ip.guardPressure(slot, opGrow)
		}
		i := wantInt(args[0], "insert index")
		if i < 0 || i > int64(len(ao.Elems)) {
			failUsage(fmt.Sprintf("insert index %d out of bounds", i))
		}
		ao.Elems = append(ao.Elems[:i], append([]Value{args[1]}, ao.Elems[i:]...)...)
		return Nil
	case "remove":
		wantArgs(args, 1, "remove")
		guardMutation(recv, "", opShrink)
		if slot != nil {
			ip.guardPressure(slot, opShrink)
		}
		i := wantInt(args[0], "remove index")
		if i < 0 || i >= int64(len(ao.Elems)) {
			failUsage(fmt.Sprintf("remove index %d out of bounds", i))
		}
		v := ao.Elems[i]
		ao.Elems = append(ao.Elems[:i], ao.Elems[i+1:]...)
		return v
	case "len":
		return Int(int64(len(ao.Elems)))
	case "contains":
		wantArgs(args, 1, "contains")
		for _, e := range ao.Elems {
			if Equal(e, args[0]) {
				return Bool(true)
			}
		}
		return Bool(false)
	case "index_of":
		wantArgs(args, 1, "index_of")
		for i, e := range ao.Elems {
			if Equal(e, args[0]) {
				return Int(int64(i))
			}
		}
		return Int(-1)
	case "join":
		wantArgs(args, 1, "join")
		sep := wantStr(args[0], "join separator")
		parts := make([]string, len(ao.Elems))
		for i, e := range ao.Elems {
			parts[i] = Display(e)
		}
		return Str(strings.Join(parts, sep))
	case "first":
		if len(ao.Elems) == 0 {
			return Nil
		}
		return ao.Elems[0]
	case "last":
		if len(ao.Elems) == 0 {
			return Nil
		}
		return ao.Elems[len(ao.Elems)-1]
	case "reverse":
		out := make([]Value, len(ao.Elems))
		for i, e := range ao.Elems {
			out[len(ao.Elems)-1-i] = e
		}
		return Arr(out)
	case "sort":
		out := append([]Value(nil), ao.Elems...)
		sort.SliceStable(out, func(i, j int) bool { return valueLess(out[i], out[j]) })
		return Arr(out)
	case "map":
		wantArgs(args, 1, "map")
		fn := wantFun(args[0], "map")
		out := make([]Value, len(ao.Elems))
		for i, e := range ao.Elems {
			out[i] = ip.callFun(fn, []Value{e}, 0)
		}
		return Arr(out)
	case "filter":
		wantArgs(args, 1, "filter")
		fn := wantFun(args[0], "filter")
		var out []Value
		for _, e := range ao.Elems {
			if Truthy(ip.callFun(fn, []Value{e}, 0)) {
				out = append(out, e)
			}
		}
		return Arr(out)
	case "reduce":
		wantArgs(args, 2, "reduce")
		fn := wantFun(args[0], "reduce")
		acc := args[1]
		for _, e := range ao.Elems {
			acc = ip.callFun(fn, []Value{acc, e}, 0)
		}
		return acc
	}
	failUsage(fmt.Sprintf("array has no method '%s'", name))
	return Nil
}

func (ip *Interpreter) mapMethod(recv Value, slot *Slot, name string, args []Value) Value {
	mo := recv.Data.(*MapObject)
	switch name {
	case "keys":
		out := make([]Value, len(mo.Keys))
		for i, k := range mo.Keys {
			out[i] = Str(k)
		}
		return Arr(out)
	case "values":
		out := make([]Value, len(mo.Keys))
		for i, k := range mo.Keys {
			out[i], _ = mo.Get(k)
		}
		return Arr(out)
	case "len":
		return Int(int64(len(mo.Keys)))
	case "has":
		wantArgs(args, 1, "has")
		_, ok := mo.Get(wantStr(args[0], "map key"))
		return Bool(ok)
	case "get":
		if len(args) < 1 || len(args) > 2 {
			failUsage("get expects 1 or 2 arguments")
		}
		if v, ok := mo.Get(wantStr(args[0], "map key")); ok {
			return v
		}
		if len(args) == 2 {
			return args[1]
		}
		return Nil
	case "set":
		wantArgs(args, 2, "set")
		key := wantStr(args[0], "map key")
		if _, ok := mo.Get(key); ok {
			guardMutation(recv, key, opIndexSet)
		} else {
			guardMutation(recv, key, opGrow)
			if slot != nil {
				ip.guardPressure(slot, opGrow)
			}
		}
		mo.Set(key, args[1])
		return Nil
	case "remove":
		wantArgs(args, 1, "remove")
		key := wantStr(args[0], "map key")
		guardMutation(recv, key, opShrink)
		if slot != nil {
			ip.guardPressure(slot, opShrink)
		}
		return Bool(mo.Remove(key))
	}
	failUsage(fmt.Sprintf("map has no method '%s'", name))
	return Nil
}

func stringMethod(s, name string, args []Value) Value {
	switch name {
	case "len":
		return Int(int64(len(s)))
	case "upper":
		return Str(strings.ToUpper(s))
	case "lower":
		return Str(strings.ToLower(s))
	case "trim":
		return Str(strings.TrimSpace(s))
	case "split":
		wantArgs(args, 1, "split")
		parts := strings.Split(s, wantStr(args[0], "split separator"))
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return Arr(out)
	case "contains":
		wantArgs(args, 1, "contains")
		return Bool(strings.Contains(s, wantStr(args[0], "substring")))
	case "starts_with":
		wantArgs(args, 1, "starts_with")
		return Bool(strings.HasPrefix(s, wantStr(args[0], "prefix")))
	case "ends_with":
		wantArgs(args, 1, "ends_with")
		return Bool(strings.HasSuffix(s, wantStr(args[0], "suffix")))
	case "replace":
		wantArgs(args, 2, "replace")
		return Str(strings.ReplaceAll(s, wantStr(args[0], "pattern"), wantStr(args[1], "replacement")))
	case "chars":
		out := make([]Value, 0, len(s))
		for _, ch := range s {
			out = append(out, Str(string(ch)))
		}
		return Arr(out)
	case "repeat":
		wantArgs(args, 1, "repeat")
		n := wantInt(args[0], "repeat count")
		if n < 0 {
			n = 0
		}
		return Str(strings.Repeat(s, int(n)))
	}
	failUsage(fmt.Sprintf("string has no method '%s'", name))
	return Nil
}

func chanMethod(c *Channel, name string, args []Value) Value {
	switch name {
	case "send":
		wantArgs(args, 1, "send")
		c.Send(args[0])
		return Nil
	case "recv":
		wantArgs(args, 0, "recv")
		return c.Recv()
	case "len":
		return Int(int64(c.Len()))
	case "close":
		c.Close()
		return Nil
	}
	failUsage(fmt.Sprintf("channel has no method '%s'", name))
	return Nil
}

func rangeMethod(r *RangeObject, name string, args []Value) Value {
	switch name {
	case "len":
		n := r.End - r.Start
		if n < 0 {
			n = 0
		}
		return Int(n)
	case "to_array":
		var out []Value
		for i := r.Start; i < r.End; i++ {
			out = append(out, Int(i))
		}
		return Arr(out)
	}
	failUsage(fmt.Sprintf("range has no method '%s'", name))
	return Nil
}

func wantArgs(args []Value, n int, what string) {
	if len(args) != n {
		failUsage(fmt.Sprintf("%s expects %d argument(s), got %d", what, n, len(args)))
	}
}

func wantFun(v Value, what string) *Fun {
	if v.Tag != VTFun {
		failUsage(fmt.Sprintf("%s requires a closure, got %s", what, TypeName(v)))
	}
	return v.Data.(*Fun)
}

func valueLess(a, b Value) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	if a.Tag == VTStr && b.Tag == VTStr {
		return a.Data.(string) < b.Data.(string)
	}
	return TypeName(a) < TypeName(b)
}
