// builtin_json.go: JSON encode/decode plus the Value<->Go bridging used
// by every serialization builtin.
package lattice

import (
	"encoding/json"
	"fmt"
	"sort"
)

// valueToGo lowers a Value into plain Go data for the serializers. Phases
// are not part of the wire format; a round-trip yields fresh fluid
// composites.
func valueToGo(v Value) interface{} {
	switch v.Tag {
	case VTNil:
		return nil
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64)
	case VTNum:
		return v.Data.(float64)
	case VTStr:
		return v.Data.(string)
	case VTArray:
		ao := v.Data.(*ArrayObject)
		out := make([]interface{}, len(ao.Elems))
		for i, e := range ao.Elems {
			out[i] = valueToGo(e)
		}
		return out
	case VTTuple:
		to := v.Data.(*TupleObject)
		out := make([]interface{}, len(to.Elems))
		for i, e := range to.Elems {
			out[i] = valueToGo(e)
		}
		return out
	case VTMap:
		mo := v.Data.(*MapObject)
		out := make(map[string]interface{}, len(mo.Keys))
		for _, k := range mo.Keys {
			e, _ := mo.Get(k)
			out[k] = valueToGo(e)
		}
		return out
	case VTStruct:
		so := v.Data.(*StructObject)
		out := make(map[string]interface{}, len(so.FieldNames))
		for i, fn := range so.FieldNames {
			out[fn] = valueToGo(so.FieldValues[i])
		}
		return out
	}
	failUsage(fmt.Sprintf("cannot serialize %s", TypeName(v)))
	return nil
}

// goToValue lifts decoded Go data back into Values. Map keys are sorted
// so decoding is deterministic.
func goToValue(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Nil
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float64:
		if t == float64(int64(t)) && t >= -1e15 && t <= 1e15 {
			return Int(int64(t))
		}
		return Num(t)
	case string:
		return Str(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = goToValue(e)
		}
		return Arr(out)
	case map[string]interface{}:
		m := NewMap()
		mo := m.Data.(*MapObject)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			mo.Set(k, goToValue(t[k]))
		}
		return m
	case map[interface{}]interface{}:
		m := NewMap()
		mo := m.Data.(*MapObject)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, fmt.Sprint(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			for rk, rv := range t {
				if fmt.Sprint(rk) == k {
					mo.Set(k, goToValue(rv))
					break
				}
			}
		}
		return m
	}
	failUsage(fmt.Sprintf("cannot decode value of type %T", x))
	return Nil
}

func registerJSONBuiltins(ip *Interpreter) {
	ip.defineBuiltin("json_encode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "json_encode")
		b, err := json.Marshal(valueToGo(args[0]))
		if err != nil {
			fail("json_encode: " + err.Error())
		}
		return Str(string(b))
	})

	ip.defineBuiltin("json_encode_pretty", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "json_encode_pretty")
		b, err := json.MarshalIndent(valueToGo(args[0]), "", "  ")
		if err != nil {
			fail("json_encode_pretty: " + err.Error())
		}
		return Str(string(b))
	})

	ip.defineBuiltin("json_decode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "json_decode")
		var out interface{}
		if err := json.Unmarshal([]byte(wantStr(args[0], "json_decode input")), &out); err != nil {
			fail("json_decode: " + err.Error())
		}
		return goToValue(out)
	})
}
