// value.go: runtime value representation for Lattice.
//
// Every Value carries a tag, a payload, and a phase. Scalars keep their phase
// inline (copied with the value); composite payloads are heap objects shared
// by reference, so a freeze through one binding is observable through every
// alias of the same object.
package lattice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil    ValueTag = iota // nil (no payload)
	VTBool                   // bool
	VTInt                    // int64
	VTNum                    // float64
	VTStr                    // string
	VTRange                  // *RangeObject
	VTArray                  // *ArrayObject
	VTMap                    // *MapObject (ordered)
	VTStruct                 // *StructObject
	VTTuple                  // *TupleObject
	VTFun                    // *Fun
	VTChan                   // *Channel
	VTHandle                 // *Handle (opaque host handle)
)

// Value is the universal runtime carrier.
//
//   - Tag:   discriminant indicating which payload is active.
//   - Data:  Go value appropriate for Tag (int64 for VTInt, etc).
//   - Phase: phase tag for scalar values. Composite values ignore this
//     field; their phase lives on the shared payload object (see PhaseOf).
type Value struct {
	Tag   ValueTag
	Data  interface{}
	Phase Phase
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

func Bool(b bool) Value   { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value   { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value  { return Value{Tag: VTStr, Data: s} }

// ArrayObject is the shared payload of VTArray values.
type ArrayObject struct {
	Elems []Value
	Phase Phase
}

func Arr(xs []Value) Value {
	return Value{Tag: VTArray, Data: &ArrayObject{Elems: xs, Phase: PhaseFluid}}
}

// MapObject is an ordered map payload. KeyPhases holds per-key phase
// overrides (lazily allocated on the first key-level freeze or a
// freeze-except); a nil map means no overrides.
type MapObject struct {
	Entries   map[string]Value
	Keys      []string
	Phase     Phase
	KeyPhases map[string]Phase
}

func NewMap() Value {
	return Value{Tag: VTMap, Data: &MapObject{Entries: map[string]Value{}, Phase: PhaseFluid}}
}

// MapFrom builds a VTMap from a plain Go map (key order sorted for
// determinism; literal maps built from source preserve source order).
func MapFrom(m map[string]Value) Value {
	mo := &MapObject{Entries: m, Phase: PhaseFluid}
	mo.Keys = make([]string, 0, len(m))
	for k := range m {
		mo.Keys = append(mo.Keys, k)
	}
	sort.Strings(mo.Keys)
	return Value{Tag: VTMap, Data: mo}
}

func (m *MapObject) Get(k string) (Value, bool) {
	v, ok := m.Entries[k]
	return v, ok
}

func (m *MapObject) Set(k string, v Value) {
	if _, ok := m.Entries[k]; !ok {
		m.Keys = append(m.Keys, k)
	}
	m.Entries[k] = v
}

func (m *MapObject) Remove(k string) bool {
	if _, ok := m.Entries[k]; !ok {
		return false
	}
	delete(m.Entries, k)
	for i, key := range m.Keys {
		if key == k {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			break
		}
	}
	delete(m.KeyPhases, k)
	return true
}

// StructObject is an instance of a declared struct type. FieldPhases holds
// per-field overrides, nil until the first field-level freeze.
type StructObject struct {
	Name        string
	FieldNames  []string
	FieldValues []Value
	Phase       Phase
	FieldPhases map[string]Phase
}

func (s *StructObject) FieldIndex(name string) int {
	for i, fn := range s.FieldNames {
		if fn == name {
			return i
		}
	}
	return -1
}

// TupleObject is a fixed-shape container; element count never changes.
type TupleObject struct {
	Elems []Value
	Phase Phase
}

// RangeObject is the half-open integer range produced by `a..b`.
type RangeObject struct {
	Start, End int64
}

// Handle is an opaque host-side resource (file, socket, database, ...).
type Handle struct {
	Kind string
	Data interface{}
}

func HandleVal(kind string, data interface{}) Value {
	return Value{Tag: VTHandle, Data: &Handle{Kind: kind, Data: data}}
}

// FunVal wraps *Fun into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

// --- phase access -----------------------------------------------------------

// PhaseOf resolves the effective phase of a value: composites report their
// shared object's phase, scalars their inline tag (Unphased by default).
func PhaseOf(v Value) Phase {
	switch v.Tag {
	case VTArray:
		return v.Data.(*ArrayObject).Phase
	case VTMap:
		return v.Data.(*MapObject).Phase
	case VTStruct:
		return v.Data.(*StructObject).Phase
	case VTTuple:
		return v.Data.(*TupleObject).Phase
	default:
		return v.Phase
	}
}

// --- deep operations --------------------------------------------------------

// DeepClone copies a value structurally. Functions, channels, and handles
// keep identity (cloning a closure or a socket has no meaning here).
func DeepClone(v Value) Value {
	switch v.Tag {
	case VTArray:
		ao := v.Data.(*ArrayObject)
		out := &ArrayObject{Elems: make([]Value, len(ao.Elems)), Phase: ao.Phase}
		for i, e := range ao.Elems {
			out.Elems[i] = DeepClone(e)
		}
		return Value{Tag: VTArray, Data: out}
	case VTMap:
		mo := v.Data.(*MapObject)
		out := &MapObject{Entries: make(map[string]Value, len(mo.Entries)), Phase: mo.Phase}
		out.Keys = append([]string(nil), mo.Keys...)
		for k, e := range mo.Entries {
			out.Entries[k] = DeepClone(e)
		}
		if mo.KeyPhases != nil {
			out.KeyPhases = make(map[string]Phase, len(mo.KeyPhases))
			for k, p := range mo.KeyPhases {
				out.KeyPhases[k] = p
			}
		}
		return Value{Tag: VTMap, Data: out}
	case VTStruct:
		so := v.Data.(*StructObject)
		out := &StructObject{
			Name:        so.Name,
			FieldNames:  append([]string(nil), so.FieldNames...),
			FieldValues: make([]Value, len(so.FieldValues)),
			Phase:       so.Phase,
		}
		for i, e := range so.FieldValues {
			out.FieldValues[i] = DeepClone(e)
		}
		if so.FieldPhases != nil {
			out.FieldPhases = make(map[string]Phase, len(so.FieldPhases))
			for k, p := range so.FieldPhases {
				out.FieldPhases[k] = p
			}
		}
		return Value{Tag: VTStruct, Data: out}
	case VTTuple:
		to := v.Data.(*TupleObject)
		out := &TupleObject{Elems: make([]Value, len(to.Elems)), Phase: to.Phase}
		for i, e := range to.Elems {
			out.Elems[i] = DeepClone(e)
		}
		return Value{Tag: VTTuple, Data: out}
	default:
		return v
	}
}

// Equal compares two values structurally. Functions/channels/handles compare
// by identity. Phase never affects equality.
func Equal(a, b Value) bool {
	if a.Tag == VTInt && b.Tag == VTNum {
		return float64(a.Data.(int64)) == b.Data.(float64)
	}
	if a.Tag == VTNum && b.Tag == VTInt {
		return a.Data.(float64) == float64(b.Data.(int64))
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNil:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTInt:
		return a.Data.(int64) == b.Data.(int64)
	case VTNum:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTRange:
		ra, rb := a.Data.(*RangeObject), b.Data.(*RangeObject)
		return ra.Start == rb.Start && ra.End == rb.End
	case VTArray:
		xa, xb := a.Data.(*ArrayObject).Elems, b.Data.(*ArrayObject).Elems
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case VTTuple:
		xa, xb := a.Data.(*TupleObject).Elems, b.Data.(*TupleObject).Elems
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case VTMap:
		ma, mb := a.Data.(*MapObject), b.Data.(*MapObject)
		if len(ma.Entries) != len(mb.Entries) {
			return false
		}
		for k, av := range ma.Entries {
			bv, ok := mb.Entries[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case VTStruct:
		sa, sb := a.Data.(*StructObject), b.Data.(*StructObject)
		if sa.Name != sb.Name || len(sa.FieldValues) != len(sb.FieldValues) {
			return false
		}
		for i := range sa.FieldValues {
			if !Equal(sa.FieldValues[i], sb.FieldValues[i]) {
				return false
			}
		}
		return true
	default:
		return a.Data == b.Data
	}
}

// Truthy implements Lattice truthiness: nil and false are falsy, zero is
// falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNil:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTNum:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	default:
		return true
	}
}

// TypeName reports the user-facing type of a value.
func TypeName(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTNum:
		return "float"
	case VTStr:
		return "string"
	case VTRange:
		return "range"
	case VTArray:
		return "array"
	case VTMap:
		return "map"
	case VTStruct:
		return v.Data.(*StructObject).Name
	case VTTuple:
		return "tuple"
	case VTFun:
		return "function"
	case VTChan:
		return "channel"
	case VTHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Display renders a value the way `print` shows it. Strings are bare here;
// nested strings are quoted.
func Display(v Value) string {
	return display(v, false)
}

func display(v Value, quoted bool) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		if quoted {
			return strconv.Quote(v.Data.(string))
		}
		return v.Data.(string)
	case VTRange:
		r := v.Data.(*RangeObject)
		return fmt.Sprintf("%d..%d", r.Start, r.End)
	case VTArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Data.(*ArrayObject).Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(display(e, true))
		}
		b.WriteByte(']')
		return b.String()
	case VTTuple:
		var b strings.Builder
		b.WriteByte('(')
		for i, e := range v.Data.(*TupleObject).Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(display(e, true))
		}
		b.WriteByte(')')
		return b.String()
	case VTMap:
		mo := v.Data.(*MapObject)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range mo.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(display(mo.Entries[k], true))
		}
		b.WriteByte('}')
		return b.String()
	case VTStruct:
		so := v.Data.(*StructObject)
		var b strings.Builder
		b.WriteString(so.Name)
		b.WriteString(" {")
		for i, fn := range so.FieldNames {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fn)
			b.WriteString(": ")
			b.WriteString(display(so.FieldValues[i], true))
		}
		b.WriteByte('}')
		return b.String()
	case VTFun:
		f := v.Data.(*Fun)
		if f.Name != "" {
			return "<fn " + f.Name + ">"
		}
		return "<fn>"
	case VTChan:
		return "<channel>"
	case VTHandle:
		return "<" + v.Data.(*Handle).Kind + ">"
	default:
		return "<unknown>"
	}
}
