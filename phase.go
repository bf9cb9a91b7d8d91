// phase.go: the phase descriptor: the per-value mutability tag, its
// transition helpers, and the guard every container mutation must pass.
//
// Phase transitions themselves never run guards; guards run before the
// evaluator applies a mutation, and transitions are only performed by the
// commit path in runtime.go once every check has passed.
package lattice

import "fmt"

// Phase is the mutability state carried by every value.
type Phase int

const (
	PhaseUnphased   Phase = iota // scalar default; immutable but not frozen
	PhaseFluid                   // mutable, default for composites
	PhaseCrystal                 // immutable
	PhaseSublimated              // structure-locked: no grow/shrink, slots writable
)

func (p Phase) String() string {
	switch p {
	case PhaseFluid:
		return "fluid"
	case PhaseCrystal:
		return "crystal"
	case PhaseSublimated:
		return "sublimated"
	default:
		return "unphased"
	}
}

// mutOp classifies a container mutation for guard purposes.
type mutOp int

const (
	opFieldSet mutOp = iota // struct field assignment
	opIndexSet              // in-place replacement of an existing index/key
	opGrow                  // push / insert / new map key
	opShrink                // pop / remove
)

// setPhase writes a phase onto a value's carrier. For composites this is the
// shared object; whole-container transitions also clear every sub-location
// override in the same step (the container and its override map are never
// observably half-updated). Deep: children are transitioned with the
// container except when an except-set pins them.
func setPhaseDeep(v *Value, p Phase) {
	switch v.Tag {
	case VTArray:
		ao := v.Data.(*ArrayObject)
		ao.Phase = p
		for i := range ao.Elems {
			setPhaseDeep(&ao.Elems[i], p)
		}
	case VTMap:
		mo := v.Data.(*MapObject)
		mo.Phase = p
		mo.KeyPhases = nil
		for k, e := range mo.Entries {
			setPhaseDeep(&e, p)
			mo.Entries[k] = e
		}
	case VTStruct:
		so := v.Data.(*StructObject)
		so.Phase = p
		so.FieldPhases = nil
		for i := range so.FieldValues {
			setPhaseDeep(&so.FieldValues[i], p)
		}
	case VTTuple:
		to := v.Data.(*TupleObject)
		to.Phase = p
		for i := range to.Elems {
			setPhaseDeep(&to.Elems[i], p)
		}
	case VTFun, VTChan, VTHandle:
		// phase-inert
	default:
		v.Phase = p
	}
}

// freezeValue deep-freezes a value in place and returns it. Clears all
// sub-location overrides.
func freezeValue(v Value) Value {
	setPhaseDeep(&v, PhaseCrystal)
	return v
}

// thawValue deep-thaws to fluid. A thawed scalar reads as fluid, matching
// the freeze/thaw round-trip rather than resetting to unphased.
func thawValue(v Value) Value {
	setPhaseDeep(&v, PhaseFluid)
	return v
}

// sublimateValue structure-locks the container. Children keep their phases:
// slot contents stay individually mutable.
func sublimateValue(v Value) Value {
	switch v.Tag {
	case VTArray:
		v.Data.(*ArrayObject).Phase = PhaseSublimated
	case VTMap:
		v.Data.(*MapObject).Phase = PhaseSublimated
	case VTStruct:
		v.Data.(*StructObject).Phase = PhaseSublimated
	case VTTuple:
		v.Data.(*TupleObject).Phase = PhaseSublimated
	default:
		v.Phase = PhaseSublimated
	}
	return v
}

// freezeExcept freezes a container while pinning the listed sub-locations
// fluid. The pinned keys persist as overrides until an exception-free freeze
// clears them.
func freezeExcept(v Value, keys []string) Value {
	switch v.Tag {
	case VTMap:
		mo := v.Data.(*MapObject)
		except := map[string]bool{}
		for _, k := range keys {
			except[k] = true
		}
		mo.Phase = PhaseCrystal
		mo.KeyPhases = map[string]Phase{}
		for k, e := range mo.Entries {
			if except[k] {
				mo.KeyPhases[k] = PhaseFluid
				continue
			}
			setPhaseDeep(&e, PhaseCrystal)
			mo.Entries[k] = e
		}
		for _, k := range keys {
			mo.KeyPhases[k] = PhaseFluid
		}
	case VTStruct:
		so := v.Data.(*StructObject)
		except := map[string]bool{}
		for _, k := range keys {
			except[k] = true
		}
		so.Phase = PhaseCrystal
		so.FieldPhases = map[string]Phase{}
		for i, fn := range so.FieldNames {
			if except[fn] {
				so.FieldPhases[fn] = PhaseFluid
				continue
			}
			setPhaseDeep(&so.FieldValues[i], PhaseCrystal)
		}
		for _, k := range keys {
			so.FieldPhases[k] = PhaseFluid
		}
	default:
		failState(fmt.Sprintf("freeze ... except requires a map or struct, got %s", TypeName(v)))
	}
	return v
}

// freezeSubLocation marks a single field/key crystal without touching the
// container phase (freeze(s.field) / freeze(m["k"])).
func freezeSubLocation(container Value, key string) {
	switch container.Tag {
	case VTMap:
		mo := container.Data.(*MapObject)
		if _, ok := mo.Entries[key]; !ok {
			failUsage(fmt.Sprintf("freeze: map has no key '%s'", key))
		}
		if mo.KeyPhases == nil {
			mo.KeyPhases = map[string]Phase{}
		}
		mo.KeyPhases[key] = PhaseCrystal
		e := mo.Entries[key]
		setPhaseDeep(&e, PhaseCrystal)
		mo.Entries[key] = e
	case VTStruct:
		so := container.Data.(*StructObject)
		idx := so.FieldIndex(key)
		if idx < 0 {
			failUsage(fmt.Sprintf("freeze: struct %s has no field '%s'", so.Name, key))
		}
		if so.FieldPhases == nil {
			so.FieldPhases = map[string]Phase{}
		}
		so.FieldPhases[key] = PhaseCrystal
		setPhaseDeep(&so.FieldValues[idx], PhaseCrystal)
	default:
		failState(fmt.Sprintf("cannot freeze a sub-location of %s", TypeName(container)))
	}
}

// effectivePhase resolves the most specific phase for an operation on a
// sub-location: the override if one is set, else the container phase.
func effectivePhase(container Value, key string) Phase {
	switch container.Tag {
	case VTMap:
		mo := container.Data.(*MapObject)
		if p, ok := mo.KeyPhases[key]; ok {
			return p
		}
		return mo.Phase
	case VTStruct:
		so := container.Data.(*StructObject)
		if p, ok := so.FieldPhases[key]; ok {
			return p
		}
		return so.Phase
	default:
		return PhaseOf(container)
	}
}

// guardMutation authorizes a container mutation against the value's phase.
// key is the field/map key for keyed ops ("" for positional ones). Pressure
// and alloy guards are separate and consulted in addition to this one.
func guardMutation(container Value, key string, op mutOp) {
	phase := PhaseOf(container)
	if key != "" {
		phase = effectivePhase(container, key)
	}
	noun := TypeName(container)
	switch phase {
	case PhaseCrystal:
		switch op {
		case opFieldSet:
			failState(fmt.Sprintf("cannot assign to field '%s' of a crystal %s", key, noun))
		case opIndexSet:
			if key != "" {
				failState(fmt.Sprintf("cannot assign to key '%s' of a crystal %s", key, noun))
			}
			failState(fmt.Sprintf("cannot assign to an index of a crystal %s", noun))
		case opGrow:
			failState(fmt.Sprintf("cannot push to a crystal %s", noun))
		case opShrink:
			failState(fmt.Sprintf("cannot pop from a crystal %s", noun))
		}
	case PhaseSublimated:
		switch op {
		case opGrow:
			if container.Tag == VTMap {
				failState("cannot add keys to a sublimated map")
			}
			failState(fmt.Sprintf("cannot push to a sublimated %s", noun))
		case opShrink:
			if container.Tag == VTMap {
				failState("cannot remove keys from a sublimated map")
			}
			failState(fmt.Sprintf("cannot pop from a sublimated %s", noun))
		}
		// in-place replacement of an existing slot is permitted
	}
}
