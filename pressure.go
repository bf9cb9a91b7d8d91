// pressure.go: structural-mutation constraints, independent of phase.
//
// Pressure limits cardinality, never content: replacing an existing
// index or key always passes. An operation must clear both the pressure
// guard and the phase guard to proceed.
package lattice

import "fmt"

type pressureMode int

const (
	pressureNoGrow pressureMode = iota
	pressureNoShrink
	pressureNoResize
	// pressureReadHeavy is accepted for forward compatibility and
	// constrains nothing.
	pressureReadHeavy
)

func parsePressureMode(s string) (pressureMode, bool) {
	switch s {
	case "no_grow":
		return pressureNoGrow, true
	case "no_shrink":
		return pressureNoShrink, true
	case "no_resize":
		return pressureNoResize, true
	case "read_heavy":
		return pressureReadHeavy, true
	}
	return 0, false
}

func (m pressureMode) String() string {
	switch m {
	case pressureNoShrink:
		return "no_shrink"
	case pressureNoResize:
		return "no_resize"
	case pressureReadHeavy:
		return "read_heavy"
	default:
		return "no_grow"
	}
}

// setPressure installs or replaces the single constraint on a slot.
func (ip *Interpreter) setPressure(s *Slot, m pressureMode) {
	ip.pressures[s] = m
}

func (ip *Interpreter) clearPressure(s *Slot) {
	delete(ip.pressures, s)
}

func (ip *Interpreter) pressureOf(s *Slot) (pressureMode, bool) {
	m, ok := ip.pressures[s]
	return m, ok
}

// guardPressure rejects grow/shrink ops against the slot's constraint.
// opFieldSet and opIndexSet pass unconditionally.
func (ip *Interpreter) guardPressure(s *Slot, op mutOp) {
	m, ok := ip.pressures[s]
	if !ok {
		return
	}
	blocked := false
	switch op {
	case opGrow:
		blocked = m == pressureNoGrow || m == pressureNoResize
	case opShrink:
		blocked = m == pressureNoShrink || m == pressureNoResize
	}
	if blocked {
		verb := "push to"
		if op == opShrink {
			verb = "pop from"
		}
		failState(fmt.Sprintf("pressurized (%s): cannot %s '%s'", m, verb, s.Name))
	}
}
