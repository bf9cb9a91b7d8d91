// react.go: ordered phase-transition observers per binding slot.
package lattice

// addReaction appends a callback; registration order is fire order.
func (ip *Interpreter) addReaction(s *Slot, cb *Fun) {
	ip.reactions[s] = append(ip.reactions[s], cb)
}

// clearReactions drops every callback registered on the slot.
func (ip *Interpreter) clearReactions(s *Slot) {
	delete(ip.reactions, s)
}

// fireReactions invokes the slot's callbacks in order with
// (phase_name, current_value). A callback error stops dispatch of the
// remaining callbacks and surfaces as a reaction error; the phase
// transition that triggered it stays committed.
func (ip *Interpreter) fireReactions(s *Slot, p Phase) {
	cbs := ip.reactions[s]
	if len(cbs) == 0 {
		return
	}
	phaseName := Str(p.String())
	for _, cb := range cbs {
		ip.callChecked(cb, []Value{phaseName, DeepClone(s.Val)}, ErrReaction, "reaction error: ")
	}
}
