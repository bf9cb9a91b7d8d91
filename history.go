// history.go: per-binding phase/value timelines for track/phases/rewind.
package lattice

// phaseSnap is one history record: the binding's phase and a deep copy of
// its value at snapshot time, plus the source line and enclosing function
// for the enriched history() view.
type phaseSnap struct {
	phase Phase
	value Value
	line  int
	fn    string
}

type trackLog struct {
	snaps []phaseSnap
}

// startTracking begins a timeline for a slot, capturing the current state
// as the first record. Tracking an already-tracked slot is a no-op.
func (ip *Interpreter) startTracking(s *Slot) {
	if _, ok := ip.history[s]; ok {
		return
	}
	ip.history[s] = &trackLog{}
	ip.recordHistory(s)
}

// recordHistory appends a snapshot if the slot is tracked.
func (ip *Interpreter) recordHistory(s *Slot) {
	log, ok := ip.history[s]
	if !ok {
		return
	}
	log.snaps = append(log.snaps, phaseSnap{
		phase: PhaseOf(s.Val),
		value: DeepClone(s.Val),
		line:  ip.curLine,
		fn:    ip.curFn,
	})
}

// phasesFor returns the chronological timeline as an array of maps with
// keys phase/value/line/fn; an untracked slot yields an empty array.
func (ip *Interpreter) phasesFor(s *Slot) Value {
	log, ok := ip.history[s]
	if !ok {
		return Arr(nil)
	}
	out := make([]Value, 0, len(log.snaps))
	for _, sn := range log.snaps {
		m := NewMap()
		mo := m.Data.(*MapObject)
		mo.Set("phase", Str(sn.phase.String()))
		mo.Set("value", DeepClone(sn.value))
		mo.Set("line", Int(int64(sn.line)))
		if sn.fn != "" {
			mo.Set("fn", Str(sn.fn))
		} else {
			mo.Set("fn", Nil)
		}
		out = append(out, m)
	}
	return Arr(out)
}

// rewindFor reverse-indexes the timeline: n=0 is the most recent record.
// Out-of-range n yields nil rather than an error.
func (ip *Interpreter) rewindFor(s *Slot, n int64) Value {
	log, ok := ip.history[s]
	if !ok {
		return Nil
	}
	idx := int64(len(log.snaps)) - 1 - n
	if idx < 0 || idx >= int64(len(log.snaps)) {
		return Nil
	}
	return DeepClone(log.snaps[idx].value)
}
