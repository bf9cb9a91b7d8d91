// bond.go: the dependency graph between binding slots and the commit path
// for phase transitions.
//
// Edges are persistent: a freeze cascade re-walks the live graph every time
// instead of consuming edges. Propagation is transactional: gate checks run
// over the whole mirror closure before the first phase bit changes, so a
// rejected gate leaves every slot untouched.
package lattice

import (
	"fmt"

	"go.uber.org/zap"
)

type bondStrategy int

const (
	bondMirror bondStrategy = iota
	bondInverse
	bondGate
)

func parseStrategy(s string) (bondStrategy, bool) {
	switch s {
	case "mirror":
		return bondMirror, true
	case "inverse":
		return bondInverse, true
	case "gate":
		return bondGate, true
	}
	return 0, false
}

func (s bondStrategy) String() string {
	switch s {
	case bondInverse:
		return "inverse"
	case bondGate:
		return "gate"
	default:
		return "mirror"
	}
}

type bondEdge struct {
	to       *Slot
	strategy bondStrategy
}

// addBond registers a directed edge from -> to. A crystal source cannot
// gain new propagation obligations.
func (ip *Interpreter) addBond(from, to *Slot, strat bondStrategy) {
	if PhaseOf(from.Val) == PhaseCrystal {
		failState(fmt.Sprintf("bond: variable '%s' is already frozen", from.Name))
	}
	for i, e := range ip.bonds[from] {
		if e.to == to {
			ip.bonds[from][i].strategy = strat
			return
		}
	}
	ip.bonds[from] = append(ip.bonds[from], bondEdge{to: to, strategy: strat})
	ip.log.Debug("bond added",
		zap.String("from", from.Name), zap.String("to", to.Name), zap.Stringer("strategy", strat))
}

// removeBond drops the edge in both argument orders.
func (ip *Interpreter) removeBond(a, b *Slot) {
	drop := func(from, to *Slot) {
		edges := ip.bonds[from]
		for i, e := range edges {
			if e.to == to {
				ip.bonds[from] = append(edges[:i], edges[i+1:]...)
				return
			}
		}
	}
	drop(a, b)
	drop(b, a)
}

// commitRec is one entry of a propagation pass, in commit order.
type commitRec struct {
	slot  *Slot
	phase Phase
}

// mirrorClosure walks mirror edges from s collecting every slot this freeze
// will commit, in discovery order (the trigger first). Already-crystal
// slots stop the walk: they neither recommit nor re-propagate. A visited
// set keeps cyclic graphs from looping; each slot appears at most once.
func (ip *Interpreter) mirrorClosure(s *Slot) []*Slot {
	visited := map[*Slot]bool{s: true}
	order := []*Slot{s}
	for i := 0; i < len(order); i++ {
		for _, e := range ip.bonds[order[i]] {
			if e.strategy != bondMirror || visited[e.to] {
				continue
			}
			if e.to.Val.Tag == VTChan {
				continue
			}
			if PhaseOf(e.to.Val) == PhaseCrystal {
				continue
			}
			visited[e.to] = true
			order = append(order, e.to)
		}
	}
	return order
}

// commitFreeze runs the full freeze pipeline on a binding slot:
//
//	seed validation -> closure walk -> gate checks -> phase commit
//	-> inverse thaws -> reactions and history.
//
// Everything before "phase commit" can reject without side effects. where
// contracts are validated by the caller before this runs (they wrap the
// whole attempt). consumeSeeds is true for grow(), false for plain freeze.
func (ip *Interpreter) commitFreeze(s *Slot, consumeSeeds bool) {
	if s.Val.Tag == VTChan {
		failState("cannot freeze a channel")
	}
	ip.validateSeeds(s, consumeSeeds)

	closure := ip.mirrorClosure(s)

	// Gate edges of every slot in the closure must already hold before any
	// mutation. Checked against pre-commit phases.
	for _, cs := range closure {
		for _, e := range ip.bonds[cs] {
			if e.strategy != bondGate {
				continue
			}
			if PhaseOf(e.to.Val) != PhaseCrystal {
				failState(fmt.Sprintf("gate bond: '%s' must be crystal before '%s' can freeze",
					e.to.Name, cs.Name))
			}
		}
	}

	var commits []commitRec
	for _, cs := range closure {
		cs.Val = freezeValue(cs.Val)
		commits = append(commits, commitRec{slot: cs, phase: PhaseCrystal})
	}
	// Inverse edges thaw crystal targets at the same commit point.
	thawed := map[*Slot]bool{}
	for _, cs := range closure {
		for _, e := range ip.bonds[cs] {
			if e.strategy != bondInverse || thawed[e.to] {
				continue
			}
			p := PhaseOf(e.to.Val)
			if p != PhaseCrystal && p != PhaseSublimated {
				continue
			}
			thawed[e.to] = true
			e.to.Val = thawValue(e.to.Val)
			commits = append(commits, commitRec{slot: e.to, phase: PhaseFluid})
		}
	}

	ip.notifyCommits(commits)
}

// commitThaw reverts a slot to fluid and notifies.
func (ip *Interpreter) commitThaw(s *Slot) {
	s.Val = thawValue(s.Val)
	ip.notifyCommits([]commitRec{{slot: s, phase: PhaseFluid}})
}

// commitSublimate structure-locks a slot's value and notifies.
func (ip *Interpreter) commitSublimate(s *Slot) {
	s.Val = sublimateValue(s.Val)
	ip.notifyCommits([]commitRec{{slot: s, phase: PhaseSublimated}})
}

// notifyCommits fires reactions and records history for each committed
// slot, in commit order. A reaction error aborts the remaining
// notifications but never rolls back the committed phases.
func (ip *Interpreter) notifyCommits(commits []commitRec) {
	for _, c := range commits {
		ip.fireReactions(c.slot, c.phase)
		ip.recordHistory(c.slot)
	}
}
