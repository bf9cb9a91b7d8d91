// env.go: lexical environments and binding slots.
package lattice

import "fmt"

// Slot is the storage cell behind a named binding. Bonds, reactions,
// pressure constraints, seeds and history all attach to the slot, not the
// value, so they survive rebinding.
type Slot struct {
	ID   uint64
	Name string
	Val  Value
	Kind BindKind
}

// Env is a lexical scope chain. Each scope maps names to slots; inner
// scopes shadow outer ones.
type Env struct {
	parent *Env
	vars   map[string]*Slot
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[string]*Slot{}}
}

// Define creates a fresh slot in this scope, shadowing any outer binding.
func (e *Env) Define(ip *Interpreter, name string, v Value, kind BindKind) *Slot {
	s := &Slot{ID: ip.nextSlotID(), Name: name, Val: v, Kind: kind}
	e.vars[name] = s
	return s
}

// Resolve walks the scope chain for a slot.
func (e *Env) Resolve(name string) (*Slot, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// Get reads a binding's current value, failing on undefined names.
func (e *Env) Get(name string) Value {
	s, ok := e.Resolve(name)
	if !ok {
		failUsage(fmt.Sprintf("undefined variable '%s'", name))
	}
	return s.Val
}

// Set rebinds an existing slot. Rebinding a crystal slot is a state error:
// a frozen binding stays frozen until thawed.
func (e *Env) Set(name string, v Value) *Slot {
	s, ok := e.Resolve(name)
	if !ok {
		failUsage(fmt.Sprintf("undefined variable '%s'", name))
	}
	if PhaseOf(s.Val) == PhaseCrystal {
		failState(fmt.Sprintf("cannot assign to crystal binding '%s'", name))
	}
	s.Val = v
	return s
}
