// runtime.go: the interpreter handle and the phase-system registries.
//
// All phase bookkeeping (bonds, reactions, pressure, seeds, history) is
// keyed by *Slot so it survives rebinding and dies with the slot. The
// registries are plain maps; the evaluator is single-threaded (spawn is
// cooperative, see concurrency.go) so no locking is needed.
package lattice

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Fun is a callable: a named function, a closure, or a native builtin.
type Fun struct {
	Name   string
	Params []Param
	Body   []Stmt
	Expr   Expr // single-expression closure body
	Env    *Env // captured environment, nil for builtins

	Native func(ip *Interpreter, args []Value) Value
}

// Arity is informational; builtins check their own argument counts.
func (f *Fun) Arity() int { return len(f.Params) }

// StructType is a declared struct shape plus its alloy table.
type StructType struct {
	Name   string
	Fields []FieldDecl
}

// Interpreter owns the global scope, the phase registries and the loaded
// module cache. One Interpreter serves one script or one REPL session.
type Interpreter struct {
	globals *Env
	log     *zap.Logger
	stdout  io.Writer

	slotSeq uint64

	structs   map[string]*StructType
	overloads map[string]map[PhaseQual]*Fun

	bonds     map[*Slot][]bondEdge
	reactions map[*Slot][]*Fun
	pressures map[*Slot]pressureMode
	seeds     map[*Slot]*Fun
	history   map[*Slot]*trackLog

	modules map[string]Value
	loading map[string]bool
	// scriptDir anchors relative import paths.
	scriptDir string

	// cooperative task queue for scope/spawn
	tasks []*task

	depth   int
	srcName string
	curLine int
	curFn   string
}

const maxCallDepth = 2000

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger installs a structured logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(ip *Interpreter) { ip.log = l }
}

// WithStdout redirects print() output.
func WithStdout(w io.Writer) Option {
	return func(ip *Interpreter) { ip.stdout = w }
}

// WithScriptDir sets the directory relative imports resolve against.
func WithScriptDir(dir string) Option {
	return func(ip *Interpreter) { ip.scriptDir = dir }
}

func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		globals:   NewEnv(nil),
		log:       zap.NewNop(),
		stdout:    os.Stdout,
		structs:   map[string]*StructType{},
		overloads: map[string]map[PhaseQual]*Fun{},
		bonds:     map[*Slot][]bondEdge{},
		reactions: map[*Slot][]*Fun{},
		pressures: map[*Slot]pressureMode{},
		seeds:     map[*Slot]*Fun{},
		history:   map[*Slot]*trackLog{},
		modules:   map[string]Value{},
		loading:   map[string]bool{},
	}
	for _, o := range opts {
		o(ip)
	}
	registerCoreBuiltins(ip)
	registerPhaseBuiltins(ip)
	registerMathBuiltins(ip)
	registerStringBuiltins(ip)
	registerJSONBuiltins(ip)
	registerEncodingBuiltins(ip)
	registerRegexBuiltins(ip)
	registerFileBuiltins(ip)
	registerNetBuiltins(ip)
	registerSQLiteBuiltins(ip)
	return ip
}

func (ip *Interpreter) nextSlotID() uint64 {
	ip.slotSeq++
	return ip.slotSeq
}

// Globals exposes the root scope (for host embedding and the REPL).
func (ip *Interpreter) Globals() *Env { return ip.globals }

func (ip *Interpreter) defineBuiltin(name string, fn func(ip *Interpreter, args []Value) Value) {
	ip.globals.Define(ip, name, FunVal(&Fun{Name: name, Native: fn}), BindLet)
}

// resolveSlot resolves a phase-builtin argument to a binding slot. The
// argument must be an identifier or a string naming a binding; anything
// else is a usage error.
func (ip *Interpreter) resolveSlot(env *Env, arg Expr, what string) *Slot {
	var name string
	switch a := arg.(type) {
	case Ident:
		name = a.Name
	case StrLit:
		name = a.V
	default:
		failUsage(fmt.Sprintf("%s requires an identifier argument", what))
	}
	s, ok := env.Resolve(name)
	if !ok {
		failUsage(fmt.Sprintf("%s: undefined variable '%s'", what, name))
	}
	return s
}
