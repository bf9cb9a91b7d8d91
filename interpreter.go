// interpreter.go: the public evaluation surface.
//
// EvalSource runs a program in a fresh child of the global scope; the
// REPL uses EvalPersistentSource so bindings survive across inputs. Both
// convert internal panic signals into *RuntimeError at the boundary.
package lattice

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// EvalSource parses and evaluates a program in a fresh child of the
// global scope. Returns the value of the last statement, or a
// *LexError/*ParseError/*RuntimeError as error.
func (ip *Interpreter) EvalSource(name, src string) (Value, error) {
	stmts, err := Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.run(name, stmts, NewEnv(ip.globals))
}

// EvalPersistentSource evaluates in the global scope itself; bindings,
// bonds and tracked history persist across calls. REPL entry point.
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	stmts, err := Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.run("<repl>", stmts, ip.globals)
}

// EvalFile loads and evaluates a script. Relative imports inside the
// script resolve against the script's directory.
func (ip *Interpreter) EvalFile(path string) (Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Nil, fmt.Errorf("read script: %w", err)
	}
	if ip.scriptDir == "" {
		ip.scriptDir = filepath.Dir(path)
	}
	return ip.EvalSource(filepath.Base(path), string(src))
}

// Apply calls a function value with already-evaluated arguments. Host
// embedding hook; the same error boundary as Eval* applies.
func (ip *Interpreter) Apply(fn Value, args []Value) (res Value, err error) {
	f, ok := fn.Data.(*Fun)
	if fn.Tag != VTFun || !ok {
		return Nil, &RuntimeError{Kind: ErrUsage, Msg: "apply: not a function"}
	}
	defer ip.recoverRuntime(&err)
	return ip.callFun(f, args, ip.curLine), nil
}

func (ip *Interpreter) run(name string, stmts []Stmt, env *Env) (res Value, err error) {
	saved := ip.srcName
	ip.srcName = name
	defer func() { ip.srcName = saved }()

	defer ip.recoverRuntime(&err)
	res = ip.execStmts(env, stmts)
	return res, nil
}

// recoverRuntime is the panic boundary: evalErr becomes *RuntimeError,
// control-flow signals outside a function or loop become errors too,
// and anything else keeps propagating.
func (ip *Interpreter) recoverRuntime(err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch sig := r.(type) {
	case evalErr:
		line, col := sig.line, sig.col
		if line == 0 {
			line = ip.curLine
		}
		ip.log.Debug("runtime error",
			zap.Int("line", line),
			zap.String("msg", sig.msg))
		*err = &RuntimeError{Kind: sig.kind, Line: line, Col: col, Msg: sig.msg}
	case returnSignal:
		*err = &RuntimeError{Kind: ErrUsage, Msg: "return outside function"}
	case breakSignal:
		*err = &RuntimeError{Kind: ErrUsage, Msg: "break outside loop"}
	case continueSignal:
		*err = &RuntimeError{Kind: ErrUsage, Msg: "continue outside loop"}
	default:
		panic(r)
	}
}
