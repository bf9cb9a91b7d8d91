// concurrency.go: cooperative scope/spawn tasks and channels.
//
// Evaluation is single-threaded: spawn queues a task, and the enclosing
// scope block drains the queue before it exits, so no phase state is ever
// mutated concurrently. The one cross-task rule is that only crystal
// values may be sent over a channel.
package lattice

import "fmt"

// Channel is an unbounded FIFO between cooperative tasks.
type Channel struct {
	buf    []Value
	closed bool
}

func ChanVal() Value { return Value{Tag: VTChan, Data: &Channel{}} }

// Send enqueues a value. Non-crystal payloads are rejected: immutability
// is the language's substitute for an ownership transfer check.
func (c *Channel) Send(v Value) {
	if c.closed {
		failState("send on a closed channel")
	}
	if PhaseOf(v) != PhaseCrystal {
		failUsage(fmt.Sprintf("only crystal values may be sent over a channel, got %s", PhaseOf(v)))
	}
	c.buf = append(c.buf, v)
}

// Recv dequeues the oldest value, nil when the channel is empty or closed.
func (c *Channel) Recv() Value {
	if len(c.buf) == 0 {
		return Nil
	}
	v := c.buf[0]
	c.buf = c.buf[1:]
	return v
}

func (c *Channel) Len() int { return len(c.buf) }

func (c *Channel) Close() { c.closed = true }

// task is one queued spawn body with its captured environment.
type task struct {
	body []Stmt
	env  *Env
}

// runScope executes a scope block: its statements run first, then the task
// queue drains in FIFO order until empty (spawned tasks may spawn more).
// The block's value is the last statement's value.
func (ip *Interpreter) runScope(env *Env, body []Stmt) Value {
	scopeEnv := NewEnv(env)
	mark := len(ip.tasks)
	defer func() {
		// an error unwinding past the scope discards its pending tasks
		if len(ip.tasks) > mark {
			ip.tasks = ip.tasks[:mark]
		}
	}()
	out := ip.execStmts(scopeEnv, body)
	ip.drainTasks(mark)
	return out
}

// spawnTask queues a task for the innermost enclosing scope.
func (ip *Interpreter) spawnTask(env *Env, body []Stmt) {
	ip.tasks = append(ip.tasks, &task{body: body, env: NewEnv(env)})
}

func (ip *Interpreter) drainTasks(mark int) {
	for len(ip.tasks) > mark {
		t := ip.tasks[mark]
		ip.tasks = append(ip.tasks[:mark], ip.tasks[mark+1:]...)
		ip.execStmts(t.env, t.body)
	}
}
