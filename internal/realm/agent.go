package realm

// Job is a queued microtask (ECMA-262 9.5): a zero-argument callback
// enqueued by promise reactions and drained once the active call stack
// empties out. This engine's scope stops at queuing and draining the
// jobs; it does not implement the Promise object itself (spec.md's
// Non-goals exclude the Promise standard-library surface), but the
// job-queue mechanism is part of the execution model and several
// TESTABLE PROPERTIES (microtask ordering relative to synchronous code)
// depend on it existing.
type Job func() error

// Agent is one ECMAScript agent (ECMA-262 9.7): a single logical
// thread of execution, its call-stack depth, and its microtask queue.
// An Agent may host multiple Realms; Realms created under the same
// Agent share its job queue and call-stack bookkeeping.
type Agent struct {
	CallStackDepth int
	MaxCallDepth   int

	jobs []Job
}

// NewAgent builds an Agent with the given maximum call-stack depth
// (the interpreter raises a RangeError-shaped RuntimeError once
// CallStackDepth would exceed it, rather than letting a runaway
// recursive script exhaust the Go stack).
func NewAgent(maxCallDepth int) *Agent {
	if maxCallDepth <= 0 {
		maxCallDepth = 2048
	}
	return &Agent{MaxCallDepth: maxCallDepth}
}

// NewRealm builds a new Realm hosted by this Agent.
func (a *Agent) NewRealm() *Realm {
	return NewRealm(a)
}

// EnterCall increments the call-stack depth, returning false if doing
// so would exceed MaxCallDepth.
func (a *Agent) EnterCall() bool {
	if a.CallStackDepth >= a.MaxCallDepth {
		return false
	}
	a.CallStackDepth++
	return true
}

// ExitCall decrements the call-stack depth.
func (a *Agent) ExitCall() {
	if a.CallStackDepth > 0 {
		a.CallStackDepth--
	}
}

// EnqueueJob appends a job to the end of the microtask queue.
func (a *Agent) EnqueueJob(j Job) {
	a.jobs = append(a.jobs, j)
}

// HasPendingJobs reports whether the microtask queue is non-empty.
func (a *Agent) HasPendingJobs() bool {
	return len(a.jobs) > 0
}

// RunJobs drains the microtask queue in FIFO order (9.5's "perform all
// pending jobs" checkpoint, run by the interpreter once the call stack
// returns to empty). A job enqueuing further jobs is expected and
// handled: the queue is re-checked after each job runs. The first job
// to return an error stops the drain and propagates it; queued jobs
// that never ran stay queued for the next drain point.
func (a *Agent) RunJobs() error {
	for len(a.jobs) > 0 {
		j := a.jobs[0]
		a.jobs = a.jobs[1:]
		if err := j(); err != nil {
			return err
		}
	}
	return nil
}
