package cotest

import (
	"github.com/google/uuid"

	"github.com/jgraley/cotest/cotestcoro"
)

// role distinguishes a coroutine created by Coroutine or NewCoroutine (a test
// coroutine, driving a scenario forward) from one created by Launch
// (running code under test and issuing mock calls).
type role int

const (
	roleTest role = iota
	roleLaunch
)

// lifecycle is the coroutine's scheduling state, independent of its
// cardinality bookkeeping (satisfied/saturated/retired).
type lifecycle int

const (
	stateReady lifecycle = iota
	stateRunning
	stateBlocked
	stateExited
)

func (s lifecycle) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateRunning:
		return "running"
	case stateBlocked:
		return "blocked"
	case stateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// coroutineContext is the scheduler's private record of one coroutine:
// its substrate handle, its current wait predicate, and the cardinality
// flags that decide whether it exited cleanly. Authors never see this
// type directly; they hold a *Coro, which wraps a pointer to it.
type coroutineContext struct {
	id   uuid.UUID
	name string
	role role

	session *Session
	coro    *cotestcoro.Coroutine
	yield   func(any) any // yields the cotest-internal signal types from event.go
	state   lifecycle

	waitPred Predicate

	satisfied bool
	saturated bool
	retired   bool

	// oversaturationReported guards against reporting the same
	// oversaturated coroutine more than once.
	oversaturationReported bool

	// undisposed is the mock call currently offered to this coroutine
	// and not yet Accepted, Dropped, or Returned. The server-style rule
	// forbids this coroutine from polling for another mock call while it
	// is non-nil; waiting for a launch result is still allowed.
	undisposed *MockCall

	// launch is set for roleLaunch coroutines: the launch session this
	// coroutine is running the body of.
	launch *launchSession

	// owner is set for roleLaunch coroutines: the test coroutine that
	// created the launch, and the only one allowed to collect its
	// result.
	owner *coroutineContext

	priority int // monotonic creation order; not consulted by dispatch
}

func newCoroutineContext(s *Session, name string, r role) *coroutineContext {
	s.nextPriority++
	return &coroutineContext{
		id:       uuid.New(),
		name:     name,
		role:     r,
		session:  s,
		state:    stateReady,
		priority: s.nextPriority,
	}
}

// bystander reports whether this coroutine has never registered a watch
// and never accepted an offered event: cardinality checks only apply to
// coroutines that opted into being watched or waited for. See the
// Satisfy rule discussion in DESIGN.md.
func (c *coroutineContext) bystander() bool {
	return !c.satisfied && !c.retired && c.session.registry.watchCountFor(c) == 0
}

// cardinalityOK runs the cardinality checks for a coroutine that has just
// run to completion (normally, or via a recovered panic already handled
// by the caller).
func (c *coroutineContext) cardinalityOK() bool {
	if c.bystander() {
		return true
	}
	return c.satisfied || c.retired
}
