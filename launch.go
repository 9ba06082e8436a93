package cotest

import (
	"github.com/google/uuid"

	"github.com/jgraley/cotest/cotestvalue"
)

// launchSession (L) is the bookkeeping for one LAUNCH: the coroutine
// running the launched expression, the test coroutine allowed to
// collect its result, and the result itself once available.
type launchSession struct {
	id uuid.UUID

	// generation changes once the result is collected, so a
	// LaunchHandle/ResultHandle captured beforehand reads as stale on a
	// repeat collection attempt instead of blocking forever.
	generation uint64

	owner *coroutineContext // only this coroutine may collect the result
	coro  *coroutineContext // the launch coroutine itself

	done      bool
	value     cotestvalue.Value
	panicVal  any
	collected bool
}

// launch starts fn running as a new coroutine owned by owner, returning
// the launchSession immediately. fn runs eagerly up to its first
// suspension point or completion before launch returns, per the
// single-active-coroutine model (see spawnCoroutine).
func (s *Session) launch(owner *coroutineContext, name string, fn func(c *coroutineContext) cotestvalue.Value) *launchSession {
	l := &launchSession{id: uuid.New(), generation: s.nextGeneration(), owner: owner}
	s.launches[l.id] = l

	s.spawnCoroutineInit(name, roleLaunch,
		func(cc *coroutineContext) {
			cc.launch = l
			cc.owner = owner
			l.coro = cc
		},
		func(cc *coroutineContext) {
			v := fn(cc)
			l.value = v
		},
	)
	return l
}

// completeLaunch is called by onExit once the launch coroutine's
// cotestcoro.Coroutine finishes. It queues a ResultEvent directly into
// the owner's inbox; only the owner's NextEvent/WaitForResult* ever
// consumes it.
func (s *Session) completeLaunch(cc *coroutineContext, payload exitPayload) {
	l := cc.launch
	l.done = true
	if payload.panicVal != nil {
		if _, isFatal := payload.panicVal.(fatalSignal); !isFatal {
			l.panicVal = payload.panicVal
		}
	}
	s.bus.enqueue(l.owner.id, ResultEvent{Launch: l})
}

// collect returns the launch's outcome, re-panicking with the
// original value if the launched code panicked (design note: a launch
// that panics propagates that panic to whoever collects its result,
// the same way a goroutine's recovered panic would be re-raised by the
// code that joins it). It bumps the launch's generation so a second
// collection attempt through an older handle reads as stale.
func (l *launchSession) collect(s *Session) cotestvalue.Value {
	l.collected = true
	l.generation = s.nextGeneration()
	if l.panicVal != nil {
		panic(l.panicVal)
	}
	return l.value
}
