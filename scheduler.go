package cotest

import (
	"fmt"
	"time"

	"github.com/jgraley/cotest/cotestcoro"
)

// spawnCoroutine creates and eagerly runs a new coroutine context until
// its first suspension point (a mock call it must wait on) or its
// completion. Run, Coroutine and NewCoroutine use this, and Launch uses
// its spawnCoroutineInit form: in cotest's
// single-active-coroutine model, a freshly created coroutine is the
// only thing that could possibly run next, so there is no separate
// "ready queue" to pump later.
func (s *Session) spawnCoroutine(name string, r role, body func(c *coroutineContext)) *coroutineContext {
	return s.spawnCoroutineInit(name, r, nil, body)
}

// spawnCoroutineInit is spawnCoroutine with an extra init hook run after
// cc exists but before it is eagerly resumed, so callers can attach
// bookkeeping (such as a launchSession) that must already be in place
// before the coroutine's first suspension or completion is processed.
func (s *Session) spawnCoroutineInit(name string, r role, init func(*coroutineContext), body func(c *coroutineContext)) *coroutineContext {
	cc := newCoroutineContext(s, name, r)
	s.coros[cc.id] = cc

	cc.coro = cotestcoro.Spawn(name, func(yield func(cotestcoro.Event) cotestcoro.Resumption) (final cotestcoro.Event) {
		defer func() {
			if rec := recover(); rec != nil {
				// Propagate fatalSignal and ordinary CUT panics alike as
				// the coroutine's completion payload; the scheduler
				// decides what to do with each on the way out.
				final = exitPayload{panicVal: rec}
			}
		}()
		cc.yield = func(ev any) any {
			return yield(ev)
		}
		body(cc)
		return exitPayload{}
	})

	if init != nil {
		init(cc)
	}

	s.resumeCoroutine(cc, nil)
	return cc
}

// resumeCoroutine transfers control to cc, applying the deadlock
// watchdog, and processes whatever it yields: a block request (recorded
// on cc) or an issued mock call (dispatched immediately).
func (s *Session) resumeCoroutine(cc *coroutineContext, in cotestcoro.Resumption) {
	ev, live := s.resumeWithWatchdog(cc, in)
	if !live {
		s.onExit(cc, ev)
		return
	}
	switch y := ev.(type) {
	case yieldBlocked:
		cc.state = stateBlocked
		cc.waitPred = y.pred
	case yieldIssueCall:
		cc.state = stateBlocked
		cc.waitPred = nil
		s.dispatchCall(y.call)
	default:
		s.reportUnexpectedYield(cc, ev)
	}
}

func (s *Session) resumeWithWatchdog(cc *coroutineContext, in cotestcoro.Resumption) (cotestcoro.Event, bool) {
	cc.state = stateRunning
	if s.deadlockTimeout <= 0 {
		return cc.coro.Resume(in)
	}
	type result struct {
		ev   cotestcoro.Event
		live bool
	}
	done := make(chan result, 1)
	go func() {
		ev, live := cc.coro.Resume(in)
		done <- result{ev, live}
	}()
	select {
	case r := <-done:
		return r.ev, r.live
	case <-time.After(s.deadlockTimeout):
		s.fail("%v: coroutine %q did not yield within %s", ErrDeadlock, cc.name, s.deadlockTimeout)
		return exitPayload{}, false
	}
}

func (s *Session) reportUnexpectedYield(cc *coroutineContext, ev cotestcoro.Event) {
	s.reportProgrammingErrorFor(cc, "cotest: internal error: unexpected yield value %T from coroutine %q", ev, cc.name)
}

// reportProgrammingErrorFor is used by the scheduler itself (running on
// whatever goroutine triggered this resumption, not necessarily the
// target's own), so it cannot simply panic into cc's goroutine. It
// records the failure for Run to report; dispatch carries on as before.
func (s *Session) reportProgrammingErrorFor(cc *coroutineContext, format string, args ...any) {
	s.failed = true
	if s.firstFatal == "" {
		s.firstFatal = fmt.Sprintf(format, args...)
	}
}

// onExit runs cardinality checks for a coroutine that just completed
// (normally or via a recovered panic) and, for launch coroutines,
// delivers its ResultEvent to the owning test coroutine.
func (s *Session) onExit(cc *coroutineContext, ev cotestcoro.Event) {
	cc.state = stateExited
	if !cc.retired {
		cc.saturated = true
	}
	payload, _ := ev.(exitPayload)

	cleanExit := payload.panicVal == nil
	if payload.panicVal != nil {
		switch p := payload.panicVal.(type) {
		case fatalSignal:
			s.failed = true
			if s.firstFatal == "" {
				s.firstFatal = p.msg
			}
		case exitSentinel:
			cleanExit = true
			payload.panicVal = nil
		default:
			if cc.role == roleTest {
				s.fail("coroutine %q panicked: %v", cc.name, p)
			}
		}
	}

	if cc.role == roleLaunch && cc.launch != nil {
		s.completeLaunch(cc, payload)
	}

	if cleanExit && !cc.cardinalityOK() {
		s.fail("%v: coroutine %q exited without being satisfied or retired", ErrUnsatisfied, cc.name)
	}
}
