package cotest

import (
	"fmt"
	"testing"

	"github.com/jgraley/cotest/cotestvalue"
	"github.com/jgraley/cotest/hostmock"
)

// T is the cotest-flavoured test context passed to a scenario's body:
// the enclosing *testing.T plus the running Session.
type T struct {
	*testing.T
	session *Session
}

// Run starts a cotest scenario. body runs as the scenario's top-level
// (and, usually, only directly-authored) test coroutine; it receives
// both T (for assertions and sub-test naming) and Coro (for creating
// further coroutines, launching code under test, and waiting on
// events).
func Run(t *testing.T, name string, body func(t *T, c *Coro), opts ...Option) {
	t.Run(name, func(t *testing.T) {
		session := newSession(t, opts...)
		ct := &T{T: t, session: session}

		top := session.spawnCoroutine("test", roleTest, func(cc *coroutineContext) {
			body(ct, &Coro{cc: cc})
		})

		if session.firstFatal != "" {
			t.Fatalf("%s", session.firstFatal)
			return
		}
		if top.state != stateExited {
			t.Errorf("%v: scenario did not finish: %s", ErrDeadlock, describeStuck(session))
			return
		}
		session.finish()
	})
}

// finish runs end-of-scenario checks that don't fit naturally into any
// single coroutine's exit: host mock library verification, and launches
// whose result nobody ever collected.
func (s *Session) finish() {
	for _, h := range s.registry.hosts {
		if !h.chain.Verify(s.t) {
			s.fail("host mock expectations were not satisfied")
		}
	}
	for _, l := range s.launches {
		if l.done && !l.collected {
			s.fail("%v: launch %q", ErrUncollectedLaunch, l.coro.name)
		}
	}
}

func describeStuck(s *Session) string {
	var names []string
	for _, cc := range s.coros {
		if cc.state != stateBlocked {
			continue
		}
		name := cc.name
		if ev, ok := s.bus.peek(cc.id); ok {
			name = fmt.Sprintf("%s (has a queued %T its wait condition doesn't accept)", name, ev)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "no coroutine reports being blocked"
	}
	out := "blocked: "
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// Coro is the authoring handle for one coroutine: the surface a
// scenario's body, or a coroutine's own body, uses to create more
// coroutines, launch code under test, declare watches, and wait for
// events.
type Coro struct {
	cc *coroutineContext
}

// Name is the coroutine's display name.
func (c *Coro) Name() string { return c.cc.name }

// Coroutine creates and eagerly runs a new test coroutine, returning
// once it blocks or exits.
func (c *Coro) Coroutine(name string, body func(c *Coro)) *Coro {
	cc := c.cc.session.spawnCoroutine(name, roleTest, func(cc *coroutineContext) {
		body(&Coro{cc: cc})
	})
	return &Coro{cc: cc}
}

// NewCoroutine is the heap-allocating variant of Coroutine: it creates
// and eagerly runs a new test coroutine directly off the Session rather
// than through a parent Coro, for coroutines that must outlive the
// declaring function's stack frame.
func (t *T) NewCoroutine(name string, body func(c *Coro)) *Coro {
	cc := t.session.spawnCoroutine(name, roleTest, func(cc *coroutineContext) {
		body(&Coro{cc: cc})
	})
	return &Coro{cc: cc}
}

// Call issues a mock call to obj.method with args, blocking until the
// call is disposed of, and returns its return values (empty for a void
// call). It must be called from the coroutine currently executing code
// under test; hand-written mock types call this from their own
// methods.
func (c *Coro) Call(obj any, method string, args ...any) []cotestvalue.Value {
	return issueCall(c.cc, obj, method, args...)
}

// WatchCall declares standing interest in calls to obj.method matching
// args (literals are wrapped with Eq). The returned Watch can be
// narrowed further with With before the coroutine next calls NextEvent.
func (c *Coro) WatchCall(obj any, method string, args ...any) *Watch {
	matchers := make([]Matcher, len(args))
	for i, a := range args {
		matchers[i] = toMatcher(a)
	}
	c.cc.session.nextPriority++
	w := &Watch{owner: c.cc, obj: obj, method: method, matchers: matchers, priority: c.cc.session.nextPriority}
	c.cc.session.registry.addWatch(w)
	return w
}

// WatchAnyCall declares standing interest in every mock call, regardless
// of object or method. Narrow it with a later WaitForCall/WaitForAnyCall
// predicate, or With, rather than at declaration time.
func (c *Coro) WatchAnyCall() *Watch {
	c.cc.session.nextPriority++
	w := &Watch{owner: c.cc, priority: c.cc.session.nextPriority}
	c.cc.session.registry.addWatch(w)
	return w
}

// ExpectWith registers a host mock library's expectation chain (for
// example a testifymock.Adapter) into the same dispatch priority order
// as this coroutine's own watches.
func (c *Coro) ExpectWith(chain hostmock.Chain) {
	c.cc.session.nextPriority++
	c.cc.session.registry.addHostChain(chain, c.cc.session.nextPriority)
}

// NextEvent blocks until any event arrives: a mock call from watched
// objects, or the completion of a launch this coroutine created.
func (c *Coro) NextEvent() EventHandle {
	return nextEvent(c.cc, anyEvent)
}

// WaitForCall blocks until a call to obj.method matching args arrives,
// returning it as an undisposed MockCallHandle: the caller still decides
// its disposition with Return, Panic, or (via EventHandle) Drop.
func (c *Coro) WaitForCall(obj any, method string, args ...any) MockCallHandle {
	pred := callPredicate(obj, method, args, nil)
	h := nextEvent(c.cc, pred)
	mh, ok := h.IsCall(obj, method, args...)
	if !ok {
		c.cc.session.reportProgrammingError("cotest: internal error: WaitForCall predicate matched a non-call event")
	}
	return mh
}

// WaitForCallFrom is WaitForCall narrowed to calls issued by the
// coroutine running l, also left undisposed for the caller to settle.
func (c *Coro) WaitForCallFrom(obj any, method string, l launchIdentifier, args ...any) MockCallHandle {
	pred := callPredicate(obj, method, args, l)
	h := nextEvent(c.cc, pred)
	mh, ok := h.IsCall(obj, method, args...)
	if !ok {
		c.cc.session.reportProgrammingError("cotest: internal error: WaitForCallFrom predicate matched a non-call event")
	}
	return mh
}

// WaitForCallAs is WaitForCall without argument matchers: it blocks
// until any call to obj.method arrives, of any arity, and returns it as
// a SignatureHandle[R] carrying the call's declared return type R, so
// Return is typed and arguments can be read with SigArg[T]. Use
// WaitForCall instead when the expected arguments are already known at
// the call site.
func WaitForCallAs[R any](c *Coro, obj any, method string) SignatureHandle[R] {
	pred := anyArityCallPredicate(obj, method)
	h := nextEvent(c.cc, pred)
	if !h.hasCall {
		c.cc.session.reportProgrammingError("cotest: internal error: WaitForCallAs predicate matched a non-call event")
	}
	return SignatureHandle[R]{MockCallHandle{session: h.session, id: h.callID, generation: h.callGen}}
}

// WaitForAnyCall blocks until any mock call arrives, without narrowing
// it to a particular method or disposing of it. Combine with
// EventHandle.IsCall to inspect and then accept, drop, or return it.
func (c *Coro) WaitForAnyCall() EventHandle {
	return nextEvent(c.cc, func(ev Event) bool {
		_, ok := ev.(CallEvent)
		return ok
	})
}

// WaitForResult blocks until any launch this coroutine created
// completes. Unlike NextEvent and the WaitForCall family, this does not
// enforce the server-style rule: collecting an already-running launch's
// result is independent of any mock call this coroutine is still
// holding undisposed.
func (c *Coro) WaitForResult() ResultHandle {
	h := blockUntil(c.cc, resultPredicate(nil))
	rh, ok := h.IsResult()
	if !ok {
		c.cc.session.reportProgrammingError("cotest: internal error: WaitForResult predicate matched a non-result event")
	}
	return rh
}

// Satisfy marks this coroutine as having met its own expectations. A
// coroutine that registered a watch or accepted an event must call
// Satisfy (directly, or implicitly via Retire) before exiting, or the
// scenario fails with ErrUnsatisfied.
func (c *Coro) Satisfy() { c.cc.satisfied = true }

// Retire marks this coroutine as done for good: it will no longer be
// considered for dispatch, and any further matching calls would
// oversaturate it (ErrOversaturated) were it still watching.
func (c *Coro) Retire() {
	c.cc.retired = true
	c.cc.satisfied = true
}

// Exit ends the coroutine's body immediately, as if its function had
// returned. Cardinality checks still apply.
func (c *Coro) Exit() {
	panic(exitSentinel{})
}

type exitSentinel struct{}

// Launch starts expr running as a new coroutine under test, owned by c.
// It runs eagerly up to expr's first mock call or completion. expr
// receives the launch coroutine's own Coro, which hand-written mock
// objects need to issue calls (see Coro.Call).
func Launch[R any](c *Coro, name string, expr func(lc *Coro) R) LaunchHandle[R] {
	l := c.cc.session.launch(c.cc, name, func(cc *coroutineContext) cotestvalue.Value {
		return cotestvalue.Of(expr(&Coro{cc: cc}))
	})
	return LaunchHandle[R]{session: c.cc.session, id: l.id, generation: l.generation}
}

// WaitForResultFrom blocks until l's launch completes and returns its
// typed result, panicking with the launch's own panic value if the
// launched code panicked. Like WaitForResult, it does not enforce the
// server-style rule: it may be called while an earlier WaitForCall/
// WaitForCallFrom handle from this coroutine remains undisposed.
//
// Before blocking, it verifies l still names a live, uncollected launch
// owned by the calling coroutine: a stale handle (already collected)
// reports ErrStaleHandle, and a launch created by a different coroutine
// reports ErrWrongCoroutine, rather than blocking until the deadlock
// watchdog fires with a less specific diagnosis.
func WaitForResultFrom[R any](c *Coro, l LaunchHandle[R]) R {
	var zero R
	ls, ok := l.session.lookupLaunch(l.id, l.generation)
	if !ok {
		c.cc.session.reportStaleHandle()
		return zero
	}
	if ls.owner != c.cc {
		c.cc.session.reportProgrammingError("%v: coroutine %q did not create launch %q", ErrWrongCoroutine, c.cc.name, ls.coro.name)
		return zero
	}
	h := blockUntil(c.cc, resultPredicate(l))
	rh, ok := h.IsResult()
	if !ok {
		c.cc.session.reportProgrammingError("cotest: internal error: WaitForResultFrom predicate matched a non-result event")
	}
	boxed := rh.Value()
	var out R
	if err := boxed.Unmarshal(&out); err != nil {
		c.cc.session.reportProgrammingError("%v: launch %q: %v", ErrReturnTypeMismatch, ls.coro.name, err)
	}
	return out
}
