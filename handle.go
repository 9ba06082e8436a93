package cotest

import (
	"github.com/google/uuid"

	"github.com/jgraley/cotest/cotestvalue"
)

// launchIdentifier lets ResultHandle.From accept any LaunchHandle[R]
// regardless of its result type R.
type launchIdentifier interface {
	launchID() uuid.UUID
}

// LaunchHandle identifies one launch session and remembers its result
// type, so WaitForResultFrom can hand back a typed value instead of a
// boxed one. It stores an id and the generation current when it was
// produced, not a raw pointer, so a repeat collection attempt through a
// stale handle is detectable instead of silently blocking.
type LaunchHandle[R any] struct {
	session    *Session
	id         uuid.UUID
	generation uint64
}

func (l LaunchHandle[R]) launchID() uuid.UUID { return l.id }

// Valid reports whether the handle refers to a real launch (the zero
// value does not).
func (l LaunchHandle[R]) Valid() bool { return l.session != nil }

// EventHandle is whatever NextEvent returned: either a mock call or a
// launch's completion, not yet narrowed to either. It carries ids and
// generations rather than raw pointers, resolved against the Session's
// tables when narrowed or disposed of.
type EventHandle struct {
	session *Session

	hasCall bool
	callID  uuid.UUID
	callGen uint64

	hasResult bool
	resultID  uuid.UUID
	resultGen uint64
}

// IsCall narrows the event to a call on obj.method matching args,
// wrapping literal arguments with Eq automatically. ok is false if the
// event isn't a call, or doesn't match.
func (h EventHandle) IsCall(obj any, method string, args ...any) (MockCallHandle, bool) {
	if !h.hasCall {
		return MockCallHandle{}, false
	}
	call, ok := h.session.lookupCall(h.callID, h.callGen)
	if !ok {
		return MockCallHandle{}, false
	}
	if call.obj != obj || call.method != method {
		return MockCallHandle{}, false
	}
	matchers := make([]Matcher, len(args))
	for i, a := range args {
		matchers[i] = toMatcher(a)
	}
	if !argsMatch(call, matchers) {
		return MockCallHandle{}, false
	}
	return MockCallHandle{session: h.session, id: call.id, generation: call.generation}, true
}

// IsResult narrows the event to a launch completion.
func (h EventHandle) IsResult() (ResultHandle, bool) {
	if !h.hasResult {
		return ResultHandle{}, false
	}
	l, ok := h.session.lookupLaunch(h.resultID, h.resultGen)
	if !ok {
		return ResultHandle{}, false
	}
	return ResultHandle{session: h.session, id: l.id, generation: l.generation}, true
}

// Accept disposes of a call event with no return value (a void call),
// or acknowledges a result event without collecting it (collection
// happens through ResultHandle, see IsResult).
func (h EventHandle) Accept() {
	if !h.hasCall {
		return
	}
	call, ok := h.session.lookupCallAny(h.callID)
	if !ok {
		h.session.reportStaleHandle()
		return
	}
	disposeCall(h.session, call, false, nil, nil)
}

// Drop disposes of a call event by declining it: the call returns to
// the code under test with no values and no panic, as if no expectation
// had applied, without being offered to any other handler. Dropping a
// result event is a no-op; a launch's result always belongs to its
// owner and is never re-routed.
func (h EventHandle) Drop() {
	if !h.hasCall {
		return
	}
	call, ok := h.session.lookupCallAny(h.callID)
	if !ok {
		h.session.reportStaleHandle()
		return
	}
	disposeCall(h.session, call, true, nil, nil)
}

// MockCallHandle is a call event narrowed to a specific method and
// argument shape, ready to be returned from or inspected. It stores an
// id and a captured generation rather than a raw *MockCall, so reading
// it after the call has been disposed of is caught as a stale handle
// instead of silently reaching into post-disposal state.
type MockCallHandle struct {
	session    *Session
	id         uuid.UUID
	generation uint64
}

// Valid reports whether the handle refers to a real call.
func (m MockCallHandle) Valid() bool { return m.session != nil }

// resolve looks up the call this handle names, enforcing that its
// captured generation still matches: used by read accessors (GetArg,
// From) that have no disposition guard of their own.
func (m MockCallHandle) resolve() *MockCall {
	if m.session == nil {
		return nil
	}
	call, ok := m.session.lookupCall(m.id, m.generation)
	if !ok {
		m.session.reportStaleHandle()
		return nil
	}
	return call
}

// call looks up the call this handle names regardless of generation,
// used by Return/Panic, which have their own double-disposition guard
// (ErrDoubleDisposition) and must be able to reach an already-disposed
// call in order to report it precisely.
func (m MockCallHandle) call() *MockCall {
	if m.session == nil {
		return nil
	}
	call, ok := m.session.lookupCallAny(m.id)
	if !ok {
		m.session.reportStaleHandle()
		return nil
	}
	return call
}

// GetArg returns the call's i'th argument as a boxed Value.
func (m MockCallHandle) GetArg(i int) cotestvalue.Value {
	call := m.resolve()
	if call == nil {
		return cotestvalue.Nil()
	}
	return call.Arg(i)
}

// sessionRef exposes the handle's Session to the SigArg free function;
// GetArg can't carry its own type parameter (Go methods can't), so
// typed argument extraction lives there instead.
func (m MockCallHandle) sessionRef() *Session { return m.session }

// From reports whether this call was issued by the coroutine running l.
func (m MockCallHandle) From(l launchIdentifier) bool {
	call := m.resolve()
	if call == nil || call.issuer == nil || call.issuer.launch == nil {
		return false
	}
	return call.issuer.launch.id == l.launchID()
}

// Return disposes of the call by supplying its return values to the
// code under test.
func (m MockCallHandle) Return(values ...any) {
	call := m.call()
	if call == nil {
		return
	}
	boxed := make([]cotestvalue.Value, len(values))
	for i, v := range values {
		boxed[i] = cotestvalue.Of(v)
	}
	disposeCall(m.session, call, false, boxed, nil)
}

// Panic disposes of the call by making it panic in the code under test
// with v, instead of returning normally.
func (m MockCallHandle) Panic(v any) {
	call := m.call()
	if call == nil {
		return
	}
	disposeCall(m.session, call, false, nil, v)
}

// argGetter is satisfied by any handle exposing GetArg plus its owning
// Session; SigArg uses it to report a typed unmarshal failure at the
// right handle.
type argGetter interface {
	GetArg(i int) cotestvalue.Value
	sessionRef() *Session
}

// SigArg extracts the i'th argument of a call reached through a
// SignatureHandle, typed as T. Go methods can't carry their own type
// parameter, so this stands in for the "GetArg[i]() ArgType" a
// SignatureHandle method can't literally express; a mismatch between
// the call's actual argument type and T is a programming error
// (ErrReturnTypeMismatch), not a silent zero value.
func SigArg[T any](h argGetter, i int) T {
	var out T
	boxed := h.GetArg(i)
	if err := boxed.Unmarshal(&out); err != nil {
		h.sessionRef().reportProgrammingError("%v: argument %d: %v", ErrReturnTypeMismatch, i, err)
	}
	return out
}

// SignatureHandle is the typed form of a MockCallHandle produced by
// WaitForCallAs: R is the call's declared return type, known at the
// WaitForCallAs call site, so Return is typed without a run-time check.
// Use SigArg[T] to extract typed arguments.
type SignatureHandle[R any] struct {
	MockCallHandle
}

// Return disposes of the call with a value of its declared return type.
func (s SignatureHandle[R]) Return(v R) {
	s.MockCallHandle.Return(v)
}

// ResultHandle is a result event narrowed from NextEvent, or the
// outcome of WaitForResult/WaitForResultFrom. It stores an id and a
// captured generation rather than a raw *launchSession, so a repeat
// Value() call reads as stale instead of double-collecting silently.
type ResultHandle struct {
	session    *Session
	id         uuid.UUID
	generation uint64
}

// Valid reports whether the handle refers to a real result.
func (r ResultHandle) Valid() bool { return r.session != nil }

// From reports whether this result belongs to the launch identified by
// l.
func (r ResultHandle) From(l launchIdentifier) bool {
	if r.session == nil {
		return false
	}
	return r.id == l.launchID()
}

// Value collects the boxed result, panicking with the launch's own
// panic value if the launched code panicked.
func (r ResultHandle) Value() cotestvalue.Value {
	l, ok := r.session.lookupLaunch(r.id, r.generation)
	if !ok {
		r.session.reportStaleHandle()
		return cotestvalue.Nil()
	}
	return l.collect(r.session)
}

// disposeCall applies a disposition to call exactly once, enforcing
// ErrDoubleDisposition, and clears the consuming coroutine's undisposed
// bookkeeping. It always resumes the issuing coroutine: a dropped call
// resumes it with no values and no panic, the same as an accepted void
// call. Disposition bumps the call's generation, so any handle that
// still names it reads as stale afterwards.
func disposeCall(s *Session, call *MockCall, dropped bool, values []cotestvalue.Value, panicVal any) {
	call.mu.Lock()
	if call.disposed {
		call.mu.Unlock()
		s.reportProgrammingError("%v: %s.%s", ErrDoubleDisposition, typeName(call.obj), call.method)
		return
	}
	call.disposed = true
	call.dropped = dropped
	call.retValue = values
	call.retPanic = panicVal
	call.generation = s.nextGeneration()
	consumer := call.consumer
	call.mu.Unlock()

	if consumer != nil && consumer.undisposed == call {
		consumer.undisposed = nil
	}

	s.resumeIssuerWithReturn(call, values, panicVal)
}
