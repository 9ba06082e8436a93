package cotest

import (
	"github.com/google/uuid"

	"github.com/jgraley/cotest/cotestvalue"
	"github.com/jgraley/cotest/hostmock"
)

// issueCall is what a hand-written mock method calls when code under
// test invokes it. It must run on cc's own goroutine (cc is the launch
// coroutine currently executing), since it yields back to the
// scheduler and blocks until a disposition arrives.
func issueCall(cc *coroutineContext, obj any, method string, args ...any) []cotestvalue.Value {
	boxed := make([]cotestvalue.Value, len(args))
	for i, a := range args {
		boxed[i] = cotestvalue.Of(a)
	}
	call := &MockCall{
		id:         uuid.New(),
		generation: cc.session.nextGeneration(),
		obj:        obj,
		method:     method,
		args:       boxed,
		issuer:     cc,
	}
	cc.session.calls[call.id] = call
	resumption := cc.yield(yieldIssueCall{call: call})
	rr, ok := resumption.(resumeReturn)
	if !ok {
		cc.session.reportProgrammingError("cotest: internal error: expected resumeReturn, got %T", resumption)
	}
	if rr.panics != nil {
		panic(rr.panics)
	}
	return rr.values
}

// watchOutcome is what offering a call to one watch entry produced.
type watchOutcome int

const (
	// outcomeNoMatch means the watch's pattern didn't apply (or its
	// owner is retired, which is equivalent to not existing): the walk
	// continues to the next entry as if this one weren't there.
	outcomeNoMatch watchOutcome = iota
	// outcomePending means the pattern applied and the call now belongs
	// to that owner, but the owner wasn't ready to consume it this
	// instant (not blocked on a matching NextEvent right now). The call
	// is left queued in the owner's inbox for a future NextEvent/
	// WaitForCall*, and the issuing coroutine stays suspended until
	// then: the walk stops here, priority is not re-litigated.
	outcomePending
	// outcomeHandled means the call now belongs to this owner for good:
	// either disposed of with a real return or panic, or explicitly
	// dropped (EventHandle.Drop). A drop still resumes the issuer, with
	// no return values, rather than offering the call to anyone else:
	// once a call has been delivered to one owner's inbox it is that
	// owner's alone to dispose of.
	outcomeHandled
)

// dispatchCall walks the registry in priority order (most recently
// declared first), offering call to each entry in turn, and stops as
// soon as one of them takes ownership of it (by handling it, or by
// simply being the first ready candidate that claims it for later).
func (s *Session) dispatchCall(call *MockCall) {
	for _, entry := range s.registry.walkOrder() {
		switch {
		case entry.host != nil:
			if s.tryHostEntry(entry.host, call) {
				return
			}
		case entry.watch != nil:
			switch s.tryWatch(entry.watch, call) {
			case outcomeHandled, outcomePending:
				return
			case outcomeNoMatch:
				// keep walking
			}
		}
	}
	s.fail("%v: %s.%s", ErrUnmatchedCall, typeName(call.obj), call.method)
	s.resumeIssuerWithReturn(call, nil, nil)
}

func (s *Session) tryHostEntry(h *hostEntry, call *MockCall) bool {
	hc := hostmock.Call{Obj: call.obj, Method: call.method, Args: unboxAll(call.args)}
	result, consumed := h.chain.Try(hc)
	if !consumed {
		return false
	}
	var values []cotestvalue.Value
	for _, v := range result.Values {
		values = append(values, cotestvalue.Of(v))
	}
	var p any
	if result.Panicked {
		p = result.PanicVal
	}
	s.resumeIssuerWithReturn(call, values, p)
	return true
}

// tryWatch offers call to a single watch, in priority order, and
// decides whether that watch takes ownership of it. See watchOutcome
// for what each result means to the walk in dispatchCall.
func (s *Session) tryWatch(w *Watch, call *MockCall) watchOutcome {
	if w.owner.retired {
		return outcomeNoMatch
	}
	if !w.matches(call) {
		return outcomeNoMatch
	}
	if w.owner.saturated {
		if !w.owner.oversaturationReported {
			w.owner.oversaturationReported = true
			s.fail("%v: coroutine %q", ErrOversaturated, w.owner.name)
		}
		return outcomeNoMatch
	}
	s.bus.enqueue(w.owner.id, CallEvent{Call: call})
	if w.owner.state != stateBlocked {
		return outcomePending
	}
	pred := w.owner.waitPred
	if pred == nil || !pred(CallEvent{Call: call}) {
		return outcomePending
	}
	s.resumeCoroutine(w.owner, resumeWake{})
	if !call.isDisposed() {
		return outcomePending
	}
	return outcomeHandled
}

// resumeIssuerWithReturn delivers a disposition's outcome back into the
// coroutine that issued the call, resuming it past its yieldIssueCall.
func (s *Session) resumeIssuerWithReturn(call *MockCall, values []cotestvalue.Value, panicVal any) {
	issuer := call.issuer
	s.resumeCoroutine(issuer, resumeReturn{values: values, panics: panicVal})
}

func unboxAll(vs []cotestvalue.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Interface()
	}
	return out
}

func typeName(obj any) string {
	type named interface{ String() string }
	if n, ok := obj.(named); ok {
		return n.String()
	}
	return "<object>"
}
