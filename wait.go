package cotest

// nextEvent is the blocking primitive behind NextEvent, WaitForCall,
// WaitForCallFrom, and WaitForAnyCall: it enforces the server-style
// rule (cc may not poll for another mock call while one it already
// holds remains undisposed), then blocks until something matching pred
// arrives.
func nextEvent(cc *coroutineContext, pred Predicate) EventHandle {
	if cc.undisposed != nil {
		cc.session.reportProgrammingError("%v: coroutine %q must dispose of its current call before waiting again", ErrServerStyleViolation, cc.name)
	}
	return blockUntil(cc, pred)
}

// blockUntil is nextEvent without the server-style check: WaitForResult
// and WaitForResultFrom use it directly, since collecting an
// already-running launch's result never conflicts with a mock call
// this coroutine is still holding open.
func blockUntil(cc *coroutineContext, pred Predicate) EventHandle {
	for {
		if ev, ok := cc.session.bus.takeMatching(cc.id, pred); ok {
			return wrapEvent(cc, ev)
		}
		cc.waitPred = pred
		cc.yield(yieldBlocked{pred: pred})
	}
}

func wrapEvent(cc *coroutineContext, ev Event) EventHandle {
	switch e := ev.(type) {
	case CallEvent:
		e.Call.consumer = cc
		cc.undisposed = e.Call
		return EventHandle{session: cc.session, hasCall: true, callID: e.Call.id, callGen: e.Call.generation}
	case ResultEvent:
		return EventHandle{session: cc.session, hasResult: true, resultID: e.Launch.id, resultGen: e.Launch.generation}
	default:
		cc.session.reportProgrammingError("cotest: internal error: unrecognised event %T", ev)
		return EventHandle{}
	}
}

// anyArityCallPredicate matches any call to obj.method regardless of
// argument count or values, used by WaitForCallAs to produce a
// SignatureHandle without narrowing by argument matchers (argsMatch
// requires exact arity, which would wrongly exclude calls that carry
// arguments).
func anyArityCallPredicate(obj any, method string) Predicate {
	return func(ev Event) bool {
		ce, ok := ev.(CallEvent)
		if !ok {
			return false
		}
		return ce.Call.obj == obj && ce.Call.method == method
	}
}

// callPredicate matches a CallEvent on obj.method with the given
// argument matchers (literals are wrapped with Eq), optionally narrowed
// further to calls issued by a specific launch.
func callPredicate(obj any, method string, args []any, from launchIdentifier) Predicate {
	matchers := make([]Matcher, len(args))
	for i, a := range args {
		matchers[i] = toMatcher(a)
	}
	return func(ev Event) bool {
		ce, ok := ev.(CallEvent)
		if !ok {
			return false
		}
		if ce.Call.obj != obj || ce.Call.method != method {
			return false
		}
		if !argsMatch(ce.Call, matchers) {
			return false
		}
		if from != nil {
			if ce.Call.issuer == nil || ce.Call.issuer.launch == nil || ce.Call.issuer.launch.id != from.launchID() {
				return false
			}
		}
		return true
	}
}

func resultPredicate(from launchIdentifier) Predicate {
	return func(ev Event) bool {
		re, ok := ev.(ResultEvent)
		if !ok {
			return false
		}
		if from == nil {
			return true
		}
		return re.Launch.id == from.launchID()
	}
}
