package cotest

import "github.com/jgraley/cotest/cotestvalue"

// Matcher decides whether a single boxed call argument is acceptable.
// Watches and WaitForCall* accept a Matcher per argument position; a
// literal value passed in that position is implicitly wrapped with Eq.
type Matcher func(cotestvalue.Value) bool

// Eq matches an argument structurally equal to want, via cotestvalue's
// go-cmp-based comparison.
func Eq(want any) Matcher {
	boxed := cotestvalue.Of(want)
	return func(v cotestvalue.Value) bool {
		return cotestvalue.Equal(v, boxed)
	}
}

// Any matches any argument, including an absent one.
func Any() Matcher {
	return func(cotestvalue.Value) bool { return true }
}

// toMatcher wraps a raw argument in Eq unless it is already a Matcher.
func toMatcher(a any) Matcher {
	if m, ok := a.(Matcher); ok {
		return m
	}
	return Eq(a)
}

// argsMatch reports whether call's arguments satisfy matchers
// position-by-position. A call with a different argument count never
// matches.
func argsMatch(call *MockCall, matchers []Matcher) bool {
	if call.NumArgs() != len(matchers) {
		return false
	}
	for i, m := range matchers {
		if !m(call.Arg(i)) {
			return false
		}
	}
	return true
}
