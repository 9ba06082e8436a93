// Package hostmock defines the contract cotest uses to collaborate with
// an existing expectation-based mocking library, so that library keeps
// owning return-value scripting and its own failure reporting while
// cotest owns coroutine scheduling around it.
//
// A host mock library plugs in by implementing Chain (Entry + Verifier):
// try a candidate call against whatever expectations are currently
// registered, and verify at the end of a test that all of them were
// exercised. testifymock provides the default adapter over
// stretchr/testify's mock package.
package hostmock

// TestingT is the minimal reporting surface cotest needs from a test
// context to run a host mock library's own verification step.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

// Call is one invocation offered to the host mock library: a receiver,
// method name, and a flat argument list. cotest never interprets these
// values; it only moves them between its own boxed representation and
// whatever the host library expects.
type Call struct {
	Obj    any
	Method string
	Args   []any
}

// Result is what a consumed call resolves to.
type Result struct {
	Values   []any
	Panicked bool
	PanicVal any
}

// Entry is one opaque link cotest's registry can offer a candidate call
// to. Try reports whether this entry claims the call, and if so, the
// result to hand back to the code under test; consumed == false leaves
// the call for the next entry in cotest's walk rather than failing it
// outright.
//
// The registry only ever registers one Entry per ExpectWith call,
// rather than one per individual expectation within a host library's
// own chain: a host library such as testify/mock already owns an
// internal, ordered set of expectations and resolves a call against all
// of them in a single MethodCalled step, so there is nothing for a
// separate per-expectation Insert to add that On(...) hasn't already
// recorded. See DESIGN.md.
type Entry interface {
	Try(call Call) (result Result, consumed bool)
}

// Verifier checks every registered expectation was exercised, reporting
// through t using the host library's own conventions (testify/mock's
// AssertExpectations, for the default adapter).
type Verifier interface {
	Verify(t TestingT) (satisfied bool)
}

// Chain is a host mock library's expectation set, as cotest sees it: an
// Entry cotest's dispatch walk can try, and a Verifier the scenario
// checks once at the end.
type Chain interface {
	Entry
	Verifier
}
