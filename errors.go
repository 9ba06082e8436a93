package cotest

import "errors"

// Programming errors: misuse of the cotest API. These fail the test
// immediately with a precise site, using sentinel errors formatted into
// the failure message at the point of use.
var (
	// ErrServerStyleViolation indicates a coroutine polled for another
	// mock call (NextEvent, WaitForCall, WaitForCallFrom, WaitForAnyCall)
	// while one it already holds remains undisposed. Collecting a launch
	// result (WaitForResult, WaitForResultFrom) or starting a new Launch
	// is unaffected: neither touches the undisposed call's bookkeeping.
	ErrServerStyleViolation = errors.New("cotest: server-style rule violation: a mock call is still undisposed")

	// ErrWrongCoroutine indicates an attempt to collect a launch's
	// result from a coroutine other than the one that created it.
	ErrWrongCoroutine = errors.New("cotest: launch result collected by a coroutine that did not create it")

	// ErrStaleHandle indicates a handle was used after its referent's
	// lifetime ended, or was produced by a different Session.
	ErrStaleHandle = errors.New("cotest: handle is stale or belongs to a different session")

	// ErrReturnTypeMismatch indicates a boxed value could not be
	// unmarshalled into the type the caller asked for: a call argument
	// read with SigArg, or a launch result read with WaitForResultFrom.
	ErrReturnTypeMismatch = errors.New("cotest: return value does not match the call's declared type")

	// ErrDoubleDisposition indicates Accept, Drop, or Return was called
	// more than once on the same mock call.
	ErrDoubleDisposition = errors.New("cotest: mock call already disposed of")
)

// Expectation failures: recovered locally so the test winds down and the
// host library's own report still prints.
var (
	// ErrUnsatisfied indicates a coroutine exited without being
	// satisfied.
	ErrUnsatisfied = errors.New("cotest: coroutine exited unsatisfied")

	// ErrOversaturated indicates a matching mock call reached a
	// coroutine that had already exited without retiring.
	ErrOversaturated = errors.New("cotest: oversaturated coroutine")

	// ErrUncollectedLaunch indicates a launch handle went out of scope
	// without its result being collected.
	ErrUncollectedLaunch = errors.New("cotest: launch result was never collected")

	// ErrDeadlock indicates the scheduler found no runnable coroutine
	// while at least one test coroutine was still pending.
	ErrDeadlock = errors.New("cotest: deadlock: no runnable coroutine")

	// ErrUnmatchedCall indicates a mock call reached the end of the
	// handler chain without being consumed.
	ErrUnmatchedCall = errors.New("cotest: unmatched mock call")
)
