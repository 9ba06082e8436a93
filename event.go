package cotest

import "github.com/jgraley/cotest/cotestvalue"

// Event is something a coroutine can wait for: a mock call issued by a
// launched coroutine under test, or the completion of a launch.
type Event interface {
	isEvent()
}

// CallEvent wraps a mock call offered to the handler chain.
type CallEvent struct {
	Call *MockCall
}

func (CallEvent) isEvent() {}

// ResultEvent wraps the completion of a launch session.
type ResultEvent struct {
	Launch *launchSession
}

func (ResultEvent) isEvent() {}

// Predicate is the interior filter a waiting coroutine applies to a
// candidate Event: WaitForCall/WaitForResult and their From variants
// compile down to one of these.
type Predicate func(Event) bool

// anyEvent matches every event; used by plain NextEvent.
func anyEvent(Event) bool { return true }

// yielded values: what a coroutine body sends the scheduler via its
// cotestcoro yield call. Unexported; cotestcoro's Event/Resumption types
// are `any`, so these are cotest's half of that protocol.
type yieldBlocked struct {
	pred Predicate
}

type yieldIssueCall struct {
	call *MockCall
}

// exitPayload is what an entry function returns when the underlying
// cotestcoro.Coroutine runs to completion; it is cotestcoro's terminal
// Event value, recovered from Coroutine.Resume's `live == false` branch.
type exitPayload struct {
	panicVal any // non-nil if the body panicked and was recovered by the entry wrapper
}

// resumption values: what the scheduler sends back into a coroutine.
type resumeWake struct{}

type resumeReturn struct {
	values []cotestvalue.Value
	panics any // non-nil if the call should make the caller panic (e.g. host mock rejected or matcher demands a panic return)
}
