package cotest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jgraley/cotest/cotestvalue"
)

// MockCall is one invocation of a mocked method, offered to the handler
// chain and eventually disposed of by Accept, Drop, or Return.
type MockCall struct {
	id uuid.UUID

	// generation changes whenever this call is disposed of, so a handle
	// captured before disposition reads as stale afterwards instead of
	// silently returning post-disposal state.
	generation uint64

	obj    any
	method string
	args   []cotestvalue.Value

	// issuer is the launch coroutine that made the call; nil is never
	// valid once the call exists, since only launch coroutines issue
	// calls.
	issuer *coroutineContext

	mu       sync.Mutex
	disposed bool
	dropped  bool
	retValue []cotestvalue.Value
	retPanic any

	// consumer is the coroutine currently holding this call undisposed,
	// i.e. the coroutine that most recently received it via NextEvent or
	// WaitForCall and has not yet disposed of it.
	consumer *coroutineContext
}

// Obj is the receiver the call was made on, as passed to Call.
func (m *MockCall) Obj() any { return m.obj }

// Method is the mocked method name.
func (m *MockCall) Method() string { return m.method }

// NumArgs returns the number of arguments the call carries.
func (m *MockCall) NumArgs() int { return len(m.args) }

// Arg returns the i'th argument as a boxed Value.
func (m *MockCall) Arg(i int) cotestvalue.Value { return m.args[i] }

func (m *MockCall) isDisposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}
