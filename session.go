package cotest

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jgraley/cotest/internal/env"
)

// TestingT is the reporting surface cotest needs from the enclosing Go
// test. *testing.T satisfies it.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Session is one running cotest scenario: the scheduler state, the
// coroutine table, the dispatch registry, and the configuration that
// governs them. A Session is created by Run and lives for one Go test.
type Session struct {
	mu sync.Mutex

	t      TestingT
	logger *slog.Logger

	deadlockTimeout time.Duration
	busCapacityHint int

	coros        map[uuid.UUID]*coroutineContext
	launches     map[uuid.UUID]*launchSession
	calls        map[uuid.UUID]*MockCall
	bus          *eventBus
	registry     *registry
	nextPriority int
	generation   uint64

	failed     bool
	firstFatal string
}

// fatalSignal is panicked to unwind a single coroutine's goroutine when
// a programming error is detected deep inside it (e.g. a server-style
// violation). It is always recovered by the coroutine's own entry
// wrapper and never escapes to crash the process; Run inspects
// Session.firstFatal on the real test goroutine once the whole
// resumption cascade settles and calls t.Fatalf from there.
type fatalSignal struct{ msg string }

// Option configures a Session. Apply with Run.
type Option func(*Session)

// WithLogger overrides the session's structured logger. The default is a
// text handler writing to stderr at the level selected by
// COTEST_LOG_LEVEL (info unless set).
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDeadlockTimeout bounds how long the scheduler waits for a single
// coroutine resumption before concluding the system is deadlocked. The
// default is read from COTEST_DEADLOCK_TIMEOUT, falling back to 5s.
func WithDeadlockTimeout(d time.Duration) Option {
	return func(s *Session) { s.deadlockTimeout = d }
}

// WithEventBusCapacity records an advisory per-coroutine inbox size hint
// on the session. The event bus grows its inboxes on demand and does not
// read the hint. Default is read from COTEST_EVENT_BUS_CAPACITY (8).
func WithEventBusCapacity(n int) Option {
	return func(s *Session) { s.busCapacityHint = n }
}

// WithHostMockFactory has no effect: its argument is discarded. Tests
// construct their own host mock adapters (see hostmock/testifymock) and
// register them explicitly with ExpectWith.
func WithHostMockFactory(_ any) Option {
	return func(*Session) {}
}

func newSession(t TestingT, opts ...Option) *Session {
	lvl := slog.LevelInfo
	_ = lvl.UnmarshalText([]byte(env.LogLevel("info")))
	s := &Session{
		t:               t,
		logger:          slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})),
		deadlockTimeout: env.DeadlockTimeout(5 * time.Second),
		busCapacityHint: env.EventBusCapacity(8),
		coros:           make(map[uuid.UUID]*coroutineContext),
		launches:        make(map[uuid.UUID]*launchSession),
		calls:           make(map[uuid.UUID]*MockCall),
		bus:             newEventBus(),
		registry:        newRegistry(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// fail records an expectation failure (recovered; the test continues
// winding down) and reports it through t.Errorf.
func (s *Session) fail(format string, args ...any) {
	s.failed = true
	s.t.Helper()
	s.t.Errorf(format, args...)
}

// reportProgrammingError records a programming error and unwinds the
// currently running coroutine. It must be called from inside a
// coroutine's own body; the panic is caught by that coroutine's entry
// wrapper, never by the Go testing framework directly.
func (s *Session) reportProgrammingError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.mu.Lock()
	if !s.failed {
		s.failed = true
		s.firstFatal = msg
	}
	s.mu.Unlock()
	panic(fatalSignal{msg: msg})
}

// nextGeneration returns a fresh generation value, used to stamp a
// handle's referent at creation and to invalidate it again once
// disposed or collected.
func (s *Session) nextGeneration() uint64 {
	s.generation++
	return s.generation
}

// lookupCall resolves id to its MockCall only if gen still matches its
// current generation; a mismatch means the call was disposed of since
// the handle was produced.
func (s *Session) lookupCall(id uuid.UUID, gen uint64) (*MockCall, bool) {
	call, ok := s.calls[id]
	if !ok || call.generation != gen {
		return nil, false
	}
	return call, true
}

// lookupCallAny resolves id to its MockCall regardless of generation,
// for callers (Return, Panic) that have their own double-disposition
// guard and need to reach an already-disposed call to report it.
func (s *Session) lookupCallAny(id uuid.UUID) (*MockCall, bool) {
	call, ok := s.calls[id]
	return call, ok
}

// lookupLaunch resolves id to its launchSession only if gen still
// matches its current generation; a mismatch means the launch's result
// was already collected since the handle was produced.
func (s *Session) lookupLaunch(id uuid.UUID, gen uint64) (*launchSession, bool) {
	l, ok := s.launches[id]
	if !ok || l.generation != gen {
		return nil, false
	}
	return l, true
}

// reportStaleHandle fails the current coroutine with ErrStaleHandle.
func (s *Session) reportStaleHandle() {
	s.reportProgrammingError("%v", ErrStaleHandle)
}
