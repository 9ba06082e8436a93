// Package cotesttest collects small assertion helpers for cotest
// scenarios, in the same plain t.Helper()/t.Errorf style as the
// substrate's own test tooling.
package cotesttest

import (
	"testing"

	"github.com/jgraley/cotest/cotestvalue"
)

// AssertValue checks that got (a boxed cotestvalue.Value, typically
// from MockCallHandle.GetArg or ResultHandle.Value) structurally equals
// want.
func AssertValue(t *testing.T, got cotestvalue.Value, want any) {
	t.Helper()

	if !cotestvalue.Equal(got, cotestvalue.Of(want)) {
		t.Errorf("unexpected value: got %v, want %v", got, want)
	}
}

// AssertOrder checks that a trace of recorded event names matches want
// exactly, in order. Scenarios typically build got by appending to a
// []string from within watch handlers or launched code.
func AssertOrder(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("unexpected number of events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unexpected event %d: got %q, want %q", i, got[i], want[i])
			return
		}
	}
}

// AssertPanics runs fn and fails unless it panics with a value equal to
// want, used to check a launch's result re-panics as expected.
func AssertPanics(t *testing.T, want any, fn func()) {
	t.Helper()

	defer func() {
		rec := recover()
		if rec == nil {
			t.Errorf("expected a panic, got none")
			return
		}
		if rec != want {
			t.Errorf("unexpected panic value: got %v, want %v", rec, want)
		}
	}()
	fn()
}
