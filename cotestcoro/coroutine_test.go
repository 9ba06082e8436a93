package cotestcoro_test

import (
	"testing"

	"github.com/jgraley/cotest/cotestcoro"
)

func TestSpawnResumeUntilBlock(t *testing.T) {
	var trace []string

	co := cotestcoro.Spawn("worker", func(yield func(cotestcoro.Event) cotestcoro.Resumption) cotestcoro.Event {
		trace = append(trace, "start")
		in := yield("first")
		trace = append(trace, "resumed:"+in.(string))
		yield("second")
		trace = append(trace, "done")
		return nil
	})

	ev, live := co.Resume(nil)
	if !live {
		t.Fatalf("expected coroutine to be live after first resume")
	}
	if ev != "first" {
		t.Fatalf("unexpected event: %v", ev)
	}
	if len(trace) != 1 || trace[0] != "start" {
		t.Fatalf("unexpected trace: %v", trace)
	}

	ev, live = co.Resume("hello")
	if !live {
		t.Fatalf("expected coroutine to be live after second resume")
	}
	if ev != "second" {
		t.Fatalf("unexpected event: %v", ev)
	}

	ev, live = co.Resume(nil)
	if live {
		t.Fatalf("expected coroutine to have returned")
	}
	if ev != nil {
		t.Fatalf("unexpected final event: %v", ev)
	}
	if !co.Done() {
		t.Fatalf("expected Done() to be true")
	}
	if len(trace) != 3 || trace[2] != "done" {
		t.Fatalf("unexpected trace: %v", trace)
	}
}

func TestStopUnblocksWithoutRunningToCompletion(t *testing.T) {
	reached := false

	co := cotestcoro.Spawn("worker", func(yield func(cotestcoro.Event) cotestcoro.Resumption) cotestcoro.Event {
		yield("blocked")
		reached = true
		return nil
	})

	if _, live := co.Resume(nil); !live {
		t.Fatalf("expected coroutine to be live")
	}

	co.Stop()

	if !co.Done() {
		t.Fatalf("expected Done() after Stop")
	}
	if reached {
		t.Fatalf("entry function body should not have continued past the blocked yield")
	}
}
