// Package cotestcoro implements the coroutine substrate cotest's scheduler
// is built on: a set of cooperatively scheduled execution contexts with
// pass-the-baton semantics, where exactly one runs at a time.
//
// It is a thin, generic wrapper around github.com/dispatchrun/coroutine,
// which itself falls back to goroutines handed off through channels when
// the program has not been instrumented for durable (serializable)
// coroutines. Cotest only ever runs in that volatile mode: nothing here
// is ever serialized, so the substrate is exercised purely for its
// single-active-goroutine scheduling guarantee.
package cotestcoro

import (
	"github.com/dispatchrun/coroutine"
)

// Event is a value yielded by a coroutine back to the scheduler.
type Event any

// Resumption is a value sent by the scheduler into a coroutine to
// resume it.
type Resumption any

// Coroutine is one cooperatively scheduled execution context.
//
// The zero value is not usable; create one with Spawn.
type Coroutine struct {
	name string
	co   coroutine.Coroutine[Event, Resumption]
	done bool
}

// Spawn creates a coroutine from an entry point. The entry function
// receives a yield function it must call every time it wants to hand
// control back to the scheduler; yield returns the Resumption the
// scheduler supplied on the next Resume call. Its return value becomes
// the coroutine's final Event, available from Resume once it reports
// live == false.
//
// The coroutine does not start running until the first call to Resume.
func Spawn(name string, entry func(yield func(Event) Resumption) Event) *Coroutine {
	body := func() Event {
		return entry(func(ev Event) Resumption {
			return coroutine.Yield[Event, Resumption](ev)
		})
	}
	return &Coroutine{
		name: name,
		co:   coroutine.NewWithReturn[Event, Resumption](body),
	}
}

// Name is the display name the coroutine was spawned with.
func (c *Coroutine) Name() string { return c.name }

// Done reports whether the coroutine has returned (normally or via Stop).
func (c *Coroutine) Done() bool { return c.done }

// Resume transfers control to the coroutine, delivering in as the result
// of the coroutine's most recent yield call (ignored on the first
// Resume). It blocks until the coroutine yields again or returns.
//
// live is false when the coroutine has run to completion; in that case
// out holds its final return value rather than a yielded Event.
func (c *Coroutine) Resume(in Resumption) (out Event, live bool) {
	if c.done {
		return nil, false
	}
	c.co.Send(in)
	if !c.co.Next() {
		c.done = true
		return c.co.Result(), false
	}
	return c.co.Recv(), true
}

// Stop requests the coroutine unwind without running to completion
// naturally. It is used to tear down coroutines that are still blocked
// when their owning test ends.
func (c *Coroutine) Stop() {
	if c.done {
		return
	}
	c.co.Stop()
	c.co.Next()
	c.done = true
}
