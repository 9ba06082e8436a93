package cotest

import "github.com/google/uuid"

// eventBus holds, per coroutine, the events that have been routed to it
// (by a matching watch, or directly for launch results) but not yet
// consumed by a NextEvent/WaitFor* call. Events that fail a waiting
// coroutine's interior filter stay queued for a later call.
type eventBus struct {
	inboxes map[uuid.UUID][]Event
}

func newEventBus() *eventBus {
	return &eventBus{inboxes: make(map[uuid.UUID][]Event)}
}

// enqueue routes ev to owner's inbox.
func (b *eventBus) enqueue(owner uuid.UUID, ev Event) {
	b.inboxes[owner] = append(b.inboxes[owner], ev)
}

// takeMatching removes and returns the first queued event for owner
// that satisfies pred, preserving the relative order of the rest.
func (b *eventBus) takeMatching(owner uuid.UUID, pred Predicate) (Event, bool) {
	q := b.inboxes[owner]
	for i, ev := range q {
		if pred(ev) {
			b.inboxes[owner] = append(q[:i:i], q[i+1:]...)
			return ev, true
		}
	}
	return nil, false
}

// pending reports how many events owner has queued.
func (b *eventBus) pending(owner uuid.UUID) int {
	return len(b.inboxes[owner])
}

// peek returns owner's oldest queued event without removing it, for
// diagnostics that need to inspect why a coroutine is stuck without
// disturbing its inbox.
func (b *eventBus) peek(owner uuid.UUID) (Event, bool) {
	q := b.inboxes[owner]
	if len(q) == 0 {
		return nil, false
	}
	return q[0], true
}
