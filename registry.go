package cotest

import (
	"sort"

	"github.com/jgraley/cotest/hostmock"
)

// Watch is a coroutine's standing declaration of interest in calls to a
// particular object and method. WatchCall creates one; With narrows it
// with an additional predicate over the whole call (its "With" clause),
// evaluated after the argument matchers.
type Watch struct {
	owner    *coroutineContext
	obj      any
	method   string
	matchers []Matcher
	with     func(MockCallHandle) bool
	priority int
}

// With attaches an additional predicate over the matched call, given a
// read-only handle (GetArg, From). It replaces any previously attached
// predicate.
func (w *Watch) With(pred func(MockCallHandle) bool) *Watch {
	w.with = pred
	return w
}

// wildcard reports whether w was declared with WatchAnyCall: no object,
// no method, no argument matchers, matching any call outright.
func (w *Watch) wildcard() bool {
	return w.obj == nil && w.method == "" && len(w.matchers) == 0
}

func (w *Watch) matches(call *MockCall) bool {
	if !w.wildcard() {
		if call.obj != w.obj || call.method != w.method {
			return false
		}
		if !argsMatch(call, w.matchers) {
			return false
		}
	}
	if w.with != nil && !w.with(MockCallHandle{session: w.owner.session, id: call.id, generation: call.generation}) {
		return false
	}
	return true
}

// hostEntry wires a host mock library's whole expectation chain into
// cotest's own priority-ordered registry as a single entry.
type hostEntry struct {
	chain    hostmock.Chain
	priority int
}

// registry is the ordered handler chain a dispatched call is walked
// against: last-declared-first-served, matching the host mock library's
// own convention (testify/mock tries expectations most-recent-first).
type registry struct {
	watches []*Watch
	hosts   []*hostEntry
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) addWatch(w *Watch) {
	r.watches = append(r.watches, w)
}

func (r *registry) addHostChain(c hostmock.Chain, priority int) {
	r.hosts = append(r.hosts, &hostEntry{chain: c, priority: priority})
}

// chainEntry is one node of the merged, priority-sorted walk order.
type chainEntry struct {
	watch    *Watch
	host     *hostEntry
	priority int
}

// walkOrder returns every registered entry (watches and host-library
// expectations) sorted highest priority first.
func (r *registry) walkOrder() []chainEntry {
	entries := make([]chainEntry, 0, len(r.watches)+len(r.hosts))
	for _, w := range r.watches {
		entries = append(entries, chainEntry{watch: w, priority: w.priority})
	}
	for _, h := range r.hosts {
		entries = append(entries, chainEntry{host: h, priority: h.priority})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})
	return entries
}

func (r *registry) watchCountFor(owner *coroutineContext) int {
	n := 0
	for _, w := range r.watches {
		if w.owner == owner {
			n++
		}
	}
	return n
}
