package campaign

import "sync"

// Listener receives the new snapshot after a mutation is applied.
type Listener func(Snapshot)

// Signal is a synchronous publish/subscribe primitive for snapshot updates.
//
// Delivery semantics: Publish invokes every listener exactly once, in
// subscription order, on the publishing goroutine, before returning. A
// listener that unsubscribes during notification is skipped if it has not yet
// been invoked in that pass; listeners subscribed during notification are not
// invoked until the next Publish.
type Signal struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]Listener
}

// NewSignal returns an empty signal.
func NewSignal() *Signal {
	return &Signal{subs: make(map[int]Listener)}
}

// Subscribe registers a listener and returns its unsubscribe function. The
// unsubscribe function is idempotent.
func (s *Signal) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.order = append(s.order, id)
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers snap to every subscribed listener.
func (s *Signal) Publish(snap Snapshot) {
	s.mu.Lock()
	ids := make([]int, len(s.order))
	copy(ids, s.order)
	s.mu.Unlock()

	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.subs[id]
		s.mu.Unlock()
		if ok {
			fn(snap)
		}
	}
}

// Len returns the number of live subscriptions.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
