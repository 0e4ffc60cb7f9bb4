package store

import (
	"sync/atomic"
)

// Listener receives the committed state after every change.
type Listener func(State)

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	store    *Store
	listener Listener
	id       uint64
	detached atomic.Bool
	// version of the newest state handed to listener
	version atomic.Uint64
}

// Unsubscribe stops delivery to the listener. It is safe to call more than
// once, from inside a listener, and after the store has been closed.
func (sub *Subscription) Unsubscribe() {
	if sub == nil || sub.store == nil {
		return
	}

	if sub.detached.Swap(true) {
		return
	}

	sub.store.removeListener(sub.id)
}

// Active reports whether the subscription still receives notifications.
func (sub *Subscription) Active() bool {
	return sub != nil && sub.store != nil && !sub.detached.Load()
}

// Snapshot reads the store state through the subscription. It fails with
// ErrDetached once the subscription has been cancelled or the store closed.
func (sub *Subscription) Snapshot() (State, error) {
	if !sub.Active() {
		return State{}, ErrDetached
	}

	return sub.store.Snapshot()
}

// Subscribe registers listener for change notifications.
//
// Listeners run synchronously on the goroutine that committed the change, in
// registration order, after the store lock is released. The listener set is
// copied before each delivery, so subscribing or unsubscribing from inside a
// listener takes effect from the next notification onwards. A listener is
// never handed a state older than one it has already received: when commits
// race, a delivery that lost to a newer version is dropped.
func (s *Store) Subscribe(listener Listener) (*Subscription, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if listener == nil {
		return nil, ErrNilListener
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	s.nextID++
	sub := &Subscription{store: s, listener: listener, id: s.nextID}
	s.listeners = append(s.listeners, sub)

	return sub, nil
}

func (s *Store) removeListener(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func notify(state State, listeners []*Subscription) {
	for _, sub := range listeners {
		if sub.claim(state.Version) {
			sub.listener(state)
		}
	}
}

// claim records version as delivered unless a newer or equal one already was.
func (sub *Subscription) claim(version uint64) bool {
	for {
		last := sub.version.Load()
		if version <= last {
			return false
		}

		if sub.version.CompareAndSwap(last, version) {
			return true
		}
	}
}
