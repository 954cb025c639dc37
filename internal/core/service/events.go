package service

import "github.com/yndnr/trainly-go/internal/core/domain"

// EventKind distinguishes session notifications.
type EventKind int

const (
	// EventStateChanged carries the new snapshot after any transition.
	EventStateChanged EventKind = iota + 1
	// EventLoggedOut is emitted once per Logout with the login route the
	// presentation layer should navigate to.
	EventLoggedOut
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers.
type Event struct {
	Kind  EventKind
	State domain.SessionState
	// Route is set for EventLoggedOut.
	Route string
}

// subscribers returns a copy of the current subscriber list in
// registration order.
func (m *SessionManager) subscribers() []func(Event) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	out := make([]func(Event), 0, len(m.subs))
	for _, id := range m.subOrder {
		if fn, ok := m.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Events are delivered synchronously and in order; fn must
// not call Login, Register, Logout or ClearError directly.
func (m *SessionManager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	m.nextSub++
	id := m.nextSub
	m.subs[id] = fn
	m.subOrder = append(m.subOrder, id)

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if _, ok := m.subs[id]; !ok {
			return
		}
		delete(m.subs, id)
		for i, sid := range m.subOrder {
			if sid == id {
				m.subOrder = append(m.subOrder[:i], m.subOrder[i+1:]...)
				break
			}
		}
	}
}

// unlockAndPublish releases m.mu and delivers a StateChanged event with the
// snapshot taken under the lock, followed by extra. m.emitMu is acquired
// before m.mu is released so events reach subscribers in transition order.
func (m *SessionManager) unlockAndPublish(extra ...Event) {
	snap := m.state.Clone()
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	subs := m.subscribers()
	deliver(subs, Event{Kind: EventStateChanged, State: snap})
	for _, ev := range extra {
		deliver(subs, ev)
	}
}

func (m *SessionManager) publish(ev Event) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	deliver(m.subscribers(), ev)
}

func deliver(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
