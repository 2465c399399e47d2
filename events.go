package osprite

// EventKind classifies the notifications a session sends to its observers.
type EventKind uint8

const (
	// EventDirty means the session must be rendered again.
	EventDirty EventKind = 1 << iota
	// EventSelectionChanged means the selection was created, moved or removed.
	EventSelectionChanged
	// EventContentChanged means the document changed and should be saved.
	EventContentChanged
	// EventStructuralChange means a session was opened, closed or resized.
	EventStructuralChange
)

func (k EventKind) String() string {
	switch k {
	case EventDirty:
		return "dirty"
	case EventSelectionChanged:
		return "selection-changed"
	case EventContentChanged:
		return "content-changed"
	case EventStructuralChange:
		return "structural-change"
	}
	return "unknown"
}

// Event is delivered to observers once the operation that caused it returns.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Observer receives session events.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type subscription struct {
	id  int
	obs Observer
}

// Subscribe registers o and returns a function removing it again.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.observers = append(s.observers, subscription{id: id, obs: o})

	return func() {
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// emit queues an event. Every event also marks the session for rendering.
func (s *Session) emit(kind EventKind) {
	s.pending |= kind | EventDirty
	s.shouldRender = true
}

// flush delivers the queued events in a fixed order.
func (s *Session) flush() {
	pending := s.pending
	s.pending = 0
	if pending == 0 {
		return
	}
	observers := append([]subscription(nil), s.observers...)
	for _, kind := range []EventKind{EventSelectionChanged, EventContentChanged, EventStructuralChange, EventDirty} {
		if pending&kind == 0 {
			continue
		}
		for _, sub := range observers {
			sub.obs.Notify(Event{Kind: kind, Session: s})
		}
	}
}
