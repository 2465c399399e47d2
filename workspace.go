package osprite

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnknownSession is returned when an id does not match any open session.
var ErrUnknownSession = errors.New("unknown session")

// Store persists the list of open sessions.
type Store interface {
	Load() ([]*Session, error)
	Save(sessions []*Session) error
}

// RestoreSession rebuilds a session from persisted state. The history is empty.
func RestoreSession(id string, opts Options, buf *ImageBuffer) *Session {
	return newSession(id, opts, buf)
}

// Workspace is the ordered list of open documents and the one being edited.
// Sessions are saved through the store whenever their content or the list changes.
type Workspace struct {
	store    Store
	defaults Options

	sessions []*Session
	active   int
	unsub    map[string]func()

	observers []subscription
	nextSub   int
}

// NewWorkspace creates an empty workspace. store may be nil.
func NewWorkspace(store Store, defaults Options) *Workspace {
	return &Workspace{store: store, defaults: defaults, active: -1, unsub: make(map[string]func())}
}

// Load replaces the open sessions with the stored ones. When the store is
// empty a default document is opened.
func (w *Workspace) Load() error {
	var sessions []*Session
	if w.store != nil {
		var err error
		if sessions, err = w.store.Load(); err != nil {
			return fmt.Errorf("load workspace: %w", err)
		}
	}
	for _, s := range w.sessions {
		w.detach(s)
	}
	w.sessions, w.active = nil, -1

	if len(sessions) == 0 {
		_, err := w.Open(w.defaults)
		return err
	}
	for _, s := range sessions {
		w.attach(s)
	}
	w.active = 0
	Logger().Info("workspace loaded", "sessions", len(sessions))
	w.notify(EventStructuralChange, w.Active())
	return nil
}

// Open creates a new blank session and makes it active.
func (w *Workspace) Open(opts Options) (*Session, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s, w.Add(s)
}

// OpenImage creates a session holding img and makes it active.
func (w *Workspace) OpenImage(img image.Image, name string) (*Session, error) {
	opts := w.defaults
	opts.Name = name
	s, err := NewSessionFromImage(img, opts)
	if err != nil {
		return nil, err
	}
	return s, w.Add(s)
}

// Add appends an existing session and makes it active.
func (w *Workspace) Add(s *Session) error {
	w.attach(s)
	w.active = len(w.sessions) - 1
	Logger().Info("session opened", "id", s.ID, "name", s.Name)
	return w.structuralChange(s)
}

// Close removes the session with the given id.
func (w *Workspace) Close(id string) error {
	i := w.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	s := w.sessions[i]
	w.detach(s)
	w.sessions = append(w.sessions[:i], w.sessions[i+1:]...)

	switch {
	case len(w.sessions) == 0:
		w.active = -1
	case w.active >= len(w.sessions) || w.active > i:
		w.active--
	}
	Logger().Info("session closed", "id", id)
	return w.structuralChange(s)
}

// Sessions returns the open sessions in tab order.
func (w *Workspace) Sessions() []*Session {
	return append([]*Session(nil), w.sessions...)
}

// Active returns the session being edited, nil when none is open.
func (w *Workspace) Active() *Session {
	if w.active < 0 || w.active >= len(w.sessions) {
		return nil
	}
	return w.sessions[w.active]
}

// SetActive switches to the session with the given id.
func (w *Workspace) SetActive(id string) error {
	i := w.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	w.active = i
	w.notify(EventDirty, w.sessions[i])
	return nil
}

// Save writes every open session to the store.
func (w *Workspace) Save() error {
	if w.store == nil {
		return nil
	}
	if err := w.store.Save(w.sessions); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

// Subscribe registers an observer for workspace level events and the
// events of every session in it.
func (w *Workspace) Subscribe(o Observer) (unsubscribe func()) {
	w.nextSub++
	id := w.nextSub
	w.observers = append(w.observers, subscription{id: id, obs: o})
	return func() {
		for i, sub := range w.observers {
			if sub.id == id {
				w.observers = append(w.observers[:i:i], w.observers[i+1:]...)
				return
			}
		}
	}
}

func (w *Workspace) index(id string) int {
	for i, s := range w.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) attach(s *Session) {
	w.sessions = append(w.sessions, s)
	w.unsub[s.ID] = s.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind == EventContentChanged {
			if err := w.Save(); err != nil {
				Logger().Warn("autosave failed", "id", s.ID, "error", err)
			}
		}
		w.notify(e.Kind, e.Session)
	}))
}

func (w *Workspace) detach(s *Session) {
	if unsub, ok := w.unsub[s.ID]; ok {
		unsub()
		delete(w.unsub, s.ID)
	}
}

func (w *Workspace) structuralChange(s *Session) error {
	w.notify(EventStructuralChange, s)
	return w.Save()
}

func (w *Workspace) notify(kind EventKind, s *Session) {
	for _, sub := range append([]subscription(nil), w.observers...) {
		sub.obs.Notify(Event{Kind: kind, Session: s})
	}
}
