package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the single source of truth for "am I logged in, and as whom".
// It holds the current session in memory, mirrors every change to its
// Storage, and notifies subscribers synchronously in registration order.
//
// Mutations fully replace the previous session; there are no partial
// updates. Persistence is awaited: Set and Clear return only after the
// storage write succeeded, so listeners never observe a session that was
// not durably recorded first.
type Store struct {
	storage Storage
	log     zerolog.Logger

	mu        sync.RWMutex
	current   Session
	listeners []*registration
}

type registration struct {
	fn func(Session)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for load failures and listener panics.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a session store backed by the given storage.
func NewStore(storage Storage, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	store := &Store{
		storage: storage,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Set replaces the current session. The new value is persisted first;
// if the write fails the in-memory session is left untouched and no
// listener fires.
func (s *Store) Set(ctx context.Context, sess Session) error {
	if err := s.storage.Save(ctx, sess); err != nil {
		return errors.Wrap(err, "[Store.Set] persist session")
	}
	s.replace(sess)
	return nil
}

// Clear logs the user out: the persisted entry is removed, the in-memory
// session is zeroed, and listeners are notified with the zero session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx); err != nil {
		return errors.Wrap(err, "[Store.Clear] delete persisted session")
	}
	s.replace(Session{})
	return nil
}

// Load reads the persisted session at startup. A missing entry, an
// unreadable entry, or a decode failure all degrade to logged-out: the
// failure is logged, never surfaced, so a corrupt session file cannot
// lock a user out of the app. A successfully loaded session is Set,
// which re-persists it and fires the change listeners.
func (s *Store) Load(ctx context.Context) (Session, error) {
	sess, found, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load stored session, starting logged out")
		return Session{}, nil
	}
	if !found {
		return Session{}, nil
	}
	if err := s.Set(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "[Store.Load] restore session")
	}
	return sess, nil
}

// Current returns the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// UserID returns the current session's user id, or "" when logged out.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.UserID
}

// OnChange registers a listener invoked synchronously, in registration
// order, whenever the session is set or cleared. The returned function
// unsubscribes exactly that registration and is safe to call more than
// once.
func (s *Store) OnChange(fn func(Session)) (unsubscribe func()) {
	reg := &registration{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, reg)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, r := range s.listeners {
			if r == reg {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) replace(sess Session) {
	s.mu.Lock()
	s.current = sess
	snapshot := make([]*registration, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, reg := range snapshot {
		s.notify(reg, sess)
	}
}

// notify delivers to a single listener; a panicking listener must not
// starve the listeners registered after it.
func (s *Store) notify(reg *registration, sess Session) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("session change listener panicked")
		}
	}()
	reg.fn(sess)
}
