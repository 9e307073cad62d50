package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle including creation, retrieval, and expiration.
type Manager[Data any] struct {
	store Store[Data]
	cfg   Config
}

// NewManager creates a session manager backed by store.
func NewManager[Data any](store Store[Data], opts ...Option) (*Manager[Data], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[Data]{store: store, cfg: cfg}, nil
}

// New creates an unsaved anonymous session using the manager TTL.
func (m *Manager[Data]) New(params NewSessionParams) (Session[Data], error) {
	return New[Data](params, m.cfg.TTL)
}

// GetByID retrieves a session by ID and validates expiration.
func (m *Manager[Data]) GetByID(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}
	return m.loaded(sess)
}

// GetByToken retrieves a session by token and validates expiration.
func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}
	return m.loaded(sess)
}

func (m *Manager[Data]) loaded(sess *Session[Data]) (Session[Data], error) {
	if sess == nil {
		return Session[Data]{}, ErrNotFound
	}
	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}
	s := *sess
	s.isModified = false
	return s, nil
}

// Store persists the session according to its state.
// A deleted session is removed and ErrNotAuthenticated is returned so the
// transport can clear the client side.
func (m *Manager[Data]) Store(ctx context.Context, sess Session[Data]) error {
	if sess.IsDeleted() {
		if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return errors.Join(ErrDeleteSession, err)
		}
		return ErrNotAuthenticated
	}

	sess.Touch(m.cfg.TTL, m.cfg.TouchInterval)

	if !sess.IsModified() {
		return nil
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

// CleanupExpired removes all expired sessions from the store.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager[Data]) TTL() time.Duration {
	return m.cfg.TTL
}
