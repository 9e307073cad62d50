package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in a bounded in-process LRU cache.
// Entries older than the configured TTL are dropped by the cache itself;
// per-session expiry is still checked on read.
type MemoryStore[Data any] struct {
	sessions *expirable.LRU[uuid.UUID, Session[Data]]
	tokens   *expirable.LRU[string, uuid.UUID]
}

// NewMemoryStore creates a store holding up to size sessions (0 = unbounded).
func NewMemoryStore[Data any](cfg Config) *MemoryStore[Data] {
	tokens := expirable.NewLRU[string, uuid.UUID](0, nil, cfg.TTL)
	sessions := expirable.NewLRU[uuid.UUID, Session[Data]](cfg.StoreSize, func(_ uuid.UUID, s Session[Data]) {
		tokens.Remove(s.Token)
	}, cfg.TTL)
	return &MemoryStore[Data]{sessions: sessions, tokens: tokens}
}

func (s *MemoryStore[Data]) GetByID(_ context.Context, id uuid.UUID) (*Session[Data], error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore[Data]) GetByToken(ctx context.Context, token string) (*Session[Data], error) {
	id, ok := s.tokens.Get(token)
	if !ok {
		return nil, ErrNotFound
	}
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A rotated token can still sit in the index until its entry is replaced.
	if sess.Token != token {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore[Data]) Save(_ context.Context, sess *Session[Data]) error {
	if prev, ok := s.sessions.Peek(sess.ID); ok && prev.Token != sess.Token {
		s.tokens.Remove(prev.Token)
	}
	s.sessions.Add(sess.ID, *sess)
	s.tokens.Add(sess.Token, sess.ID)
	return nil
}

func (s *MemoryStore[Data]) Delete(_ context.Context, id uuid.UUID) error {
	if !s.sessions.Remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore[Data]) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for _, sess := range s.sessions.Values() {
		if sess.IsExpired() && s.sessions.Remove(sess.ID) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore[Data]) Len() int {
	return s.sessions.Len()
}
