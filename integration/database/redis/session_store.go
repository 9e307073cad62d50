package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dmitrymomot/antiforgery/core/forgery"
	"github.com/dmitrymomot/antiforgery/core/session"
)

const (
	digestAlgorithm = "SHA256"
	digestPurpose   = "csrf-token"
)

// SessionStore keeps sessions in redis as msgpack records. Each session has an
// id key holding the record and a token key pointing at the id; both expire
// with the session.
//
// Built with WithDigestKey it also derives authenticity tokens from session
// csrf ids, so it can back the session-digest strategy of the CSRF middleware.
type SessionStore[Data any] struct {
	client    redis.UniversalClient
	prefix    string
	digestKey string
	scanBatch int64
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStoreConfig)

// WithKeyPrefix sets the prefix of every key written by the store.
func WithKeyPrefix(prefix string) StoreOption {
	return func(c *SessionStoreConfig) {
		c.KeyPrefix = prefix
	}
}

// WithDigestKey enables GenerateDigest with the given HMAC key.
func WithDigestKey(key string) StoreOption {
	return func(c *SessionStoreConfig) {
		c.DigestKey = key
	}
}

func WithScanBatchSize(n int) StoreOption {
	return func(c *SessionStoreConfig) {
		c.ScanBatchSize = n
	}
}

// NewSessionStore creates a redis-backed session store.
func NewSessionStore[Data any](client redis.UniversalClient, opts ...StoreOption) (*SessionStore[Data], error) {
	cfg := DefaultSessionStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewSessionStoreFromConfig[Data](client, cfg)
}

// NewSessionStoreFromConfig creates a redis-backed session store from configuration.
func NewSessionStoreFromConfig[Data any](client redis.UniversalClient, cfg SessionStoreConfig) (*SessionStore[Data], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if cfg.ScanBatchSize <= 0 {
		cfg.ScanBatchSize = DefaultSessionStoreConfig().ScanBatchSize
	}
	return &SessionStore[Data]{
		client:    client,
		prefix:    cfg.KeyPrefix,
		digestKey: cfg.DigestKey,
		scanBatch: int64(cfg.ScanBatchSize),
	}, nil
}

type record[Data any] struct {
	ID        string    `msgpack:"id"`
	Token     string    `msgpack:"token"`
	UserID    string    `msgpack:"user_id,omitempty"`
	CSRFID    string    `msgpack:"csrf_id,omitempty"`
	IP        string    `msgpack:"ip"`
	UserAgent string    `msgpack:"ua,omitempty"`
	Data      Data      `msgpack:"data"`
	ExpiresAt time.Time `msgpack:"expires_at"`
	CreatedAt time.Time `msgpack:"created_at"`
	UpdatedAt time.Time `msgpack:"updated_at"`
	DeletedAt time.Time `msgpack:"deleted_at"`
}

func (s *SessionStore[Data]) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[Data], error) {
	b, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode[Data](b)
}

func (s *SessionStore[Data]) GetByToken(ctx context.Context, token string) (*session.Session[Data], error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrDecodeSession, err)
	}

	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Token != token {
		// Left behind by a rotation that raced with this lookup.
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Save writes the session and its token index. A rotated token drops the
// previous index entry. Sessions already past ExpiresAt are removed instead.
func (s *SessionStore[Data]) Save(ctx context.Context, sess *session.Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	b, err := encode(sess)
	if err != nil {
		return err
	}

	prev, err := s.GetByID(ctx, sess.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.idKey(sess.ID), b, ttl)
		pipe.Set(ctx, s.tokenKey(sess.Token), sess.ID.String(), ttl)
		if prev != nil && prev.Token != sess.Token {
			pipe.Del(ctx, s.tokenKey(prev.Token))
		}
		return nil
	})
	return err
}

func (s *SessionStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.GetByID(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	return s.client.Del(ctx, s.idKey(id), s.tokenKey(sess.Token)).Err()
}

// DeleteExpired scans the store for records past ExpiresAt. Redis expires
// keys on its own; this catches records whose TTL was lost (restores,
// PERSIST by an operator).
func (s *SessionStore[Data]) DeleteExpired(ctx context.Context) (int64, error) {
	var (
		deleted int64
		cursor  uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"id:*", s.scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		for _, key := range keys {
			b, err := s.client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return deleted, err
			}
			sess, err := decode[Data](b)
			if err != nil || !sess.IsExpired() {
				continue
			}
			if err := s.client.Del(ctx, key, s.tokenKey(sess.Token)).Err(); err != nil {
				return deleted, err
			}
			deleted++
		}
		if cursor = next; cursor == 0 {
			return deleted, nil
		}
	}
}

// GenerateDigest derives the authenticity token for a session csrf id as a
// hex HMAC-SHA256 under the store digest key.
func (s *SessionStore[Data]) GenerateDigest(csrfID string) (string, error) {
	if s.digestKey == "" {
		return "", ErrNoDigestKey
	}
	if csrfID == "" {
		return "", ErrEmptyCSRFID
	}
	return forgery.HMAC(digestAlgorithm, s.digestKey, digestPurpose+"\x00"+csrfID)
}

func (s *SessionStore[Data]) idKey(id uuid.UUID) string {
	return s.prefix + "id:" + id.String()
}

func (s *SessionStore[Data]) tokenKey(token string) string {
	return s.prefix + "token:" + token
}

func encode[Data any](sess *session.Session[Data]) ([]byte, error) {
	rec := record[Data]{
		ID:        sess.ID.String(),
		Token:     sess.Token,
		CSRFID:    sess.CSRFID,
		IP:        sess.IP,
		UserAgent: sess.UserAgent,
		Data:      sess.Data,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		DeletedAt: sess.DeletedAt,
	}
	if sess.UserID != uuid.Nil {
		rec.UserID = sess.UserID.String()
	}
	b, err := msgpack.Marshal(&rec)
	if err != nil {
		return nil, errors.Join(ErrEncodeSession, err)
	}
	return b, nil
}

func decode[Data any](b []byte) (*session.Session[Data], error) {
	var rec record[Data]
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, errors.Join(ErrDecodeSession, err)
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, errors.Join(ErrDecodeSession, err)
	}
	userID := uuid.Nil
	if rec.UserID != "" {
		if userID, err = uuid.Parse(rec.UserID); err != nil {
			return nil, errors.Join(ErrDecodeSession, fmt.Errorf("user id: %w", err))
		}
	}

	return &session.Session[Data]{
		ID:        id,
		Token:     rec.Token,
		UserID:    userID,
		CSRFID:    rec.CSRFID,
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
		Data:      rec.Data,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		DeletedAt: rec.DeletedAt,
	}, nil
}

var (
	_ session.Store[struct{}] = (*SessionStore[struct{}])(nil)
	_ forgery.DigestGenerator = (*SessionStore[struct{}])(nil)
)
