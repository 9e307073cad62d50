package session

import (
	"context"

	"github.com/google/uuid"
)

// Store persists sessions. Implementations must be safe for concurrent use,
// return ErrNotFound for unknown or expired sessions, and persist CSRFID with
// the rest of the session so digest tokens survive between requests.
type Store[Data any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Session[Data], error)
	GetByToken(ctx context.Context, token string) (*Session[Data], error)
	Save(ctx context.Context, session *Session[Data]) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired returns the number of sessions removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
