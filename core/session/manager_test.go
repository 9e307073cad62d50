package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/antiforgery/core/session"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[testData], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) GetByToken(ctx context.Context, token string) (*session.Session[testData], error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, sess *session.Session[testData]) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	_, err := session.NewManager[testData](nil)
	assert.ErrorIs(t, err, session.ErrNilStore)

	m, err := session.NewManager[testData](&mockStore{}, session.WithTTL(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.TTL())
}

func TestManagerGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loaded session is clean", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t, time.Hour)
		store.On("GetByToken", ctx, sess.Token).Return(&sess, nil)

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)

		got, err := m.GetByToken(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.False(t, got.IsModified())
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t, -time.Hour)
		store.On("GetByID", ctx, sess.ID).Return(&sess, nil)

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)

		_, err = m.GetByID(ctx, sess.ID)
		assert.ErrorIs(t, err, session.ErrExpired)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("GetByToken", ctx, "missing").Return(nil, session.ErrNotFound)

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)

		_, err = m.GetByToken(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManagerStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("saves modified session", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t, time.Hour)
		store.On("Save", ctx, mock.MatchedBy(func(s *session.Session[testData]) bool {
			return s.ID == sess.ID
		})).Return(nil).Once()

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)
		require.NoError(t, m.Store(ctx, sess))
		store.AssertExpectations(t)
	})

	t.Run("skips clean session", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t, time.Hour)
		store.On("GetByToken", ctx, sess.Token).Return(&sess, nil)

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)
		loaded, err := m.GetByToken(ctx, sess.Token)
		require.NoError(t, err)

		require.NoError(t, m.Store(ctx, loaded))
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("wraps save error", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)
		err = m.Store(ctx, newSession(t, time.Hour))
		assert.ErrorIs(t, err, session.ErrSaveSession)
	})

	t.Run("deleted session", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		sess := newSession(t, time.Hour)
		sess.Logout()
		store.On("Delete", ctx, sess.ID).Return(session.ErrNotFound)

		m, err := session.NewManager[testData](store)
		require.NoError(t, err)
		assert.ErrorIs(t, m.Store(ctx, sess), session.ErrNotAuthenticated)
	})
}

func TestManagerCleanupExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &mockStore{}
	store.On("DeleteExpired", ctx).Return(int64(3), nil)

	m, err := session.NewManager[testData](store)
	require.NoError(t, err)
	n, err := m.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
