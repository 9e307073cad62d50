package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/response"
	"github.com/dmitrymomot/antiforgery/core/router"
	"github.com/dmitrymomot/antiforgery/core/session"
	"github.com/dmitrymomot/antiforgery/middleware"
)

type testSessionData struct {
	Theme string
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Load(ctx handler.Context) (session.Session[testSessionData], error) {
	args := m.Called(ctx)
	return args.Get(0).(session.Session[testSessionData]), args.Error(1)
}

func (m *mockTransport) Store(ctx handler.Context, sess session.Session[testSessionData]) error {
	return m.Called(ctx, sess).Error(0)
}

func newTestSession(userID uuid.UUID) session.Session[testSessionData] {
	return session.Session[testSessionData]{
		ID:        uuid.New(),
		Token:     "token-" + uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		Data:      testSessionData{Theme: "light"},
	}
}

func ok() handler.Response {
	return response.String("ok")
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	transport := &mockTransport{}
	sess := newTestSession(uuid.Nil)

	transport.On("Load", mock.Anything).Return(sess, nil)
	transport.On("Store", mock.Anything, mock.MatchedBy(func(s session.Session[testSessionData]) bool {
		return s.ID == sess.ID && s.Data.Theme == "dark"
	})).Return(nil)

	r := router.New[*router.Context]()
	r.Use(middleware.Session[*router.Context, testSessionData](transport))
	r.Post("/theme", func(ctx *router.Context) handler.Response {
		current := middleware.MustGetSession[testSessionData](ctx)
		assert.Equal(t, sess.ID, current.ID)
		current.SetData(testSessionData{Theme: "dark"})
		middleware.SetSession(ctx, current)
		return ok()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/theme", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	transport.AssertExpectations(t)
}

func TestSessionLoadFailureDegrades(t *testing.T) {
	t.Parallel()

	transport := &mockTransport{}
	transport.On("Load", mock.Anything).Return(session.Session[testSessionData]{}, errors.New("store down"))
	transport.On("Store", mock.Anything, mock.Anything).Return(nil)

	r := router.New[*router.Context]()
	r.Use(middleware.Session[*router.Context, testSessionData](transport))
	r.Get("/", func(ctx *router.Context) handler.Response {
		sess, found := middleware.GetSession[testSessionData](ctx)
		assert.True(t, found)
		assert.Equal(t, uuid.Nil, sess.ID)
		return ok()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionStoreFailure(t *testing.T) {
	t.Parallel()

	transport := &mockTransport{}
	transport.On("Load", mock.Anything).Return(newTestSession(uuid.Nil), nil)
	transport.On("Store", mock.Anything, mock.Anything).Return(errors.New("write failed"))

	var handled error
	r := router.New[*router.Context]()
	r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
		Transport: transport,
		ErrorHandler: func(ctx *router.Context, err error) handler.Response {
			handled = err
			return response.Error(response.ErrServiceUnavailable)
		},
	}))
	r.Get("/", func(ctx *router.Context) handler.Response { return ok() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.EqualError(t, handled, "write failed")
}

func TestSessionAuthRequirements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		user   uuid.UUID
		cfg    middleware.SessionConfig[*router.Context, testSessionData]
		status int
	}{
		{"require auth rejects guest", uuid.Nil, middleware.SessionConfig[*router.Context, testSessionData]{RequireAuth: true}, http.StatusUnauthorized},
		{"require auth admits user", uuid.New(), middleware.SessionConfig[*router.Context, testSessionData]{RequireAuth: true}, http.StatusOK},
		{"require guest rejects user", uuid.New(), middleware.SessionConfig[*router.Context, testSessionData]{RequireGuest: true}, http.StatusUnauthorized},
		{"require guest admits guest", uuid.Nil, middleware.SessionConfig[*router.Context, testSessionData]{RequireGuest: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := &mockTransport{}
			transport.On("Load", mock.Anything).Return(newTestSession(tt.user), nil)
			transport.On("Store", mock.Anything, mock.Anything).Return(nil).Maybe()

			cfg := tt.cfg
			cfg.Transport = transport
			r := router.New[*router.Context]()
			r.Use(middleware.SessionWithConfig(cfg))
			r.Get("/", func(ctx *router.Context) handler.Response { return ok() })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSessionSkip(t *testing.T) {
	t.Parallel()

	transport := &mockTransport{}
	r := router.New[*router.Context]()
	r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
		Transport: transport,
		Skip:      func(ctx *router.Context) bool { return ctx.Request().URL.Path == "/health" },
	}))
	r.Get("/health", func(ctx *router.Context) handler.Response {
		_, found := middleware.GetSession[testSessionData](ctx)
		assert.False(t, found)
		return ok()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	transport.AssertNotCalled(t, "Load", mock.Anything)
}

func TestSessionConfigPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{})
	})
	assert.Panics(t, func() {
		middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
			Transport:    &mockTransport{},
			RequireAuth:  true,
			RequireGuest: true,
		})
	})
}

func TestGetSessionWithoutMiddleware(t *testing.T) {
	t.Parallel()

	ctx := router.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)

	_, found := middleware.GetSession[testSessionData](ctx)
	assert.False(t, found)
	assert.Panics(t, func() { middleware.MustGetSession[testSessionData](ctx) })

	middleware.SetSession(ctx, newTestSession(uuid.Nil))
	_, found = middleware.GetSession[testSessionData](ctx)
	assert.True(t, found)

	_, found = middleware.GetSession[struct{ Other int }](ctx)
	assert.False(t, found, "data type is part of the key")
}
