package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/antiforgery/core/cookie"
)

const (
	testSecret  = "test-secret-key-32-characters!!!"
	testSecret2 = "another-secret-key-32-chars!!!!!"
)

// replay copies Set-Cookie headers from a recorder into a fresh request.
func replay(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}

func TestManager(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, m.Set(w, "plain", "value123", cookie.WithMaxAge(60)))

		v, err := m.Get(replay(w), "plain")
		require.NoError(t, err)
		assert.Equal(t, "value123", v)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "nope")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("signed", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "signed", "hello"))

		v, err := m.GetSigned(replay(w), "signed")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "signed", Value: "aGVsbG8=|forged"})
		_, err = m.GetSigned(r, "signed")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("encrypted", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(w, "enc", "secret-payload"))
		assert.NotContains(t, w.Header().Get("Set-Cookie"), "secret-payload")

		v, err := m.GetEncrypted(replay(w), "enc")
		require.NoError(t, err)
		assert.Equal(t, "secret-payload", v)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		err := m.Set(w, "big", strings.Repeat("x", cookie.MaxCookieSize))
		var tooLarge cookie.ErrCookieTooLarge
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, "big", tooLarge.Name)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Delete(w, "gone")
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestKeyRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{testSecret2, testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, old.SetEncrypted(w, "enc", "v"))
	require.NoError(t, old.SetSigned(w, "sig", "v"))
	r := replay(w)

	v, err := rotated.GetEncrypted(r, "enc")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = rotated.GetSigned(r, "sig")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestDigest(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	other, err := cookie.New([]string{testSecret2})
	require.NoError(t, err)

	d := m.Digest("csrf", "id-1")
	assert.Len(t, d, 64)
	assert.Equal(t, d, m.Digest("csrf", "id-1"))
	assert.NotEqual(t, d, m.Digest("csrf", "id-2"))
	assert.NotEqual(t, d, m.Digest("other", "id-1"))
	assert.NotEqual(t, d, other.Digest("csrf", "id-1"))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := cookie.DefaultConfig()
	cfg.Secrets = " " + testSecret + " , ," + testSecret2
	cfg.Secure = true

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "a", "b"))
	c := w.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	_, err = cookie.NewFromConfig(cookie.DefaultConfig())
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
