package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/antiforgery/core/cookie"
	"github.com/dmitrymomot/antiforgery/core/forgery"
	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/response"
	"github.com/dmitrymomot/antiforgery/core/router"
	"github.com/dmitrymomot/antiforgery/core/session"
	"github.com/dmitrymomot/antiforgery/core/sessiontransport"
	"github.com/dmitrymomot/antiforgery/middleware"
)

const cookieSecret = "test-secret-key-32-characters!!!"

var fieldValue = regexp.MustCompile(`name="authenticity_token" value="([^"]+)"`)

type harnessConfig struct {
	protector *forgery.Protector
	protect   []forgery.Option
	digest    bool
	onReject  func(err error)
}

// harness is a browser with a cookie jar in front of a router that mounts the
// session and CSRF middleware the way an application would.
type harness struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newHarness(t *testing.T, hc harnessConfig) *harness {
	t.Helper()

	store := session.NewMemoryStore[testSessionData](session.DefaultConfig())
	mgr, err := session.NewManager[testSessionData](store, session.WithTTL(time.Hour))
	require.NoError(t, err)
	cookies, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)
	transport := sessiontransport.NewCookie(mgr, cookies, "__session")

	if hc.protector == nil {
		hc.protector = forgery.New()
	}
	group := hc.protector.Group("articles").Protect(hc.protect...)

	csrf := func(action string) handler.Middleware[*router.Context] {
		cfg := middleware.CSRFConfig[*router.Context, testSessionData]{
			Group:  group,
			Action: action,
		}
		if hc.digest {
			cfg.Digest = transport
		}
		if hc.onReject != nil {
			cfg.ErrorHandler = func(ctx *router.Context, err error) handler.Response {
				hc.onReject(err)
				return response.Error(response.ErrInvalidAuthenticityToken)
			}
		}
		return middleware.CSRFWithConfig(cfg)
	}

	r := router.New[*router.Context]()
	r.Use(middleware.Session[*router.Context, testSessionData](transport))

	r.With(csrf("token")).Get("/csrf", middleware.CSRFTokenHandler[*router.Context]())
	r.With(csrf("new")).Get("/articles/new", func(ctx *router.Context) handler.Response {
		// The field is rendered after the session middleware has stored the session.
		return func(w http.ResponseWriter, _ *http.Request) error {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, err := io.WriteString(w, `<form method="post" action="/articles">`+string(middleware.CSRFField(ctx))+`</form>`)
			return err
		}
	})
	r.With(csrf("login")).Post("/login", func(ctx *router.Context) handler.Response {
		sess := middleware.MustGetSession[testSessionData](ctx)
		if err := sess.Authenticate(uuid.New()); err != nil {
			return response.Error(err)
		}
		middleware.SetSession(ctx, sess)
		return func(w http.ResponseWriter, _ *http.Request) error {
			_, err := io.WriteString(w, `<form method="post" action="/articles">`+string(middleware.CSRFField(ctx))+`</form>`)
			return err
		}
	})
	r.With(csrf("create")).Post("/articles", func(ctx *router.Context) handler.Response {
		return response.StringWithStatus("created", http.StatusCreated)
	})
	r.With(csrf("preview")).Post("/articles/preview", func(ctx *router.Context) handler.Response {
		if middleware.CSRFProtected(ctx) {
			return response.String("protected preview")
		}
		return response.String("preview")
	})

	return &harness{t: t, handler: r}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		h.cookies = set
	}
	return w
}

func (h *harness) token() string {
	h.t.Helper()
	w := h.do(httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(h.t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(h.t, body["token"])
	return body["token"]
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func secretProtect(opts ...forgery.Option) []forgery.Option {
	return append([]forgery.Option{forgery.WithSecret("s3cr3t")}, opts...)
}

func TestCSRFSecretStrategy(t *testing.T) {
	t.Parallel()

	t.Run("safe request passes without token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})

		w := h.do(httptest.NewRequest(http.MethodGet, "/articles/new", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Regexp(t, fieldValue, w.Body.String())
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		h.token()

		w := h.do(postForm("/articles", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid authenticity token")
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		token := h.token()

		w := h.do(postForm("/articles", url.Values{"authenticity_token": {token + "0"}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("form token is accepted", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		token := h.token()

		w := h.do(postForm("/articles", url.Values{"authenticity_token": {token}}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("header token is accepted", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		token := h.token()

		req := postForm("/articles", url.Values{"title": {"hello"}})
		req.Header.Set(forgery.HeaderName, token)
		w := h.do(req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("multipart token is accepted", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		token := h.token()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("authenticity_token", token))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/articles", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		w := h.do(req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("token from another session is rejected", func(t *testing.T) {
		t.Parallel()
		alice := newHarness(t, harnessConfig{protect: secretProtect()})
		token := alice.token()

		mallory := newHarness(t, harnessConfig{protect: secretProtect()})
		mallory.token()
		w := mallory.do(postForm("/articles", url.Values{"authenticity_token": {token}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("custom token param", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect(forgery.WithTokenParam("_csrf"))})
		token := h.token()

		w := h.do(postForm("/articles", url.Values{"authenticity_token": {token}}))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = h.do(postForm("/articles", url.Values{"_csrf": {token}}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestCSRFOutOfScopeRequests(t *testing.T) {
	t.Parallel()

	t.Run("non checkable content type passes", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect()})
		h.token()

		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(`{"title":"hello"}`))
		req.Header.Set("Content-Type", "application/json")
		w := h.do(req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("excluded action passes", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect(forgery.Except("preview"))})
		h.token()

		w := h.do(postForm("/articles/preview", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "preview", w.Body.String())

		w = h.do(postForm("/articles", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("only restricts gated actions", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{protect: secretProtect(forgery.Only("preview"))})
		h.token()

		w := h.do(postForm("/articles/preview", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = h.do(postForm("/articles", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("disabled protector passes", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{
			protector: forgery.New(forgery.WithEnabled(false)),
			protect:   secretProtect(),
		})

		w := h.do(postForm("/articles/preview", url.Values{"title": {"hello"}}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "preview", w.Body.String())
	})
}

func TestCSRFSessionDigestStrategy(t *testing.T) {
	t.Parallel()

	t.Run("csrf id survives across requests", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{digest: true})

		first := h.token()
		second := h.token()
		assert.Equal(t, first, second)

		w := h.do(postForm("/articles", url.Values{"authenticity_token": {first}}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("token rendered after the session is stored", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{digest: true})

		w := h.do(httptest.NewRequest(http.MethodGet, "/articles/new", nil))
		require.Equal(t, http.StatusOK, w.Code)
		m := fieldValue.FindStringSubmatch(w.Body.String())
		require.Len(t, m, 2)

		w = h.do(postForm("/articles", url.Values{"authenticity_token": {m[1]}}))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("form rendered after login", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, harnessConfig{digest: true})

		guest := h.token()
		w := h.do(postForm("/login", url.Values{"authenticity_token": {guest}}))
		require.Equal(t, http.StatusOK, w.Code)
		m := fieldValue.FindStringSubmatch(w.Body.String())
		require.Len(t, m, 2)
		assert.NotEqual(t, guest, m[1])

		w = h.do(postForm("/articles", url.Values{"authenticity_token": {m[1]}}))
		assert.Equal(t, http.StatusCreated, w.Code)

		w = h.do(postForm("/articles", url.Values{"authenticity_token": {guest}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("without digest generator the request is rejected", func(t *testing.T) {
		t.Parallel()
		var rejected error
		h := newHarness(t, harnessConfig{onReject: func(err error) { rejected = err }})

		w := h.do(postForm("/articles", url.Values{"authenticity_token": {"anything"}}))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.ErrorIs(t, rejected, forgery.ErrInvalidAuthenticityToken)
		assert.ErrorIs(t, rejected, forgery.ErrConfiguration)
	})
}

func TestCSRFWithoutSession(t *testing.T) {
	t.Parallel()

	group := forgery.New().Group("articles").Protect(forgery.WithSecret("s3cr3t"))
	var rejected error

	r := router.New[*router.Context]()
	r.Use(middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, testSessionData]{
		Group:  group,
		Action: "create",
		ErrorHandler: func(ctx *router.Context, err error) handler.Response {
			rejected = err
			return response.Error(response.ErrInvalidAuthenticityToken)
		},
	}))
	r.Post("/articles", func(ctx *router.Context) handler.Response { return ok() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/articles", url.Values{"authenticity_token": {"anything"}}))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.ErrorIs(t, rejected, forgery.ErrMissingSession)
}

func TestCSRFTokenHandler(t *testing.T) {
	t.Parallel()

	h := newHarness(t, harnessConfig{protect: secretProtect(forgery.WithTokenParam("_csrf"))})
	w := h.do(httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["token"], 40, "sha1 hex")
	assert.Equal(t, "_csrf", body["param"])
	assert.Equal(t, forgery.HeaderName, body["header"])
}

func TestCSRFAccessorsWithoutMiddleware(t *testing.T) {
	t.Parallel()

	ctx := router.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)

	_, err := middleware.CSRFToken(ctx)
	assert.ErrorIs(t, err, middleware.ErrCSRFNotConfigured)
	assert.False(t, middleware.CSRFProtected(ctx))
	assert.Empty(t, middleware.CSRFField(ctx))
}

func TestCSRFMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics, err := forgery.NewMetrics(reg)
	require.NoError(t, err)

	h := newHarness(t, harnessConfig{
		protector: forgery.New(forgery.WithMetrics(metrics)),
		protect:   secretProtect(),
	})
	token := h.token()
	h.do(postForm("/articles", url.Values{"title": {"hello"}}))
	h.do(postForm("/articles", url.Values{"authenticity_token": {token}}))

	assert.Equal(t, 1.0, counterValue(t, reg, "csrf_decisions_total", map[string]string{
		"group": "articles", "action": "create", "decision": "rejected",
	}))
	assert.Equal(t, 1.0, counterValue(t, reg, "csrf_decisions_total", map[string]string{
		"group": "articles", "action": "create", "decision": "verified",
	}))
	assert.Equal(t, 1.0, counterValue(t, reg, "csrf_decisions_total", map[string]string{
		"group": "articles", "action": "token", "decision": "safe_method",
	}))
}

func TestCSRFConfigPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, testSessionData]{})
	})

	group := forgery.New().Group("articles")
	middleware.CSRF[*router.Context, testSessionData](group, "create")
	assert.Panics(t, func() { group.Protect() }, "building the middleware seals the group")
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

