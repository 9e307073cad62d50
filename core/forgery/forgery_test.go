package forgery_test

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/antiforgery/core/forgery"
)

type fakeSession struct {
	id      string
	csrfID  string
	assigns int
}

func (s *fakeSession) SessionID() string { return s.id }
func (s *fakeSession) CSRFID() string    { return s.csrfID }
func (s *fakeSession) SetCSRFID(id string) {
	s.assigns++
	s.csrfID = id
}

type digestStore struct {
	calls []string
	err   error
}

func (d *digestStore) GenerateDigest(id string) (string, error) {
	d.calls = append(d.calls, id)
	if d.err != nil {
		return "", d.err
	}
	return "digest:" + id, nil
}

var errBoom = errors.New("boom")

func formPost(token string) forgery.Request {
	params := url.Values{}
	if token != "" {
		params.Set(forgery.DefaultTokenParam, token)
	}
	return forgery.Request{
		Method:      http.MethodPost,
		ContentType: "application/x-www-form-urlencoded",
		Params:      params,
		Header:      http.Header{},
	}
}

func secretConfig(secret string) forgery.ProtectionConfig {
	return forgery.ProtectionConfig{
		Enabled:    true,
		Secret:     secret,
		Digest:     forgery.DefaultDigest,
		TokenParam: forgery.DefaultTokenParam,
	}
}

func fixed(token string) func() (string, error) {
	return func() (string, error) { return token, nil }
}
