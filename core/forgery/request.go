package forgery

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Request is the part of an inbound request the verifier inspects.
type Request struct {
	Method      string
	ContentType string
	Params      url.Values
	Header      http.Header
}

// DefaultMaxMemory bounds multipart form parsing in ParseRequest.
const DefaultMaxMemory = 32 << 20

// ParseRequest builds a Request from r. The body is parsed only when the
// request is subject to verification, so safe or non-checkable requests keep
// their body untouched.
func ParseRequest(r *http.Request, maxMemory int64) (Request, error) {
	req := Request{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Header:      r.Header,
		Params:      r.URL.Query(),
	}
	if IsSafeMethod(req.Method) || !IsCheckable(req.ContentType) {
		return req, nil
	}

	mt, _, _ := mime.ParseMediaType(req.ContentType)
	var err error
	if mt == "multipart/form-data" {
		if maxMemory <= 0 {
			maxMemory = DefaultMaxMemory
		}
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, err
	}
	if r.Form != nil {
		req.Params = r.Form
	}
	return req, nil
}

// IsSafeMethod reports whether method never changes state. HEAD is treated
// like GET; an empty method means GET.
func IsSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

var checkableTypes = map[string]struct{}{
	"text/html":                         {},
	"application/xhtml+xml":             {},
	"text/javascript":                   {},
	"application/javascript":            {},
	"application/x-javascript":          {},
	"application/x-www-form-urlencoded": {},
	"multipart/form-data":               {},
}

// IsCheckable reports whether a request with this Content-Type header is in
// scope for verification: HTML form and script submissions. A missing or
// unparsable content type is out of scope.
func IsCheckable(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := checkableTypes[mt]
	return ok
}

// submitted returns the token sent with the request, preferring the form
// parameter over the header.
func (r Request) submitted(param string) string {
	if v := r.Params.Get(param); v != "" {
		return v
	}
	return r.Header.Get(HeaderName)
}
