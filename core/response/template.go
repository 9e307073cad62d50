package response

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/dmitrymomot/antiforgery/core/handler"
)

var errNilTemplate = errors.New("response: template is nil")

// Template renders tmpl with data as a 200 text/html response.
func Template(tmpl *template.Template, data any) handler.Response {
	return TemplateWithStatus(tmpl, data, http.StatusOK)
}

// TemplateWithStatus renders tmpl with data into a buffer and writes it with
// status. Nothing is written when execution fails, so the router's error
// handler can still render the error.
func TemplateWithStatus(tmpl *template.Template, data any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return errNilTemplate
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return err
		}
		return write("text/html; charset=utf-8", buf.Bytes(), status)(w, r)
	}
}
