package main

import (
	"html/template"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/antiforgery/app/simple"
	"github.com/dmitrymomot/antiforgery/core/config"
	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/response"
	"github.com/dmitrymomot/antiforgery/core/router"
	"github.com/dmitrymomot/antiforgery/middleware"
)

var page = template.Must(template.New("notes").Parse(`<!doctype html>
<html>
<body>
<h1>Notes</h1>
<ul>{{range .Notes}}<li>{{.}}</li>{{end}}</ul>
<form method="post" action="/notes">
{{.Field}}
<input name="body" required>
<button>Add</button>
</form>
</body>
</html>
`))

// notebook is the demo's in-memory state.
type notebook struct {
	mu    sync.Mutex
	notes []string
}

func (n *notebook) add(note string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *notebook) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes...)
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server with a protected form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg simple.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			app, err := simple.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			mountNotes(app, &notebook{})

			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides SERVER_ADDR")
	return cmd
}

// mountNotes registers the demo routes. Every action of the "notes" group is gated.
func mountNotes(app *simple.App, book *notebook) {
	notes := app.Group("notes").Protect()
	r := app.Router()

	r.With(app.CSRF(notes, "token")).Get("/csrf", middleware.CSRFTokenHandler[*router.Context]())
	r.With(app.CSRF(notes, "index")).Get("/", func(ctx *router.Context) handler.Response {
		return response.Template(page, map[string]any{
			"Notes": book.list(),
			"Field": middleware.CSRFField(ctx),
		})
	})
	r.With(app.CSRF(notes, "create")).Post("/notes", func(ctx *router.Context) handler.Response {
		body := ctx.Request().FormValue("body")
		if body == "" {
			return response.Error(response.ErrBadRequest.WithMessage("note body is required"))
		}
		book.add(body)
		return response.RedirectSeeOther("/")
	})
}
