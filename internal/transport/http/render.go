package httptransport

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
	"tickethub/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"verify", "ticket", "pending", "admin"}

var funcs = template.FuncMap{
	"price": models.FormatPrice,
}

// Page is the data every template receives. Page-specific data is under Page.
type Page struct {
	Title     string
	CSRFToken string
	Notices   []session.Notice
	Citizen   *models.IdentityRecord
	Officer   *models.IdentityRecord
	Page      any
}

type renderer struct {
	pages    map[string]*template.Template
	sessions *session.Manager
	logger   *slog.Logger
}

func newRenderer(sessions *session.Manager, logger *slog.Logger) (*renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &renderer{pages: pages, sessions: sessions, logger: logger}, nil
}

// render drains the session's notices into the page and writes it with status.
func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	ctx := r.Context()
	page := Page{Title: title, Page: data}

	if sess, ok := session.FromContext(ctx); ok {
		notices, err := sess.TakeNotices(ctx)
		if err != nil {
			rd.logger.ErrorContext(ctx, "failed to take notices",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		page.Notices = notices
		page.CSRFToken = rd.sessions.CSRFToken(sess)
		page.Citizen = sess.Citizen()
		page.Officer = sess.Officer()
	}

	t, ok := rd.pages[name]
	if !ok {
		rd.logger.ErrorContext(ctx, "unknown template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		rd.logger.ErrorContext(ctx, "failed to render template",
			"template", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
