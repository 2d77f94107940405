// Package views renders the embedded HTML pages and serves static assets.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"yelpcamp/internal/security"
	"yelpcamp/internal/telemetry"
)

//go:embed templates static
var files embed.FS

// Page names accepted by Render.
const (
	PageHome            = "home"
	PageError           = "error"
	PageCampgroundIndex = "campgrounds/index"
	PageCampgroundNew   = "campgrounds/new"
	PageCampgroundEdit  = "campgrounds/edit"
	PageCampgroundShow  = "campgrounds/show"
	PageRegister        = "users/register"
	PageLogin           = "users/login"
)

var pages = []string{
	PageHome,
	PageError,
	PageCampgroundIndex,
	PageCampgroundNew,
	PageCampgroundEdit,
	PageCampgroundShow,
	PageRegister,
	PageLogin,
}

// Page is the data every template receives. Data carries the page-specific payload.
type Page struct {
	Title    string
	User     *security.Identity
	Success  []string
	Errors   []string
	CSRF     string
	MapToken string
	Data     any
}

// ErrorData is the payload of the error page. Detail is only set outside production.
type ErrorData struct {
	Status  int
	Message string
	Detail  string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
	log   telemetry.Logger
}

// NewRenderer parses the layout and partials together with each page.
func NewRenderer(log telemetry.Logger) (*Renderer, error) {
	base, err := template.ParseFS(files, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse layout: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), log: log}
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("views: clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(files, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render buffers the page and writes it with status once execution succeeded.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		r.log.Error("template execution failed", "page", name, "error", err)
		return fmt.Errorf("views: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded assets. Mount it with the "/static/" prefix stripped.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}
