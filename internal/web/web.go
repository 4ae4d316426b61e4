// Package web renders the embedded page templates and serves static assets.
// Templates are parsed once at startup; each page is a clone of the layout.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout is the template every page renders through.
const Layout = "layout"

// Pages lists the page templates under templates/pages.
var Pages = []string{"home.html", "view.html", "compare.html", "error.html"}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"css":  func(s string) template.CSS { return template.CSS(s) },
	"dict": dict,
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// NavLink is an entry of the page header.
type NavLink struct {
	Href   string
	Label  string
	Active bool
}

// PageData contains the data passed to page templates during rendering.
// T localizes a message ID for the current request.
type PageData struct {
	Title string
	Lang  string
	Nav   []NavLink
	T     func(messageID string) string
	Data  any
}

// TemplateSet holds pre-parsed page templates.
type TemplateSet struct {
	pages map[string]*template.Template
}

// NewTemplateSet parses the embedded layout and clones it for each page.
func NewTemplateSet() (*TemplateSet, error) {
	return ParseTemplateSet(templatesFS, "templates/layout.html", "templates/pages", Pages)
}

// ParseTemplateSet parses layoutGlob from fsys and clones the result for
// every page found under pageDir.
func ParseTemplateSet(fsys fs.FS, layoutGlob, pageDir string, pages []string) (*TemplateSet, error) {
	layouts, err := template.New(path.Base(layoutGlob)).Funcs(Funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, err
	}
	pageSub, err := fs.Sub(fsys, pageDir)
	if err != nil {
		return nil, err
	}

	set := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", p, err)
		}
		if _, err := t.ParseFS(pageSub, p); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", p, err)
		}
		set[p] = t
	}
	return &TemplateSet{pages: set}, nil
}

// Render executes the layout for page and sets the HTML content type.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	t, ok := ts.pages[page]
	if !ok {
		return fmt.Errorf("template not found: %s", page)
	}
	if data.T == nil {
		data.T = func(id string) string { return id }
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.ExecuteTemplate(w, Layout, data)
}

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
