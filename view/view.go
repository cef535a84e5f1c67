// Package view renders catalogue view-models as HTML pages or JSON documents.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/html"

	"github.com/htol/locallibrary/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer writes the named view with its data and status code.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data map[string]any) error
}

// HTMLRenderer executes one html/template set per view, each wrapped in the
// shared layout.
type HTMLRenderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	// display undoes the escaping applied when a form is sanitized, so that
	// html/template escapes the text exactly once.
	"display": func(v any) string {
		if v == nil {
			return ""
		}
		return html.UnescapeString(fmt.Sprint(v))
	},
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &HTMLRenderer{pages: pages}, nil
}

func (r *HTMLRenderer) Render(w http.ResponseWriter, status int, name string, data map[string]any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	// render fully before writing so a template error can still become a 500
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Failed to write page", "view", name, "error", err)
	}
	return nil
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONRenderer writes the view-model itself, with the view name under "view".
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, name string, data map[string]any) error {
	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc["view"] = name

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Failed to write json", "view", name, "error", err)
	}
	return nil
}

// WantsJSON reports whether the client asked for JSON, either with
// ?format=json or an Accept header preferring application/json.
func WantsJSON(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "json")
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
