package renderer

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/damacus/bucket-console/internal/utils"
	"github.com/labstack/echo/v4"
)

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a new TemplateRenderer with templates parsed from fsys
func New(fsys fs.FS) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	if err := r.parseTemplates(fsys); err != nil {
		return nil, err
	}
	return r, nil
}

// Funcs are the helpers available to every page
var Funcs = template.FuncMap{
	"browse":  services.BrowseURL,
	"keypath": KeyPath,
	"time":    utils.FormatTime,
}

// KeyPath escapes each segment of an object key for use in a URL path
func KeyPath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (t *TemplateRenderer) parseTemplates(fsys fs.FS) error {
	// layout + page
	parse := func(name, pageFile string) error {
		tmpl, err := template.New(name).Funcs(Funcs).ParseFS(fsys,
			"layouts/base.html",
			"pages/"+pageFile,
		)
		if err != nil {
			return err
		}
		t.Templates[name] = tmpl
		return nil
	}

	if err := parse("buckets", "buckets.html"); err != nil {
		return err
	}
	return parse("browser", "browser.html")
}

// Render renders a page inside the "base" layout
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
