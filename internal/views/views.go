// Package views holds the HTML pages. Every page renders inside layout.html,
// which places the page body with {{embed}}; "_" files are partials.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout is the template every page is rendered into.
const Layout = "layout"

// New returns the template engine over the embedded pages. Templates are named
// by file name without the extension.
func New() (*html.Engine, error) {
	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(root), ".html")
	engine.AddFunc("date", func(t interface{ Format(string) string }) string {
		return t.Format("2006-01-02")
	})
	return engine, nil
}
