// Package views embeds the HTML views of the Gang Games application.
package views

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/gang-games/ganggames/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets
var assetsFS embed.FS

// Set groups the views the application is composed of.
type Set struct {
	Layout   view.View
	Hub      view.View
	Wordle   view.View
	NotFound view.View
	Error    view.View
}

// Load parses all embedded templates.
func Load() (*Set, error) {
	return LoadFS(templatesFS, "templates")
}

// LoadFS parses the templates from dir in fsys. It allows overriding the embedded views with
// files from disk.
func LoadFS(fsys fs.FS, dir string) (*Set, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("views directory %s: %w", dir, err)
	}

	s := &Set{}
	for name, dst := range map[string]*view.View{
		"layout.html":   &s.Layout,
		"hub.html":      &s.Hub,
		"wordle.html":   &s.Wordle,
		"notfound.html": &s.NotFound,
		"error.html":    &s.Error,
	} {
		t, err := view.ParseFS(sub, name)
		if err != nil {
			return nil, err
		}
		*dst = t
	}
	return s, nil
}

// Assets returns the embedded static files. The file system has a single top-level directory
// named "assets".
func Assets() fs.FS {
	return assetsFS
}
