package view

import "errors"

// ErrViewNotFound is returned when a view can not be located by name.
var ErrViewNotFound = errors.New("view not found")

// View is a renderable UI unit. Render transforms variables from the scope into an HTML
// document (*html.Node) or any other value that a parent view can splice into its output.
type View interface {
	Render(s Scope) (any, error)
}

// Func is an adapter to allow the use of ordinary functions as views.
type Func func(s Scope) (any, error)

func (f Func) Render(s Scope) (any, error) {
	return f(s)
}

// Named is implemented by views that know their own name, e.g. templates parsed from a file.
type Named interface {
	Name() string
}
