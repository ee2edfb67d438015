package view

import (
	"strings"

	"golang.org/x/net/html"
)

// ViewError reports a failure to compile or render an element of a template view.
type ViewError struct {
	name string
	path string
	err  error
}

func newViewError(name string, n *html.Node, err error) *ViewError {
	return &ViewError{
		name: name,
		path: nodePath(n),
		err:  err,
	}
}

func (e *ViewError) Error() string {
	if e.path == "" {
		return e.name + ": " + e.err.Error()
	}
	return e.name + ": " + e.path + ": " + e.err.Error()
}

func (e *ViewError) Unwrap() error {
	return e.err
}

// View returns the name of the failed view.
func (e *ViewError) View() string {
	return e.name
}

// Path returns a slash separated path of element names from the root of the template to the
// failed node, e.g. "main/ul/li".
func (e *ViewError) Path() string {
	return e.path
}

func nodePath(n *html.Node) string {
	var segs []string
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			segs = append(segs, n.Data)
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}
