package ganggames

import (
	"fmt"
	"maps"

	"github.com/gang-games/ganggames/view"
)

// Names and paths of the built-in routes.
const (
	HomeRouteName   = "GangGamesHome"
	WordleRouteName = "WordleGame"

	HomePath   = "/gang-games/"
	WordlePath = "/gang-games/wordle/"
)

// Route describes one navigable location of the application.
type Route struct {
	// Path is a normalized URL path, relative to the base the application is served under.
	Path string

	// Name identifies the route independently of its path.
	Name string

	// Title is a human readable title. If empty, Name is used.
	Title string

	// View is rendered when the route is active.
	View view.View

	// Props are passed to the view as variables.
	Props map[string]any
}

// clone returns a copy of r that shares no Props with it.
func (r Route) clone() Route {
	r.Props = maps.Clone(r.Props)
	return r
}

// DisplayTitle returns Title, or Name if the title is not set.
func (r Route) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// DefaultRoutes returns the routes of the Gang Games application.
func DefaultRoutes(hub, wordle view.View) []Route {
	return []Route{
		{Path: HomePath, Name: HomeRouteName, Title: "Gang Games", View: hub},
		{Path: WordlePath, Name: WordleRouteName, Title: "Wordle", View: wordle, Props: map[string]any{
			"rows": 6,
			"cols": 5,
		}},
	}
}

// Table is an ordered, immutable set of routes with unique paths and unique names.
type Table struct {
	routes []Route
	byName map[string]int
}

// NewTable validates routes and builds a table. The order of routes is preserved.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	for i, r := range routes {
		t.routes[i] = r.clone()
	}

	paths := make(map[string]string, len(routes))

	for i, r := range t.routes {
		switch {
		case r.Name == "":
			return nil, fmt.Errorf("route #%d (%s): empty name: %w", i, r.Path, ErrInvalidRoute)
		case r.Path == "" || r.Path[0] != '/':
			return nil, fmt.Errorf("route %s: path %q must start with a slash: %w", r.Name, r.Path, ErrInvalidRoute)
		case cleanPath(r.Path) != r.Path:
			return nil, fmt.Errorf("route %s: path %q is not normalized: %w", r.Name, r.Path, ErrInvalidRoute)
		case r.View == nil:
			return nil, fmt.Errorf("route %s: no view: %w", r.Name, ErrInvalidRoute)
		}

		if other, ok := paths[r.Path]; ok {
			return nil, fmt.Errorf("routes %s and %s: path %s: %w", other, r.Name, r.Path, ErrDuplicatePath)
		}
		paths[r.Path] = r.Name

		if _, ok := t.byName[r.Name]; ok {
			return nil, fmt.Errorf("route %s: %w", r.Name, ErrDuplicateName)
		}
		t.byName[r.Name] = i
	}

	return t, nil
}

// Routes returns a copy of the routes in table order.
func (t *Table) Routes() []Route {
	routes := make([]Route, len(t.routes))
	for i, r := range t.routes {
		routes[i] = r.clone()
	}
	return routes
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Match returns the first route whose path equals p.
func (t *Table) Match(p string) (Route, bool) {
	for _, r := range t.routes {
		if r.Path == p {
			return r.clone(), true
		}
	}
	return Route{}, false
}

// ByName returns the route registered under name.
func (t *Table) ByName(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i].clone(), true
}
