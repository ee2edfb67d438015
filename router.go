package ganggames

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/atomic"
)

// Location is a navigation target: either a path or a route name, with an optional query.
type Location struct {
	Path  string
	Name  string
	Query url.Values
}

// Path returns a location for a router-relative path. The path may include a query string.
func Path(p string) Location {
	return Location{Path: p}
}

// Named returns a location for the route registered under name.
func Named(name string) Location {
	return Location{Name: name}
}

// Resolved is a location matched against the route table.
type Resolved struct {
	// Path is the router-relative path.
	Path string

	// FullPath is Path with the encoded query, as stored in the history.
	FullPath string

	// Href is FullPath prefixed with the base of the history.
	Href string

	Query url.Values

	// Route is the matched route, nil if no route matches Path.
	Route *Route
}

// Matched reports whether a route matches the location.
func (r Resolved) Matched() bool {
	return r.Route != nil
}

// Name returns the name of the matched route or "".
func (r Resolved) Name() string {
	if r.Route == nil {
		return ""
	}
	return r.Route.Name
}

// Options configure a Router.
type Options struct {
	// Routes is the route table. Required.
	Routes *Table

	// History stores visited locations. If nil, a WebHistory served from the root is used.
	History History
}

// Router is the navigation controller of one page session. It keeps the active route in sync
// with the history and notifies listeners after every navigation.
//
// Navigations are serialized: concurrent calls are applied one at a time in the order they
// acquire the router.
type Router struct {
	routes  *Table
	history History

	mu        sync.Mutex
	current   Resolved
	listeners map[int]func(to, from Resolved)
	nextID    int

	// gen is incremented on each committed navigation.
	gen *atomic.Uint64
}

// NewRouter creates a router and activates the route of the history's current location.
func NewRouter(opts Options) (*Router, error) {
	if opts.Routes == nil {
		return nil, errors.New("router: no route table")
	}
	if opts.History == nil {
		opts.History = NewWebHistory("")
	}

	r := &Router{
		routes:    opts.Routes,
		history:   opts.History,
		listeners: map[int]func(to, from Resolved){},
		gen:       atomic.NewUint64(0),
	}

	cur, err := r.resolve(Path(r.history.Location()))
	if err != nil {
		return nil, fmt.Errorf("router: initial location: %w", err)
	}
	r.current = cur

	return r, nil
}

// Routes returns the route table.
func (r *Router) Routes() *Table {
	return r.routes
}

// Resolve matches a location against the route table without navigating.
func (r *Router) Resolve(to Location) (Resolved, error) {
	return r.resolve(to)
}

func (r *Router) resolve(to Location) (Resolved, error) {
	var res Resolved

	if to.Name != "" {
		route, ok := r.routes.ByName(to.Name)
		if !ok {
			return Resolved{}, fmt.Errorf("%q: %w", to.Name, ErrUnknownRouteName)
		}
		res.Path = route.Path
		res.Route = &route
		res.Query = to.Query
	} else {
		u, err := url.Parse(to.Path)
		if err != nil {
			return Resolved{}, fmt.Errorf("parse location %q: %w", to.Path, err)
		}
		res.Path = cleanPath(u.Path)
		res.Query = u.Query()
		for k, vv := range to.Query {
			res.Query[k] = vv
		}
		if route, ok := r.routes.Match(res.Path); ok {
			res.Route = &route
		}
	}

	if len(res.Query) == 0 {
		res.Query = nil
	}

	res.FullPath = res.Path
	if q := res.Query.Encode(); q != "" {
		res.FullPath += "?" + q
	}
	res.Href = r.history.Base() + res.FullPath

	return res, nil
}

// Current returns the active location.
func (r *Router) Current() Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Position returns the index of the active location in the history and the number of
// history entries.
func (r *Router) Position() (index, length int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Index(), r.history.Len()
}

// Generation returns a counter incremented on every navigation. It lets a renderer detect that
// the view it is producing has been superseded.
func (r *Router) Generation() uint64 {
	return r.gen.Load()
}

// Push navigates to a location, adding an entry to the history.
func (r *Router) Push(to Location) (Resolved, error) {
	return r.navigate(to, false)
}

// Replace navigates to a location, replacing the current history entry.
func (r *Router) Replace(to Location) (Resolved, error) {
	return r.navigate(to, true)
}

func (r *Router) navigate(to Location, replace bool) (Resolved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.resolve(to)
	if err != nil {
		return Resolved{}, err
	}

	if res.FullPath == r.current.FullPath {
		return res, fmt.Errorf("%s: %w", res.Href, ErrNavigationDuplicated)
	}

	if replace {
		r.history.Replace(res.FullPath)
	} else {
		r.history.Push(res.FullPath)
	}

	r.commit(res)
	return res, nil
}

// Go moves through the history. Negative delta goes back.
func (r *Router) Go(delta int) (Resolved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.history.Go(delta)
	if !ok {
		return r.current, fmt.Errorf("go %d: %w", delta, ErrNoHistoryEntry)
	}

	res, err := r.resolve(Path(loc))
	if err != nil {
		return Resolved{}, err
	}

	r.commit(res)
	return res, nil
}

// Back is the same as Go(-1).
func (r *Router) Back() (Resolved, error) {
	return r.Go(-1)
}

// Forward is the same as Go(1).
func (r *Router) Forward() (Resolved, error) {
	return r.Go(1)
}

// AfterEach registers a listener called after every navigation, and returns a function that
// removes it. Listeners run while the router is locked and must not navigate.
func (r *Router) AfterEach(fn func(to, from Resolved)) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// commit must be called with r.mu held.
func (r *Router) commit(to Resolved) {
	from := r.current
	r.current = to
	r.gen.Inc()

	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.listeners[id]; ok {
			fn(to, from)
		}
	}
}
