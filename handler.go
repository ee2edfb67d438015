package ganggames

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/gang-games/ganggames/view"
)

// Handler serves the application in history mode: every registered route path is answered
// directly with its view rendered into the layout, so that a page can be loaded from any
// address. A websocket opened on a page starts a live navigation session (see session.go).
type Handler struct {
	// Routes is the route table. Required.
	Routes *Table

	// Base is the path prefix the application is served under, e.g. "/apps". Routes and
	// static files are looked up relative to it.
	Base string

	// FileSystem to serve static files from. Optional.
	FileSystem fs.FS

	// Layout wraps the view of every full page request. It receives the rendered view in the
	// "content" variable and its title in "title". If nil, views are sent as they are.
	Layout view.View

	// NotFound is rendered with status 404 for locations no route matches. If nil, a plain
	// "Not Found" text is sent.
	NotFound view.View

	// ErrorView is rendered with status 500 in place of a view that failed.
	// If not set, a standard "Internal Server Error" will be sent back to the client.
	ErrorView view.View

	// Debug exposes error details to ErrorView in the "debug" variable.
	Debug bool

	// AfterNavigate is called after every navigation committed in a live session, in order.
	// It must not block.
	AfterNavigate func(r *http.Request, to, from Resolved)

	// OnError is a callback that is called when an error occurs while serving a page.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger

	// base is the normalized Base.
	base string
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
		h.base = cleanBase(h.Base)
	})

	if err := h.handleRequest(w, r); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		h.reportError(r, err)
	}
}

func (h *Handler) reportError(r *http.Request, err error) {
	h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)

	if h.OnError != nil {
		h.OnError(r, err)
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	urlPath := cleanPath(r.URL.Path)

	loc, ok := stripBase(h.base, urlPath)
	if !ok {
		http.NotFound(w, r)
		return nil
	}

	if isWebSocketUpgrade(r) {
		return h.serveSession(w, r, loc)
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil
	}

	if _, ok := h.Routes.Match(loc); !ok {
		if fsPath, ok := h.matchFS(loc); ok {
			return h.serveFile(w, r, fsPath)
		}
	}

	router, err := h.newRouter(loc, r.URL.RawQuery)
	if err != nil {
		return err
	}

	return h.servePage(w, r, router.Current())
}

// newRouter creates the navigation controller of a page session opened at loc.
func (h *Handler) newRouter(loc, rawQuery string) (*Router, error) {
	history := NewWebHistory(h.base)
	if rawQuery != "" {
		loc += "?" + rawQuery
	}
	history.Replace(loc)

	return NewRouter(Options{
		Routes:  h.Routes,
		History: history,
	})
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, res Resolved) error {
	pv, err := h.renderView(r, res)
	if err != nil {
		return err
	}

	page := pv.node
	if h.Layout != nil {
		s := h.newScope(r, res).Spawn(map[string]any{
			"content": pv.node,
			"title":   pv.title,
		})
		page, err = renderHTML(h.Layout, s)
		if err != nil {
			return fmt.Errorf("render layout: %w", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(pv.status)

	if r.Method == http.MethodHead || page == nil {
		return nil
	}

	if err := html.Render(w, page); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}

// pageView is a view rendered for a location.
type pageView struct {
	node   *html.Node
	title  string
	status int
}

// renderView renders the view of the matched route, or the not found view. A failing view is
// replaced by the error view, if there is one.
func (h *Handler) renderView(r *http.Request, res Resolved) (*pageView, error) {
	pv := &pageView{status: http.StatusOK}

	var v view.View
	if res.Matched() {
		v = res.Route.View
		pv.title = res.Route.DisplayTitle()
	} else {
		v = h.NotFound
		pv.title = http.StatusText(http.StatusNotFound)
		pv.status = http.StatusNotFound
	}

	if v == nil {
		pv.node = textDocument(pv.title)
		return pv, nil
	}

	eh := newErrorHandlerView(v, h.ErrorView)

	s := h.newScope(r, res).Spawn(map[string]any{
		"title": pv.title,
		"debug": h.Debug,
	})

	node, err := renderHTML(eh, s)
	if err != nil {
		return nil, fmt.Errorf("render view %s: %w", viewName(v, res), err)
	}

	if eh.Err() != nil {
		pv.status = http.StatusInternalServerError
		h.logger.Error("Render view", "view", viewName(v, res), "error", eh.Err())
		if h.OnError != nil {
			h.OnError(r, eh.Err())
		}
	}

	pv.node = node
	return pv, nil
}

func renderHTML(v view.View, s view.Scope) (*html.Node, error) {
	rr, err := v.Render(s)
	if err != nil {
		return nil, err
	}
	switch rr := rr.(type) {
	case nil:
		return nil, nil
	case *html.Node:
		return rr, nil
	case string:
		return textDocument(rr), nil
	default:
		return nil, fmt.Errorf("view produced %T, want HTML", rr)
	}
}

func textDocument(s string) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return doc
}

func renderString(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func viewName(v view.View, res Resolved) string {
	if n, ok := v.(view.Named); ok {
		return n.Name()
	}
	if res.Matched() {
		return res.Route.Name
	}
	return "not-found"
}

// matchFS looks up a static file for loc. Hidden files and directories are never matched.
func (h *Handler) matchFS(loc string) (string, bool) {
	if h.FileSystem == nil {
		return "", false
	}

	p := strings.TrimPrefix(loc, "/")
	if p == "" || !fs.ValidPath(p) {
		return "", false
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg[0] == '.' {
			return "", false
		}
	}

	fi, err := fs.Stat(h.FileSystem, p)
	if err != nil || fi.IsDir() {
		return "", false
	}

	return p, true
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, fsPath string) error {
	fr := r.Clone(r.Context())
	fr.URL.Path = "/" + fsPath
	fr.URL.RawPath = ""
	http.FileServer(http.FS(h.FileSystem)).ServeHTTP(w, fr)
	return nil
}
