package ganggames

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

func isWebSocketUpgrade(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}

// Navigation operations a page sends over the session websocket.
const (
	opPush    = "push"
	opReplace = "replace"
	opGo      = "go"
	opBack    = "back"
	opForward = "forward"
)

// navRequest is a navigation event sent by the page: a link activation or a programmatic call
// ("push", "replace") or a history traversal ("go", "back", "forward").
type navRequest struct {
	Op string `json:"op"`

	// To is a URL path, including the base, with an optional query.
	To string `json:"to,omitempty"`

	// Name selects a route by name instead of To.
	Name string `json:"name,omitempty"`

	Delta int `json:"delta,omitempty"`
}

// viewUpdate is sent to the page after each navigation, or with Error set when a navigation
// fails. Index and Length describe the session history after the navigation: a page keeps its
// own history in step by comparing Index with the position of its current entry, since
// superseded views are never sent.
type viewUpdate struct {
	Session string `json:"session"`
	Path    string `json:"path,omitempty"`
	Href    string `json:"href,omitempty"`
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	Status  int    `json:"status,omitempty"`
	HTML    string `json:"html,omitempty"`
	Index   int    `json:"index"`
	Length  int    `json:"length,omitempty"`
	Error   string `json:"error,omitempty"`
}

// serveSession upgrades the request to a websocket and runs a live navigation session. The
// session owns a Router initialized at the page location. Navigation requests are applied in
// the order they arrive; after each one the view of the active route is sent back.
func (h *Handler) serveSession(w http.ResponseWriter, r *http.Request, loc string) error {
	router, err := h.newRouter(loc, r.URL.RawQuery)
	if err != nil {
		return err
	}

	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied to the client
		h.logger.Warn("Upgrade websocket", "url", r.URL.Redacted(), "error", err)
		return nil
	}
	defer ws.Close()

	id := uuid.NewString()
	logger := h.logger.With("session", id)
	logger.Debug("Session started", "path", loc)

	remove := router.AfterEach(func(to, from Resolved) {
		logger.Debug("Navigated", "from", from.FullPath, "to", to.FullPath)
		if h.AfterNavigate != nil {
			h.AfterNavigate(r, to, from)
		}
	})
	defer remove()

	// Render the view on:
	// 1. session start
	// 2. each committed navigation
	// A navigation that arrives while a view is rendering supersedes it: the rendered view is
	// dropped and the latest route is rendered instead.

	rc := make(chan struct{}, 1) // renderer event channel
	rc <- struct{}{}

	failed := make(chan error)  // navigation errors to report to the page
	done := make(chan error, 1) // completion of the reader
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			var req navRequest
			if err := ws.ReadJSON(&req); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err // stop rendering loop
				return
			}

			if err := h.navigate(router, req); err != nil {
				select {
				case failed <- err:
				case <-quit:
					return
				}
				continue
			}

			select {
			case rc <- struct{}{}:
			default: // If rc is already pending, don't block
			}
		}
	}()

	// render sends the view of the active route. It reports false when the session must stop.
	render := func() bool {
		gen := router.Generation()
		cur := router.Current()
		index, length := router.Position()

		msg, err := h.renderUpdate(r, cur)
		if err != nil {
			h.reportError(r, fmt.Errorf("session %s: %w", id, err))
			return false
		}

		if router.Generation() != gen {
			logger.Debug("Drop superseded view", "path", cur.Path)
			return true
		}

		msg.Session = id
		msg.Index = index
		msg.Length = length
		if err := ws.WriteJSON(msg); err != nil {
			logger.Debug("Write websocket message", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-rc:
			if !render() {
				return nil
			}
		case err := <-failed:
			// A navigation committed before the failed one is sent first.
			select {
			case <-rc:
				if !render() {
					return nil
				}
			default:
			}

			logger.Debug("Navigation failed", "error", err)
			index, length := router.Position()
			if err := ws.WriteJSON(viewUpdate{Session: id, Index: index, Length: length, Error: err.Error()}); err != nil {
				logger.Debug("Write websocket message", "error", err)
				return nil
			}
		case err := <-done:
			if err != nil {
				logger.Debug("Session closed", "error", err)
			}
			return nil
		}
	}
}

// navigate applies a navigation request to the router.
func (h *Handler) navigate(router *Router, req navRequest) error {
	var err error

	switch req.Op {
	case opPush, opReplace:
		var to Location
		to, err = h.location(req)
		if err != nil {
			return err
		}
		if req.Op == opPush {
			_, err = router.Push(to)
		} else {
			_, err = router.Replace(to)
		}
	case opGo:
		_, err = router.Go(req.Delta)
	case opBack:
		_, err = router.Back()
	case opForward:
		_, err = router.Forward()
	default:
		return fmt.Errorf("unknown navigation operation %q", req.Op)
	}

	return err
}

func (h *Handler) location(req navRequest) (Location, error) {
	if req.Name != "" {
		return Named(req.Name), nil
	}

	u, err := url.Parse(req.To)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", req.To, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, errors.New("location must be a path")
	}

	loc, ok := stripBase(h.base, cleanPath(u.Path))
	if !ok {
		return Location{}, fmt.Errorf("location %q is outside of %q", u.Path, h.base)
	}

	return Location{Path: loc, Query: u.Query()}, nil
}

func (h *Handler) renderUpdate(r *http.Request, res Resolved) (viewUpdate, error) {
	pv, err := h.renderView(r, res)
	if err != nil {
		return viewUpdate{}, err
	}

	s, err := renderString(pv.node)
	if err != nil {
		return viewUpdate{}, fmt.Errorf("render HTML: %w", err)
	}

	return viewUpdate{
		Path:   res.Path,
		Href:   res.Href,
		Name:   res.Name(),
		Title:  pv.title,
		Status: pv.status,
		HTML:   s,
	}, nil
}
