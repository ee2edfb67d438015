package ganggames

import (
	"strings"
	"sync"
)

// History is the location stack a Router navigates through. Locations are router-relative
// (the base path stripped), may include a query string, and are always addressable URLs: there
// is no fragment based mode.
type History interface {
	// Base returns the path prefix the application is served under.
	Base() string

	// Location returns the current router-relative location.
	Location() string

	// Push adds a location after the current one, discarding any forward entries.
	Push(loc string)

	// Replace overwrites the current location.
	Replace(loc string)

	// Go moves delta entries back (negative) or forward (positive) and returns the new current
	// location. It reports false and stays in place if the target entry does not exist.
	Go(delta int) (string, bool)

	// Index returns the position of the current location, starting at 0.
	Index() int

	// Len returns the number of entries.
	Len() int
}

// WebHistory keeps the entries of one page session in memory, mirroring the browser's
// session history of the page.
type WebHistory struct {
	base string

	mu      sync.Mutex
	entries []string
	pos     int
}

var _ History = (*WebHistory)(nil)

// NewWebHistory creates a history for an application served under base ("" or "/" for the
// server root). The initial location is "/".
func NewWebHistory(base string) *WebHistory {
	return &WebHistory{
		base:    cleanBase(base),
		entries: []string{"/"},
	}
}

func (h *WebHistory) Base() string {
	return h.base
}

func (h *WebHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos]
}

func (h *WebHistory) Push(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.pos+1], loc)
	h.pos++
}

func (h *WebHistory) Replace(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = loc
}

func (h *WebHistory) Go(delta int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	to := h.pos + delta
	if to < 0 || to >= len(h.entries) {
		return h.entries[h.pos], false
	}
	h.pos = to
	return h.entries[h.pos], true
}

func (h *WebHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

func (h *WebHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Href turns a router-relative location into a URL path under the base.
func (h *WebHistory) Href(loc string) string {
	return h.base + loc
}

// Strip turns a URL path into a router-relative location. It reports false when p is outside
// of the base.
func (h *WebHistory) Strip(p string) (string, bool) {
	return stripBase(h.base, p)
}

func stripBase(base, p string) (string, bool) {
	if base == "" {
		return p, true
	}
	if p == base {
		return "/", true
	}
	rest, ok := strings.CutPrefix(p, base)
	if !ok || rest[0] != '/' {
		return "", false
	}
	return rest, true
}
