package ganggames

import (
	"net/http"
)

// RequestArg is a simplified model for http.Request suitable for expressions in views.
type RequestArg struct {
	Method     string              `expr:"method"`
	URL        string              `expr:"url"`
	Host       string              `expr:"host"`
	Path       string              `expr:"path"`
	Query      map[string][]string `expr:"query"`
	RemoteAddr string              `expr:"remote_addr"`
	Headers    map[string][]string `expr:"headers"`
}

// NewRequestArg describes r to views. A nil request yields an empty RequestArg.
func NewRequestArg(r *http.Request) *RequestArg {
	if r == nil {
		return &RequestArg{}
	}
	return &RequestArg{
		Method:     r.Method,
		URL:        r.RequestURI,
		Host:       r.Host,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		RemoteAddr: r.RemoteAddr,
		Headers:    r.Header,
	}
}

// RouteArg describes a route to views.
type RouteArg struct {
	Name  string `expr:"name"`
	Path  string `expr:"path"`
	Href  string `expr:"href"`
	Title string `expr:"title"`
}

func newRouteArg(r Route, base string) RouteArg {
	return RouteArg{
		Name:  r.Name,
		Path:  r.Path,
		Href:  base + r.Path,
		Title: r.DisplayTitle(),
	}
}
