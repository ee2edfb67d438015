package ganggames

import (
	"maps"
	"net/http"

	"github.com/gang-games/ganggames/view"
)

// newScope builds the variables visible to the views of a page:
//
//   - request: the HTTP request (RequestArg)
//   - route: the active route (RouteArg), zero when nothing matched
//   - path: router-relative path of the location
//   - query: query parameters of the location
//   - paths: hrefs of all routes keyed by route name
//   - games: all routes except the hub, in table order
//   - assets: URL prefix of static files
//   - suggestion: the closest route when nothing matched, otherwise nil
//
// Props of the active route are added too, but cannot shadow the names above.
func (h *Handler) newScope(r *http.Request, res Resolved) *view.BaseScope {
	routes := h.Routes.Routes()

	paths := make(map[string]string, len(routes))
	games := make([]RouteArg, 0, len(routes))
	for _, rt := range routes {
		paths[rt.Name] = h.base + rt.Path
		if rt.Name != HomeRouteName {
			games = append(games, newRouteArg(rt, h.base))
		}
	}

	vars := map[string]any{}
	if res.Matched() {
		maps.Copy(vars, res.Route.Props)
	}

	maps.Copy(vars, map[string]any{
		"request":    NewRequestArg(r),
		"route":      RouteArg{},
		"path":       res.Path,
		"query":      map[string][]string(res.Query),
		"paths":      paths,
		"games":      games,
		"assets":     h.base + "/assets",
		"suggestion": nil,
	})

	if res.Matched() {
		vars["route"] = newRouteArg(*res.Route, h.base)
	} else if s, ok := h.Routes.Suggest(res.Path); ok {
		vars["suggestion"] = newRouteArg(s, h.base)
	}

	return view.NewScope(vars)
}
