package ganggames

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the route whose path is closest to p by edit distance. Routes that differ
// from p in more than half of its length are not considered. Ties are broken by table order.
func (t *Table) Suggest(p string) (Route, bool) {
	p = strings.ToLower(p)

	best, bestDist := -1, len(p)/2+1
	for i, r := range t.routes {
		d := levenshtein.ComputeDistance(p, strings.ToLower(r.Path))
		if d < bestDist {
			best, bestDist = i, d
		}
	}

	if best < 0 {
		return Route{}, false
	}
	return t.routes[best].clone(), true
}
