package ganggames

import (
	"path"
	"strings"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements.
//
// Copied from net/http/server.go
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		// Fast path for common case of p being the string we want:
		if len(p) == len(np)+1 && strings.HasPrefix(p, np) {
			np = p
		} else {
			np += "/"
		}
	}
	return np
}

// cleanBase normalizes the path prefix the application is served under: "" for the root,
// otherwise a clean path without a trailing slash.
func cleanBase(base string) string {
	base = strings.TrimRight(cleanPath(base), "/")
	return base
}
