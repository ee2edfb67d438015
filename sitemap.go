package ganggames

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// WriteSitemap writes an XML sitemap listing the routes of t in table order. publicURL is the
// absolute URL the application is served under, e.g. "https://example.com/apps".
func WriteSitemap(w io.Writer, t *Table, publicURL string) error {
	if u, err := url.Parse(publicURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("sitemap: public URL %q is not absolute", publicURL)
	}
	publicURL = strings.TrimRight(publicURL, "/")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", sitemapNS)

	for _, r := range t.routes {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(publicURL + r.Path)
	}

	doc.Indent(2)

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// SitemapHandler serves the sitemap of t. Failures are sent as 500 and passed to onError, if
// it is not nil.
func SitemapHandler(t *Table, publicURL string, onError func(*http.Request, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := WriteSitemap(&buf, t, publicURL); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			if onError != nil {
				onError(r, err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = buf.WriteTo(w)
	})
}
