package ganggames

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, defaultTable(t), "https://games.example.com/"))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.Root()
	require.Equal(t, "urlset", root.Tag)
	require.Equal(t, sitemapNS, root.SelectAttrValue("xmlns", ""))

	var locs []string
	for _, u := range root.SelectElements("url") {
		locs = append(locs, u.SelectElement("loc").Text())
	}
	require.Equal(t, []string{
		"https://games.example.com/gang-games/",
		"https://games.example.com/gang-games/wordle/",
	}, locs)
}

func TestSitemapHandler(t *testing.T) {
	h := SitemapHandler(defaultTable(t), "https://games.example.com", func(r *http.Request, err error) {
		t.Errorf("unexpected error: %v", err)
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/xml; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), "<loc>https://games.example.com/gang-games/wordle/</loc>")
}

func TestSitemapHandler_Error(t *testing.T) {
	var gotErr error
	h := SitemapHandler(defaultTable(t), "games.example.com", func(r *http.Request, err error) { gotErr = err })

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "Internal Server Error\n", rr.Body.String())
	require.NotContains(t, rr.Header().Get("Content-Type"), "xml")
	require.ErrorContains(t, gotErr, `public URL "games.example.com" is not absolute`)
}

func TestWriteSitemap_RelativeURL(t *testing.T) {
	var buf bytes.Buffer
	for _, u := range []string{"", "/apps", "games.example.com", "mailto:games@example.com"} {
		require.Error(t, WriteSitemap(&buf, defaultTable(t), u), u)
	}
	require.Zero(t, buf.Len())
}
