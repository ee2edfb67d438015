package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func renderString(t *testing.T, src string, vars map[string]any) string {
	t.Helper()

	tpl, err := Parse(strings.NewReader(src), "test")
	require.NoError(t, err)

	rr, err := tpl.Render(NewScope(vars))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, rr.(*html.Node)))
	return buf.String()
}

func TestTemplate_Render(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars map[string]any
		want string
	}{
		{
			name: "plain",
			src:  "<h1>Hello</h1>",
			want: "<h1>Hello</h1>",
		},
		{
			name: "text interpolation",
			src:  "<h1>Hello, ${name}!</h1>",
			vars: map[string]any{"name": "gang"},
			want: "<h1>Hello, gang!</h1>",
		},
		{
			name: "text is escaped",
			src:  "<p>${text}</p>",
			vars: map[string]any{"text": "<b>"},
			want: "<p>&lt;b&gt;</p>",
		},
		{
			name: "attribute interpolation",
			src:  `<a href="${paths.WordleGame}" class="link">play</a>`,
			vars: map[string]any{"paths": map[string]string{"WordleGame": "/gang-games/wordle/"}},
			want: `<a href="/gang-games/wordle/" class="link">play</a>`,
		},
		{
			name: "false attribute is omitted",
			src:  `<button disabled="${locked}">go</button>`,
			vars: map[string]any{"locked": false},
			want: `<button>go</button>`,
		},
		{
			name: "true attribute is empty",
			src:  `<button disabled="${locked}">go</button>`,
			vars: map[string]any{"locked": true},
			want: `<button disabled="">go</button>`,
		},
		{
			name: "if true",
			src:  `<p g-if="show">shown</p>`,
			vars: map[string]any{"show": true},
			want: `<p>shown</p>`,
		},
		{
			name: "if false",
			src:  `<p g-if="show">shown</p><p>always</p>`,
			vars: map[string]any{"show": false},
			want: `<p>always</p>`,
		},
		{
			name: "if undefined",
			src:  `<p g-if="suggestion">maybe</p>`,
			want: ``,
		},
		{
			name: "for over slice",
			src:  `<ul><li g-for="x in items">${x}</li></ul>`,
			vars: map[string]any{"items": []string{"a", "b"}},
			want: `<ul><li>a</li><li>b</li></ul>`,
		},
		{
			name: "for with index",
			src:  `<ul><li g-for="i, x in items" data-i="${i}">${x}</li></ul>`,
			vars: map[string]any{"items": []string{"a", "b"}},
			want: `<ul><li data-i="0">a</li><li data-i="1">b</li></ul>`,
		},
		{
			name: "for over range",
			src:  `<div g-for="row in 1..2"><span g-for="col in 1..3">${row}${col}</span></div>`,
			want: `<div><span>11</span><span>12</span><span>13</span></div><div><span>21</span><span>22</span><span>23</span></div>`,
		},
		{
			name: "for over map is sorted",
			src:  `<i g-for="k, v in m">${k}=${v}</i>`,
			vars: map[string]any{"m": map[string]int{"b": 2, "a": 1}},
			want: `<i>a=1</i><i>b=2</i>`,
		},
		{
			name: "for with if",
			src:  `<i g-for="x in 1..4" g-if="x % 2 == 0">${x}</i>`,
			want: `<i>2</i><i>4</i>`,
		},
		{
			name: "loop variable does not leak",
			src:  `<i g-for="x in 1..1">${x}</i><b>${x}</b>`,
			vars: map[string]any{"x": "outer"},
			want: `<i>1</i><b>outer</b>`,
		},
		{
			name: "comments are dropped",
			src:  `<p>a<!-- note -->b</p>`,
			want: `<p>ab</p>`,
		},
		{
			name: "script is not interpolated",
			src:  "<script>const s = `${x}`;</script>",
			vars: map[string]any{"x": "nope"},
			want: "<script>const s = `${x}`;</script>",
		},
		{
			name: "document",
			src:  `<!DOCTYPE html><html><head><title>${title}</title></head><body></body></html>`,
			vars: map[string]any{"title": "Hub"},
			want: `<!DOCTYPE html><html><head><title>Hub</title></head><body></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderString(t, tt.src, tt.vars)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplate_SpliceNode(t *testing.T) {
	content, err := Parse(strings.NewReader(`<h1>Wordle</h1><p>board</p>`), "content")
	require.NoError(t, err)
	node, err := content.Render(NewScope(nil))
	require.NoError(t, err)

	got := renderString(t, `<main id="app">${content}</main>`, map[string]any{"content": node})
	require.Equal(t, `<main id="app"><h1>Wordle</h1><p>board</p></main>`, got)

	// the spliced node is copied, so it can be rendered again
	got = renderString(t, `<div>${content}</div>`, map[string]any{"content": node})
	require.Equal(t, `<div><h1>Wordle</h1><p>board</p></div>`, got)
}

func TestTemplate_RenderIsRepeatable(t *testing.T) {
	tpl, err := Parse(strings.NewReader(`<p>${n}</p>`), "repeat")
	require.NoError(t, err)

	for _, n := range []int{1, 2} {
		rr, err := tpl.Render(NewScope(map[string]any{"n": n}))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, html.Render(&buf, rr.(*html.Node)))
		require.Equal(t, "<p>"+string(rune('0'+n))+"</p>", buf.String())
	}
}

func TestTemplate_ParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(`<main><ul><li g-for="in">x</li></ul><p>${oops</p></main>`), "broken")
	require.Error(t, err)

	var ve *ViewError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "broken", ve.View())
	require.Equal(t, "main/ul/li", ve.Path())
	require.Contains(t, err.Error(), "main/p")
}

func TestTemplate_RenderErrors(t *testing.T) {
	tpl, err := Parse(strings.NewReader(`<div><i g-for="x in n">${x}</i></div>`), "loop")
	require.NoError(t, err)

	_, err = tpl.Render(NewScope(map[string]any{"n": 42}))
	require.Error(t, err)

	var ve *ViewError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "div/i", ve.Path())
	require.Contains(t, err.Error(), "cannot iterate over int")
}

func TestParseFS(t *testing.T) {
	fsys := fstest.MapFS{
		"views/hub.html": {Data: []byte(`<h1>${title}</h1>`)},
	}

	tpl, err := ParseFS(fsys, "views/hub.html")
	require.NoError(t, err)
	require.Equal(t, "hub", tpl.Name())

	_, err = ParseFS(fsys, "views/missing.html")
	require.ErrorIs(t, err, ErrViewNotFound)
}

func TestScope_Spawn(t *testing.T) {
	parent := NewScope(map[string]any{"a": 1, "b": 2})
	child := parent.Spawn(map[string]any{"b": 3, "c": 4})

	require.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, child.Vars())
	require.Equal(t, map[string]any{"a": 1, "b": 2}, parent.Vars())
}
