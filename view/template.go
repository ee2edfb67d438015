package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	attrIf  = "g-if"
	attrFor = "g-for"
)

// Template is a view parsed from HTML source. Text nodes and attribute values may contain
// ${expr} placeholders, elements may carry g-if and g-for directives.
type Template struct {
	name string

	// doc is the root of the parsed source. It is never modified after parsing.
	doc *html.Node

	// progs holds compiled expressions of the nodes that need evaluation.
	progs map[*html.Node]*nodeProg
}

type nodeProg struct {
	text  *Interpolation
	attrs map[int]*Interpolation
	cond  *vm.Program
	loop  *Loop
}

var (
	_ View  = (*Template)(nil)
	_ Named = (*Template)(nil)
)

// Parse reads an HTML template. Sources starting with a doctype or an <html> element are parsed
// as complete documents, anything else as a fragment in the <body> context.
func Parse(r io.Reader, name string) (*Template, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	doc, err := parseHTML(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	t := &Template{
		name:  name,
		doc:   doc,
		progs: map[*html.Node]*nodeProg{},
	}

	if err := t.compile(doc); err != nil {
		return nil, err
	}

	return t, nil
}

// ParseFS parses the template file at p in fsys. The template is named after the file's base
// name without extension.
func ParseFS(fsys fs.FS, p string) (*Template, error) {
	f, err := fsys.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrViewNotFound)
		}
		return nil, err
	}
	defer f.Close()

	base := path.Base(p)
	return Parse(f, strings.TrimSuffix(base, path.Ext(base)))
}

// MustParseFS is like ParseFS but panics on error. It simplifies initialization of views
// embedded into the binary.
func MustParseFS(fsys fs.FS, p string) *Template {
	t, err := ParseFS(fsys, p)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Name() string {
	return t.name
}

func parseHTML(src []byte) (*html.Node, error) {
	head := strings.ToLower(strings.TrimSpace(string(src[:min(len(src), 64)])))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		return html.Parse(bytes.NewReader(src))
	}

	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(bytes.NewReader(src), body)
	if err != nil {
		return nil, err
	}

	doc := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		doc.AppendChild(n)
	}
	return doc, nil
}

// compile walks the document and compiles every placeholder and directive, so that syntax
// errors are reported at parse time.
func (t *Template) compile(n *html.Node) error {
	var errs []error

	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && isRawText(n.Parent) {
			break
		}
		in, err := Interpol(n.Data)
		if err != nil {
			errs = append(errs, newViewError(t.name, n.Parent, err))
		} else if in != nil {
			t.prog(n).text = in
		}
	case html.ElementNode:
		for i, a := range n.Attr {
			switch a.Key {
			case attrIf:
				p, err := compileExpr(a.Val)
				if err != nil {
					errs = append(errs, newViewError(t.name, n, fmt.Errorf("%s: %w", attrIf, err)))
					continue
				}
				t.prog(n).cond = p
			case attrFor:
				lp, err := ParseLoop(a.Val)
				if err != nil {
					errs = append(errs, newViewError(t.name, n, fmt.Errorf("%s: %w", attrFor, err)))
					continue
				}
				t.prog(n).loop = lp
			default:
				in, err := Interpol(a.Val)
				if err != nil {
					errs = append(errs, newViewError(t.name, n, fmt.Errorf("attribute %s: %w", a.Key, err)))
					continue
				}
				if in != nil {
					p := t.prog(n)
					if p.attrs == nil {
						p.attrs = map[int]*Interpolation{}
					}
					p.attrs[i] = in
				}
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := t.compile(c); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t *Template) prog(n *html.Node) *nodeProg {
	p, ok := t.progs[n]
	if !ok {
		p = &nodeProg{}
		t.progs[n] = p
	}
	return p
}

// Render evaluates the template against the scope variables and returns a new document node.
func (t *Template) Render(s Scope) (any, error) {
	out := &html.Node{Type: html.DocumentNode}
	if err := t.renderChildren(out, t.doc, s); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Template) renderChildren(dst, n *html.Node, s Scope) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := t.renderNode(dst, c, s); err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) renderNode(dst, n *html.Node, s Scope) error {
	switch n.Type {
	case html.TextNode:
		return t.renderText(dst, n, s)
	case html.ElementNode:
		p := t.progs[n]
		if p != nil && p.loop != nil {
			return t.renderLoop(dst, n, p, s)
		}
		return t.renderElement(dst, n, p, s)
	case html.DoctypeNode:
		dst.AppendChild(&html.Node{
			Type: html.DoctypeNode,
			Data: n.Data,
			Attr: slices.Clone(n.Attr),
		})
	}
	// comments are not rendered
	return nil
}

func (t *Template) renderText(dst, n *html.Node, s Scope) error {
	p := t.progs[n]
	if p == nil || p.text == nil {
		dst.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data})
		return nil
	}

	v, err := p.text.Eval(s.Vars())
	if err != nil {
		return newViewError(t.name, n.Parent, err)
	}

	switch v := v.(type) {
	case nil:
	case *html.Node:
		splice(dst, v)
	default:
		dst.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprint(v)})
	}
	return nil
}

func (t *Template) renderElement(dst, n *html.Node, p *nodeProg, s Scope) error {
	vars := s.Vars()

	if p != nil && p.cond != nil {
		v, err := expr.Run(p.cond, vars)
		if err != nil {
			return newViewError(t.name, n, fmt.Errorf("%s: %w", attrIf, err))
		}
		if !isTruthy(v) {
			return nil
		}
	}

	el := &html.Node{
		Type:      html.ElementNode,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}

	for i, a := range n.Attr {
		if a.Key == attrIf || a.Key == attrFor {
			continue
		}
		var in *Interpolation
		if p != nil {
			in = p.attrs[i]
		}
		if in == nil {
			el.Attr = append(el.Attr, a)
			continue
		}
		v, err := in.Eval(vars)
		if err != nil {
			return newViewError(t.name, n, fmt.Errorf("attribute %s: %w", a.Key, err))
		}
		if v == nil || v == false {
			continue
		}
		if v == true {
			v = ""
		}
		el.Attr = append(el.Attr, html.Attribute{Namespace: a.Namespace, Key: a.Key, Val: fmt.Sprint(v)})
	}

	if err := t.renderChildren(el, n, s); err != nil {
		return err
	}

	dst.AppendChild(el)
	return nil
}

func (t *Template) renderLoop(dst, n *html.Node, p *nodeProg, s Scope) error {
	v, err := expr.Run(p.loop.prog, s.Vars())
	if err != nil {
		return newViewError(t.name, n, fmt.Errorf("%s: %w", attrFor, err))
	}
	if v == nil {
		return nil
	}

	bind := func(k, v any) map[string]any {
		if len(p.loop.Vars) == 1 {
			return map[string]any{p.loop.Vars[0]: v}
		}
		return map[string]any{p.loop.Vars[0]: k, p.loop.Vars[1]: v}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := t.renderElement(dst, n, p, s.Spawn(bind(i, rv.Index(i).Interface()))); err != nil {
				return err
			}
		}
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			if err := t.renderElement(dst, n, p, s.Spawn(bind(k.Interface(), rv.MapIndex(k).Interface()))); err != nil {
				return err
			}
		}
	default:
		return newViewError(t.name, n, fmt.Errorf("%s: cannot iterate over %T", attrFor, v))
	}
	return nil
}

// splice appends a copy of src to dst. Document nodes are unwrapped.
func splice(dst, src *html.Node) {
	if src.Type == html.DocumentNode {
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			dst.AppendChild(Clone(c))
		}
		return
	}
	dst.AppendChild(Clone(src))
}

// Clone returns a deep copy of n detached from its parent and siblings.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

func isRawText(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style)
}

func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
