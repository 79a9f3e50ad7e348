// Package htmlquery wraps an HTML tree behind a small query capability so that
// the CSS selectors used by a lookup stay plain data.
package htmlquery

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Query is a compiled CSS selector group.
type Query struct {
	expr  string
	group cascadia.SelectorGroup
}

// Compile parses a selector group such as "div.pseg, h2, hr.hmsep".
func Compile(expr string) (Query, error) {
	group, err := cascadia.ParseGroup(expr)
	if err != nil {
		return Query{}, fmt.Errorf("compile selector %q: %w", expr, err)
	}
	return Query{expr: expr, group: group}, nil
}

// MustCompile is like Compile but panics on an invalid selector. Only use it
// for selectors fixed at build time.
func MustCompile(expr string) Query {
	q, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the selector source.
func (q Query) String() string { return q.expr }

// Selectable is anything that can be searched with a Query. Matches are
// returned in document order.
type Selectable interface {
	Select(q Query) []Fragment
}

// Document is a parsed page. It is read-only after Parse returns.
type Document struct {
	root *html.Node
}

// Parse builds a tree from (possibly truncated) HTML text. Unclosed elements
// left behind by slicing are closed by the parser.
func Parse(text string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Select returns every node under the document matching q.
func (d *Document) Select(q Query) []Fragment {
	return selectUnder(d.root, q)
}

// Fragment is one matched element.
type Fragment struct {
	node *html.Node
}

// Select returns the descendants of f matching q. f itself is never matched.
func (f Fragment) Select(q Query) []Fragment {
	return selectUnder(f.node, q)
}

// HTML serializes the element together with its descendants.
func (f Fragment) HTML() string {
	return dom.OuterHTML(f.node)
}

func selectUnder(n *html.Node, q Query) []Fragment {
	if n == nil || q.group == nil {
		return nil
	}
	nodes := cascadia.QueryAll(n, q.group)
	out := make([]Fragment, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, Fragment{node: node})
	}
	return out
}

// Join concatenates the serialized markup of frags in order.
func Join(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.HTML())
	}
	return b.String()
}
