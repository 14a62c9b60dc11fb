// Package gerrit extracts change metadata from a Gerrit change page. The
// page is an uncontrolled, versioned document built from nested custom
// elements, so every lookup is a best-effort search over the light DOM plus
// every reachable (open) shadow root, tried against an ordered list of
// candidate selectors.
package gerrit

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node wraps an html.Node in the parsed page tree.
type Node struct {
	n *html.Node
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*Node, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Node{n: n}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Tag returns the lowercase element name, or "" for non-element nodes.
func (nd *Node) Tag() string {
	if nd == nil || nd.n.Type != html.ElementNode {
		return ""
	}
	return nd.n.Data
}

// Attr returns the value of the named attribute and whether it is present.
func (nd *Node) Attr(key string) (string, bool) {
	if nd == nil || nd.n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range nd.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ShadowRoot returns the node's attached open shadow tree, or nil. Shadow
// roots appear in served HTML as declarative <template shadowrootmode="open">
// children (the pre-standard "shadowroot" attribute is also accepted).
// Closed shadow roots are unreachable and skipped.
func (nd *Node) ShadowRoot() *Node {
	if nd == nil || nd.n.Type != html.ElementNode {
		return nil
	}
	for c := nd.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "template" {
			continue
		}
		t := &Node{n: c}
		if mode, ok := t.Attr("shadowrootmode"); ok && mode == "open" {
			return t
		}
		if mode, ok := t.Attr("shadowroot"); ok && mode == "open" {
			return t
		}
	}
	return nil
}

// Text returns the concatenated text content of the node's light DOM,
// whitespace-trimmed. Script and style text is skipped, as is any template
// content (shadow or inert).
func (nd *Node) Text() string {
	if nd == nil {
		return ""
	}
	var b strings.Builder
	collectText(nd.n, &b, -1)
	return strings.TrimSpace(b.String())
}

// collectText appends text-node data under n, skipping script/style/template
// subtrees. A non-negative limit caps the collected byte count.
func collectText(n *html.Node, b *strings.Builder, limit int) {
	if limit >= 0 && b.Len() >= limit {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b, limit)
		if limit >= 0 && b.Len() >= limit {
			return
		}
	}
}

// PageText returns up to limit bytes of the document's light-DOM text. Text
// inside shadow templates is not included; ShadowTexts covers those.
func (nd *Node) PageText(limit int) string {
	if nd == nil {
		return ""
	}
	var b strings.Builder
	collectText(nd.n, &b, limit)
	s := b.String()
	if limit >= 0 && len(s) > limit {
		s = s[:limit]
	}
	return s
}

// ShadowTexts returns the text content of every open shadow root in the
// tree, in document order, recursing into nested shadow roots.
func (nd *Node) ShadowTexts() []string {
	var out []string
	nd.walkShadowAware(func(el *Node) bool {
		if root := el.ShadowRoot(); root != nil {
			if t := shadowText(root); t != "" {
				out = append(out, t)
			}
		}
		return true
	})
	return out
}

// shadowText collects the text of a shadow root including nested shadows.
// The root is the declarative <template> node itself, so its children are
// walked directly; Text and walkShadowAware both treat templates as inert.
func shadowText(root *Node) string {
	var b strings.Builder
	for c := root.n.FirstChild; c != nil; c = c.NextSibling {
		collectShadowText(c, &b)
	}
	return strings.TrimSpace(b.String())
}

// collectShadowText appends text-node data under n, descending into open
// shadow templates and skipping script, style, inert, and closed templates.
func collectShadowText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "template":
			t := &Node{n: n}
			mode, ok := t.Attr("shadowrootmode")
			if !ok {
				mode, ok = t.Attr("shadowroot")
			}
			if !ok || mode != "open" {
				return
			}
			b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectShadowText(c, b)
	}
}

// walkShadowAware visits every element under nd in document order: light DOM
// first, and for every element with an attached shadow root, the shadow tree
// as well. The visit function returns false to stop the walk.
func (nd *Node) walkShadowAware(visit func(*Node) bool) bool {
	if nd == nil {
		return true
	}
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			el := &Node{n: n}
			if !visit(el) {
				return false
			}
			if root := el.ShadowRoot(); root != nil {
				for c := root.n.FirstChild; c != nil; c = c.NextSibling {
					if !walk(c) {
						return false
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if n.Type == html.ElementNode && n.Data == "template" {
				// Template content is only reachable as a shadow root
				// through its host, never as light DOM.
				break
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	return walk(nd.n)
}

// Query returns the first element matching the selector, searching the light
// DOM and every open shadow root recursively. Returns nil when nothing
// matches.
func (nd *Node) Query(selector string) *Node {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	var found *Node
	nd.walkShadowAware(func(el *Node) bool {
		if sel.matches(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every element matching the selector, in document order,
// shadow roots included.
func (nd *Node) QueryAll(selector string) []*Node {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	var out []*Node
	nd.walkShadowAware(func(el *Node) bool {
		if sel.matches(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// QueryFirst tries an ordered list of selectors and returns the first
// element with non-empty text, together with true. Selectors earlier in the
// list correspond to newer host-page versions and win over later ones.
func (nd *Node) QueryFirst(selectors []string) (*Node, bool) {
	for _, s := range selectors {
		if el := nd.Query(s); el != nil && el.Text() != "" {
			return el, true
		}
	}
	return nil, false
}

// parent returns the element parent, crossing shadow boundaries: the parent
// of a shadow root's top-level element is the shadow host.
func (nd *Node) parent() *Node {
	p := nd.n.Parent
	for p != nil {
		if p.Type == html.ElementNode {
			if p.Data == "template" {
				// Climb out of the shadow root to its host element.
				host := p.Parent
				for host != nil && host.Type != html.ElementNode {
					host = host.Parent
				}
				if host == nil {
					return nil
				}
				return &Node{n: host}
			}
			return &Node{n: p}
		}
		p = p.Parent
	}
	return nil
}
