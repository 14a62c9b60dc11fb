package gerrit

import (
	"fmt"
	"strings"
)

// selector is a parsed descendant chain, e.g. "gr-change-metadata .branch a"
// holds three compound parts. The last part must match the candidate element
// and each earlier part must match some ancestor, in order.
type selector struct {
	parts []compound
}

// compound is one compound selector: optional tag plus any number of #id,
// .class, and [attr] constraints.
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

// attrMatch is an attribute constraint. op is 0 for presence, '=' for exact
// value, '*' for substring ([attr*=v]).
type attrMatch struct {
	key string
	val string
	op  byte
}

// parseSelector parses the supported selector subset: tag, #id, .class,
// [attr], [attr=v], [attr*=v], compounds thereof, and the descendant
// combinator (whitespace).
func parseSelector(s string) (*selector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	sel := &selector{parts: make([]compound, 0, len(fields))}
	for _, f := range fields {
		c, err := parseCompound(f)
		if err != nil {
			return nil, err
		}
		sel.parts = append(sel.parts, c)
	}
	return sel, nil
}

// parseCompound parses a single compound selector with no combinators.
func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	for i < len(s) {
		switch s[i] {
		case '#':
			j := tokenEnd(s, i+1)
			if j == i+1 {
				return c, fmt.Errorf("empty id in selector %q", s)
			}
			c.id = s[i+1 : j]
			i = j
		case '.':
			j := tokenEnd(s, i+1)
			if j == i+1 {
				return c, fmt.Errorf("empty class in selector %q", s)
			}
			c.classes = append(c.classes, s[i+1:j])
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unclosed attribute in selector %q", s)
			}
			am, err := parseAttr(s[i+1 : i+end])
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, am)
			i += end + 1
		default:
			if c.tag != "" || c.id != "" || len(c.classes) > 0 || len(c.attrs) > 0 {
				return c, fmt.Errorf("unexpected %q in selector %q", s[i], s)
			}
			j := tokenEnd(s, i)
			c.tag = strings.ToLower(s[i:j])
			i = j
		}
	}
	if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 {
		return c, fmt.Errorf("empty compound in selector %q", s)
	}
	return c, nil
}

// parseAttr parses the inside of an [attr] constraint.
func parseAttr(s string) (attrMatch, error) {
	if s == "" {
		return attrMatch{}, fmt.Errorf("empty attribute constraint")
	}
	if idx := strings.Index(s, "*="); idx >= 0 {
		return attrMatch{key: s[:idx], val: unquote(s[idx+2:]), op: '*'}, nil
	}
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		return attrMatch{key: s[:idx], val: unquote(s[idx+1:]), op: '='}, nil
	}
	return attrMatch{key: s}, nil
}

// unquote strips optional single or double quotes around an attribute value.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// tokenEnd returns the index after the identifier starting at i.
func tokenEnd(s string, i int) int {
	for i < len(s) {
		ch := s[i]
		if ch == '#' || ch == '.' || ch == '[' {
			return i
		}
		i++
	}
	return i
}

// matches reports whether el satisfies the full selector: the last compound
// matches el and each earlier compound matches an ancestor in order.
// Ancestry crosses shadow boundaries (a shadow host is an ancestor of its
// shadow content), matching how the candidate selectors address the page.
func (sel *selector) matches(el *Node) bool {
	last := len(sel.parts) - 1
	if !sel.parts[last].matches(el) {
		return false
	}
	anc := el.parent()
	for i := last - 1; i >= 0; i-- {
		for {
			if anc == nil {
				return false
			}
			if sel.parts[i].matches(anc) {
				break
			}
			anc = anc.parent()
		}
		anc = anc.parent()
	}
	return true
}

// matches reports whether el satisfies one compound selector.
func (c *compound) matches(el *Node) bool {
	if el == nil || el.Tag() == "" {
		return false
	}
	if c.tag != "" && el.Tag() != c.tag {
		return false
	}
	if c.id != "" {
		if id, ok := el.Attr("id"); !ok || id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		cls, _ := el.Attr("class")
		have := strings.Fields(cls)
		for _, want := range c.classes {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, am := range c.attrs {
		val, ok := el.Attr(am.key)
		if !ok {
			return false
		}
		switch am.op {
		case '=':
			if val != am.val {
				return false
			}
		case '*':
			if !strings.Contains(val, am.val) {
				return false
			}
		}
	}
	return true
}
