// Package adf builds Atlassian Document Format payloads. Jira Cloud comment
// bodies are ADF trees (doc → paragraphs → inline text/hardBreak nodes), not
// raw text or markdown.
package adf

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Node is a single ADF node. The same struct covers block and inline nodes;
// unused fields are omitted from JSON.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Marks   []Mark `json:"marks,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// MarshalJSON keeps the "text" field on text nodes even when the string is
// empty. The schema requires it there, and omitempty would drop it.
func (n Node) MarshalJSON() ([]byte, error) {
	type alias Node
	if n.Type == "text" && n.Text == "" {
		return json.Marshal(struct {
			alias
			Text string `json:"text"`
		}{alias: alias(n)})
	}
	return json.Marshal(alias(n))
}

// Mark annotates an inline text node (only "link" is used here).
type Mark struct {
	Type  string     `json:"type"`
	Attrs *MarkAttrs `json:"attrs,omitempty"`
}

// MarkAttrs carries mark attributes.
type MarkAttrs struct {
	Href string `json:"href,omitempty"`
}

// Document is the ADF root node.
type Document struct {
	Version int    `json:"version"`
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// paragraphSplit separates paragraphs: two or more consecutive newlines.
var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// TextToDocument converts rendered plain text into an ADF document.
// Paragraphs are separated by blank lines; single newlines inside a
// paragraph become hardBreak nodes. Every literal occurrence of linkURL is
// emitted as a link-marked text run. The result always contains at least one
// paragraph: Jira rejects an empty doc.
func TextToDocument(text, linkURL string) Document {
	var paragraphs []Node

	for _, block := range paragraphSplit.Split(text, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		paragraphs = append(paragraphs, paragraph(block, linkURL))
	}

	if len(paragraphs) == 0 {
		paragraphs = []Node{{
			Type:    "paragraph",
			Content: []Node{{Type: "text", Text: ""}},
		}}
	}

	return Document{
		Version: 1,
		Type:    "doc",
		Content: paragraphs,
	}
}

// paragraph builds one paragraph node from a block of text. Lines are joined
// with hardBreak nodes; each line is auto-linked.
func paragraph(block, linkURL string) Node {
	var inline []Node

	for i, line := range strings.Split(block, "\n") {
		if i > 0 {
			inline = append(inline, Node{Type: "hardBreak"})
		}
		inline = append(inline, lineNodes(line, linkURL)...)
	}

	return Node{Type: "paragraph", Content: inline}
}

// lineNodes splits one line into plain and link-marked text runs. All
// occurrences of linkURL are linked, left to right; surrounding text stays
// plain. A line with no occurrences yields a single text node.
func lineNodes(line, linkURL string) []Node {
	if linkURL == "" || !strings.Contains(line, linkURL) {
		return []Node{textNode(line)}
	}

	var nodes []Node
	rest := line
	for {
		idx := strings.Index(rest, linkURL)
		if idx < 0 {
			break
		}
		if idx > 0 {
			nodes = append(nodes, textNode(rest[:idx]))
		}
		nodes = append(nodes, linkNode(linkURL))
		rest = rest[idx+len(linkURL):]
	}
	if rest != "" {
		nodes = append(nodes, textNode(rest))
	}
	return nodes
}

func textNode(text string) Node {
	return Node{Type: "text", Text: text}
}

func linkNode(url string) Node {
	return Node{
		Type:  "text",
		Text:  url,
		Marks: []Mark{{Type: "link", Attrs: &MarkAttrs{Href: url}}},
	}
}
