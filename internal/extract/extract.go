// Package extract turns a fetched HTML page into readable plain text for the
// research dossier. It prefers <main> or <article> content, falls back to
// <body>, and skips obvious boilerplate.
package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Page is the simplified representation of an extracted web page.
type Page struct {
	Title string
	Text  string
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"nav": true, "footer": true, "aside": true, "iframe": true,
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true,
	"ul": true, "ol": true, "br": true, "hr": true,
}

// FromHTML extracts the page title and readable text. Malformed input yields
// an empty Page rather than an error; the caller treats an empty snapshot as
// a missing fact source.
func FromHTML(input []byte) Page {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Page{}
	}
	content := firstElement(root, "main")
	if content == nil {
		content = firstElement(root, "article")
	}
	if content == nil {
		content = firstElement(root, "body")
	}
	var b strings.Builder
	if content != nil {
		walk(&b, content)
	}
	return Page{
		Title: strings.TrimSpace(titleOf(root)),
		Text:  tidy(b.String()),
	}
}

func titleOf(root *html.Node) string {
	head := firstElement(root, "head")
	if head == nil {
		return ""
	}
	t := firstElement(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func walk(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skipTags[name] || isConsentBanner(n) {
			return
		}
		if blockTags[name] {
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(n.Data, "\t", " "), "\r", " "))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		}
	}
}

// isConsentBanner flags cookie/consent containers by id/class markers.
func isConsentBanner(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		if strings.Contains(val, "cookie") || strings.Contains(val, "consent") || strings.Contains(val, "gdpr") {
			return true
		}
	}
	return false
}

// tidy collapses whitespace runs and repeated blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}
