// Package pagetext extracts the text a user would see from a rendered HTML document.
package pagetext

import (
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	// TagsToSkip are elements whose subtree never contributes visible text.
	TagsToSkip []string
	// SkipHidden drops elements marked with the hidden or aria-hidden="true" attributes.
	SkipHidden bool
}

var DefaultConfig = Config{
	TagsToSkip: []string{
		"script", "style", "noscript", "template", "svg", "iframe",
		"link", "meta", "head", "title",
	},
	SkipHidden: true,
}

// VisibleText returns the text content of the document body with whitespace runs
// collapsed to single spaces. Unparseable input is returned unchanged.
func VisibleText(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	root := findBodyNode(doc)
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	collectText(root, cfg, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Contains reports whether needle appears in the visible text of rawHTML.
func Contains(rawHTML, needle string) bool {
	return strings.Contains(VisibleText(rawHTML, nil), needle)
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func collectText(n *html.Node, cfg *Config, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.TagsToSkip...) {
			return
		}
		if cfg.SkipHidden && isHidden(n) {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, cfg, sb)
	}
}

func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch {
		case attr.Key == "hidden":
			return true
		case attr.Key == "aria-hidden" && attr.Val == "true":
			return true
		}
	}
	return false
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
