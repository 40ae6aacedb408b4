package summary

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent parses an HTML artifact and returns its visible text. Used to
// decide whether a generated artifact actually carries content before it is
// persisted.
func TextContent(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String())
}

// IsEmptyArtifact reports whether an artifact has no usable text.
func IsEmptyArtifact(htmlStr string) bool {
	return TextContent(htmlStr) == ""
}
