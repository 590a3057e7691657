package ixbrl

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(tag, class string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	n.Attr = append(n.Attr, attrs...)
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// appendText adds s to n, merging with a trailing text node
func appendText(n *html.Node, s string) {
	if s == "" {
		return
	}
	if last := n.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += s
		return
	}
	n.AppendChild(textNode(s))
}

func withText(n *html.Node, s string) *html.Node {
	appendText(n, s)
	return n
}
