package testsupport

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// ParseHTML parses a document or fragment. Fragments are wrapped in the
// implicit html/body elements the parser adds.
func ParseHTML(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// FindAll returns every element below root matching pred, in document order.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Find returns the first element matching pred or nil.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if found := FindAll(root, pred); len(found) > 0 {
		return found[0]
	}
	return nil
}

// ByID matches elements with the given id attribute.
func ByID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		value, ok := Attr(n, "id")
		return ok && value == id
	}
}

// ByTag matches elements by tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// ByAttr matches elements carrying key=value.
func ByAttr(key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		got, ok := Attr(n, key)
		return ok && got == value
	}
}

// MustFind fails the test when no element matches.
func MustFind(t *testing.T, root *html.Node, pred func(*html.Node) bool, what string) *html.Node {
	t.Helper()
	n := Find(root, pred)
	if n == nil {
		t.Fatalf("element not found: %s", what)
	}
	return n
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether key is present on n, regardless of its value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// Text concatenates the text content below n with surrounding whitespace
// trimmed.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(b.String())
}
