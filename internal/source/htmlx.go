package source

import (
	"strings"

	"golang.org/x/net/html"
)

// Thin traversal helpers over x/net/html. The catalog pages are scraped,
// not served as APIs, so everything here is defensive: a missing node is
// an empty result, never an error.

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(strings.NewReader(string(body)))
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of n's subtree with single
// spaces between fragments.
func textContent(n *html.Node) string {
	var parts []string
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	})
	return strings.Join(parts, " ")
}

// findFirst returns the first element node (depth-first) matching pred.
func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && pred(n) {
			found = n
		}
	})
	return found
}

// findAll returns every element node matching pred in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
	})
	return out
}

func findByClass(root *html.Node, tag, class string) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		return (tag == "" || n.Data == tag) && hasClass(n, class)
	})
}

func findAllByClass(root *html.Node, tag, class string) []*html.Node {
	return findAll(root, func(n *html.Node) bool {
		return (tag == "" || n.Data == tag) && hasClass(n, class)
	})
}

// scriptByID returns the raw text of <script id="..."> or "".
func scriptByID(root *html.Node, id string) string {
	n := findFirst(root, func(n *html.Node) bool {
		return n.Data == "script" && attrVal(n, "id") == id
	})
	if n == nil || n.FirstChild == nil {
		return ""
	}
	return n.FirstChild.Data
}

// scriptsByType returns the raw text of every <script type="..."> block.
func scriptsByType(root *html.Node, typ string) []string {
	var out []string
	for _, n := range findAll(root, func(n *html.Node) bool {
		return n.Data == "script" && attrVal(n, "type") == typ
	}) {
		if n.FirstChild != nil {
			out = append(out, n.FirstChild.Data)
		}
	}
	return out
}

// metaContent returns the content attribute of the first <meta> whose
// property or name attribute equals key.
func metaContent(root *html.Node, key string) string {
	n := findFirst(root, func(n *html.Node) bool {
		return n.Data == "meta" && (attrVal(n, "property") == key || attrVal(n, "name") == key)
	})
	if n == nil {
		return ""
	}
	return attrVal(n, "content")
}

// stripTags renders an HTML fragment down to plain text. Goodreads ships
// descriptions with embedded markup.
func stripTags(fragment string) string {
	doc, err := parseHTML([]byte(fragment))
	if err != nil {
		return fragment
	}
	return textContent(doc)
}
