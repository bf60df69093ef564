package report

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const stylesheet = `body{font-family:sans-serif;margin:2em auto;max-width:72em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:2px 6px}
pre{background:#f6f6f6;padding:0.5em}`

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// page builds an HTML document around an already rendered body fragment.
func page(title string, body []byte) ([]byte, error) {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlNode := element(atom.Html, html.Attribute{Key: "lang", Val: "en"})
	root.AppendChild(htmlNode)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	titleNode := element(atom.Title)
	titleNode.AppendChild(text(title))
	head.AppendChild(titleNode)
	style := element(atom.Style)
	style.AppendChild(text(stylesheet))
	head.AppendChild(style)
	htmlNode.AppendChild(head)

	bodyNode := element(atom.Body)
	htmlNode.AppendChild(bodyNode)

	nodes, err := html.ParseFragment(bytes.NewReader(body), bodyNode)
	if err != nil {
		return nil, fmt.Errorf("parse report body: %w", err)
	}
	for _, n := range nodes {
		bodyNode.AppendChild(n)
	}

	var out bytes.Buffer
	if err := html.Render(&out, root); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}
