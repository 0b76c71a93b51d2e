// internal/dom/markup.go
package dom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// ErrNoBody is returned when an XML document has no usable content.
var ErrNoBody = errors.New("document has no body")

// Document is a DOM built from markup plus its author stylesheet.
type Document struct {
	Dom         *Dom
	Stylesheet  *parser.Stylesheet
	Diagnostics []parser.Diagnostic
}

type attr struct{ key, value string }

// markupBuilder converts elements of either markup flavour into Dom nodes.
type markupBuilder struct {
	styles []string
	diags  []parser.Diagnostic
}

var skippedElements = map[string]bool{
	"head": true, "script": true, "title": true, "meta": true, "link": true, "noscript": true, "template": true,
}

func (b *markupBuilder) element(tag string, attrs []attr) *Dom {
	tag = strings.ToLower(tag)
	var d *Dom
	switch tag {
	case "body":
		d = Body()
	case "img":
		d = Image(ImageRef{})
	case "br":
		return Text("\n")
	default:
		d = Div().WithTag(tag)
	}
	for _, a := range attrs {
		key := strings.ToLower(a.key)
		switch key {
		case "id":
			d.Root.IDs = append(d.Root.IDs, strings.Fields(a.value)...)
		case "class":
			d.Root.Classes = append(d.Root.Classes, strings.Fields(a.value)...)
		case "style":
			_, diags := d.WithInlineStyle(a.value)
			b.diags = append(b.diags, diags...)
		case "tabindex":
			n, err := strconv.Atoi(strings.TrimSpace(a.value))
			if err != nil {
				b.diags = append(b.diags, parser.Diagnostic{Context: "tabindex", Err: err})
				continue
			}
			switch {
			case n < 0:
				d.WithTabIndex(TabIndex{Kind: TabIndexNoKeyboardFocus})
			case n == 0:
				d.WithTabIndex(TabIndex{Kind: TabIndexAuto})
			default:
				d.WithTabIndex(TabIndex{Kind: TabIndexOverrideInParent, Index: uint32(n)})
			}
		case "focusable":
			d.Root.Focusable = a.value == "" || a.value == "true"
		default:
			d.WithAttribute(key, a.value)
		}
	}
	if d.Root.Type == NodeImage {
		d.Root.Image.Name = d.Root.Attributes["src"]
		d.Root.Image.Size = geom.LogicalSize{
			Width:  attrFloat(d.Root.Attributes["width"]),
			Height: attrFloat(d.Root.Attributes["height"]),
		}
	}
	return d
}

func (b *markupBuilder) text(s string) *Dom {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Text(s)
}

func (b *markupBuilder) finish(root *Dom) (*Document, error) {
	sheet := &parser.Stylesheet{}
	for _, src := range b.styles {
		s, err := parser.ParseStylesheet(src)
		if err != nil {
			b.diags = append(b.diags, parser.Diagnostic{Context: "style", Err: err})
			continue
		}
		sheet.Append(s)
	}
	b.diags = append(b.diags, sheet.Diagnostics...)
	return &Document{Dom: root, Stylesheet: sheet, Diagnostics: b.diags}, nil
}

func attrFloat(s string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// FromHTML parses an HTML document. <style> elements anywhere become the
// author stylesheet and the <body> subtree becomes the DOM.
func FromHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	b := &markupBuilder{}
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Style:
				if n.FirstChild != nil {
					b.styles = append(b.styles, n.FirstChild.Data)
				}
				return
			case atom.Body:
				if body == nil {
					body = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if body == nil {
		return nil, ErrNoBody
	}
	return b.finish(b.convertHTML(body))
}

func (b *markupBuilder) convertHTML(n *html.Node) *Dom {
	attrs := make([]attr, len(n.Attr))
	for i, a := range n.Attr {
		attrs[i] = attr{key: a.Key, value: a.Val}
	}
	d := b.element(n.Data, attrs)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if t := b.text(c.Data); t != nil {
				d.WithChild(t)
			}
		case html.ElementNode:
			if c.DataAtom == atom.Style || skippedElements[c.Data] {
				continue
			}
			d.WithChild(b.convertHTML(c))
		}
	}
	return d
}

// FromXML parses the XML UI format: an optional <head> holding <style>
// elements and a <body>. Without a <body> the root element's content is
// used.
func FromXML(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoBody
	}
	b := &markupBuilder{}
	for _, style := range root.FindElements("//style") {
		b.styles = append(b.styles, style.Text())
	}
	body := root
	if !strings.EqualFold(root.Tag, "body") {
		if found := root.FindElement("//body"); found != nil {
			body = found
		}
	}
	return b.finish(b.convertXML(body))
}

func (b *markupBuilder) convertXML(el *etree.Element) *Dom {
	attrs := make([]attr, len(el.Attr))
	for i, a := range el.Attr {
		attrs[i] = attr{key: a.Key, value: a.Value}
	}
	tag := el.Tag
	if !strings.EqualFold(tag, "body") && el.Parent() != nil && el.Parent().Parent() == nil {
		// The document element is not rendered itself when it is a wrapper such as <app> or <html>.
		tag = "body"
	}
	d := b.element(tag, attrs)
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if t := b.text(t.Data); t != nil {
				d.WithChild(t)
			}
		case *etree.Element:
			if strings.EqualFold(t.Tag, "style") || skippedElements[strings.ToLower(t.Tag)] {
				continue
			}
			d.WithChild(b.convertXML(t))
		}
	}
	return d
}
