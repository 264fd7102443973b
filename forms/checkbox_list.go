// Package forms holds form controls that render with golang.org/x/net/html.
package forms

import (
	"bytes"
	"html/template"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Item is one choice of a CheckboxList. When HTML is set it is used as the
// caption markup verbatim and Caption is ignored.
type Item struct {
	Value   string
	Caption string
	HTML    template.HTML
}

// Translator translates captions before they are rendered.
type Translator interface {
	Translate(message string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(string) string

func (f TranslatorFunc) Translate(message string) string { return f(message) }

// CheckboxList lets the user pick any number of items. Each item renders as
// a checkbox named "<name>[]" followed by its label and the separator, all
// wrapped in the container.
type CheckboxList struct {
	Name       string
	Caption    string
	Translator Translator

	items     []Item
	value     []string
	separator *html.Node
	container *html.Node
}

// NewCheckboxList creates a list with a <br> separator and no container element.
func NewCheckboxList(name, caption string, items ...Item) *CheckboxList {
	return &CheckboxList{
		Name:      name,
		Caption:   caption,
		items:     items,
		separator: &html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br},
		container: &html.Node{Type: html.DocumentNode},
	}
}

// SetItems replaces the items.
func (c *CheckboxList) SetItems(items ...Item) *CheckboxList {
	c.items = items
	return c
}

func (c *CheckboxList) Items() []Item {
	return c.items
}

// SetValue checks the given item values. Unknown values are kept so a later
// SetItems can still match them.
func (c *CheckboxList) SetValue(values []string) *CheckboxList {
	c.value = append([]string(nil), values...)
	return c
}

// Value returns the checked values, or nil when nothing is checked.
func (c *CheckboxList) Value() []string {
	if len(c.value) == 0 {
		return nil
	}
	return c.value
}

// LoadHTTPData reads the submitted "<name>[]" values, keeping the known
// ones in item order.
func (c *CheckboxList) LoadHTTPData(form url.Values) {
	submitted := make(map[string]bool)
	for _, v := range form[c.Name+"[]"] {
		submitted[v] = true
	}

	c.value = nil
	for _, item := range c.items {
		if submitted[item.Value] {
			c.value = append(c.value, item.Value)
		}
	}
}

// SeparatorPrototype is the node rendered after every item. Callers may
// modify it in place.
func (c *CheckboxList) SeparatorPrototype() *html.Node {
	return c.separator
}

// ContainerPrototype is the node the items are rendered into. The default
// is a bare fragment that adds no markup of its own.
func (c *CheckboxList) ContainerPrototype() *html.Node {
	return c.container
}

// Control renders every item.
func (c *CheckboxList) Control() template.HTML {
	container := cloneNode(c.container, false)
	for i, item := range c.items {
		for _, n := range c.item(i, item) {
			container.AppendChild(n)
		}
		container.AppendChild(cloneNode(c.separator, true))
	}
	return render(container)
}

// ControlItem renders the checkbox and label of a single item, without the
// separator. It returns false when no item has the given value.
func (c *CheckboxList) ControlItem(value string) (template.HTML, bool) {
	for i, item := range c.items {
		if item.Value != value {
			continue
		}
		fragment := &html.Node{Type: html.DocumentNode}
		for _, n := range c.item(i, item) {
			fragment.AppendChild(n)
		}
		return render(fragment), true
	}
	return "", false
}

// Label renders the caption of the whole list. It has no for attribute
// because no single input could be its target.
func (c *CheckboxList) Label() template.HTML {
	label := element(atom.Label)
	label.AppendChild(&html.Node{Type: html.TextNode, Data: c.translate(c.Caption)})
	return render(label)
}

// ValidateChecked reports whether at least one item is checked.
func ValidateChecked(c *CheckboxList) bool {
	return c.Value() != nil
}

func (c *CheckboxList) id(i int) string {
	return "frm-" + c.Name + "-" + strconv.Itoa(i)
}

func (c *CheckboxList) checked(value string) bool {
	for _, v := range c.value {
		if v == value {
			return true
		}
	}
	return false
}

// item builds the input and label nodes for the i-th item
func (c *CheckboxList) item(i int, item Item) []*html.Node {
	id := c.id(i)

	input := element(atom.Input,
		html.Attribute{Key: "type", Val: "checkbox"},
		html.Attribute{Key: "name", Val: c.Name + "[]"},
		html.Attribute{Key: "id", Val: id},
		html.Attribute{Key: "value", Val: item.Value},
	)
	if c.checked(item.Value) {
		input.Attr = append(input.Attr, html.Attribute{Key: "checked", Val: "checked"})
	}

	label := element(atom.Label, html.Attribute{Key: "for", Val: id})
	if item.HTML != "" {
		label.AppendChild(&html.Node{Type: html.RawNode, Data: string(item.HTML)})
	} else {
		label.AppendChild(&html.Node{Type: html.TextNode, Data: c.translate(item.Caption)})
	}

	return []*html.Node{input, label}
}

func (c *CheckboxList) translate(message string) string {
	if c.Translator == nil {
		return message
	}
	return c.Translator.Translate(message)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

// cloneNode copies n detached from any tree, with its children when deep is set.
func cloneNode(n *html.Node, deep bool) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			clone.AppendChild(cloneNode(child, true))
		}
	}
	return clone
}

// render writes n into a string. Rendering into a bytes.Buffer only fails
// on malformed trees, which this package never builds.
func render(n *html.Node) template.HTML {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
