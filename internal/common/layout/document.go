// Package layout describes report documents as a typed node tree and renders
// them to HTML.
package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNilDocument   = errors.New("layout: nil document")
	ErrUnnamedNode   = errors.New("layout: node without a name")
	ErrDuplicateName = errors.New("layout: duplicate node name")
	ErrMissingChart  = errors.New("layout: chart without options")
)

// Style is a set of CSS declarations keyed by property name.
type Style map[string]string

// CSS renders the declarations in property order.
func (s Style) CSS() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s[k])
	}
	return b.String()
}

// Merge returns a copy of s overlaid with other.
func (s Style) Merge(other Style) Style {
	out := make(Style, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Node is an element of a document. The set of node kinds is closed.
type Node interface {
	NodeName() string
	isNode()
}

// Document is the root of a layout.
type Document struct {
	Style    Style
	Children []Node
}

// Paragraph is a line of text, optionally followed by color swatches.
type Paragraph struct {
	Name     string
	Text     string
	Style    Style
	Swatches []Swatch
}

// Swatch is a colored dot with a label, used for legends.
type Swatch struct {
	Label string
	Color string
}

// HighchartsChart embeds a Highcharts Maps chart. Options is marshaled to
// JSON as the chart configuration.
type HighchartsChart struct {
	Name      string
	MinHeight string
	Style     Style
	Options   interface{}
}

// FlexContainer groups child nodes.
type FlexContainer struct {
	Name      string
	Direction string
	Style     Style
	Children  []Node
}

func (p *Paragraph) NodeName() string       { return p.Name }
func (c *HighchartsChart) NodeName() string { return c.Name }
func (f *FlexContainer) NodeName() string   { return f.Name }

func (*Paragraph) isNode()       {}
func (*HighchartsChart) isNode() {}
func (*FlexContainer) isNode()   {}

// Validate checks that every node is named, names are unique and charts carry
// options.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	seen := make(map[string]struct{})
	return validateNodes(d.Children, seen)
}

func validateNodes(nodes []Node, seen map[string]struct{}) error {
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: nil node", ErrUnnamedNode)
		}
		name := n.NodeName()
		if name == "" {
			return ErrUnnamedNode
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}

		switch v := n.(type) {
		case *HighchartsChart:
			if v.Options == nil {
				return fmt.Errorf("%w: %s", ErrMissingChart, name)
			}
		case *FlexContainer:
			if err := validateNodes(v.Children, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of nodes in the document, containers included.
func (d *Document) Count() int {
	if d == nil {
		return 0
	}
	return countNodes(d.Children)
}

func countNodes(nodes []Node) int {
	n := len(nodes)
	for _, node := range nodes {
		if f, ok := node.(*FlexContainer); ok {
			n += countNodes(f.Children)
		}
	}
	return n
}

// Find returns the node with the given name.
func (d *Document) Find(name string) (Node, bool) {
	if d == nil {
		return nil, false
	}
	return findNode(d.Children, name)
}

func findNode(nodes []Node, name string) (Node, bool) {
	for _, n := range nodes {
		if n.NodeName() == name {
			return n, true
		}
		if f, ok := n.(*FlexContainer); ok {
			if found, ok := findNode(f.Children, name); ok {
				return found, true
			}
		}
	}
	return nil, false
}
