package core

import (
	"strconv"
	"strings"
)

// Displayable is the result of rendering a cell. It is a closed set:
// Text, Number and Node are the only implementations.
type Displayable interface {
	displayable()
}

// Text is plain display text.
type Text string

// Number is a plain numeric value shown without formatting.
type Number float64

// Node is structured display content such as a badge or a link.
// Only the textual leaves in Children reach exports.
type Node struct {
	Tag      string
	Class    string
	Href     string
	Children []Displayable
}

func (Text) displayable()   {}
func (Number) displayable() {}
func (*Node) displayable()  {}

// El builds a Node with the given tag, class and children.
func El(tag, class string, children ...Displayable) *Node {
	return &Node{Tag: tag, Class: class, Children: children}
}

// ExtractText flattens a Displayable to the text a user would read.
// Nested nodes are walked depth-first and their textual leaves concatenated.
func ExtractText(d Displayable) string {
	var b strings.Builder
	writeText(&b, d)
	return b.String()
}

func writeText(b *strings.Builder, d Displayable) {
	switch v := d.(type) {
	case nil:
	case Text:
		b.WriteString(string(v))
	case Number:
		b.WriteString(formatFloat(float64(v)))
	case *Node:
		if v == nil {
			return
		}
		for _, child := range v.Children {
			writeText(b, child)
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
