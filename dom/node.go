// Package dom models the annotated HTML tree the serializer consumes.
//
// The tree itself is opaque input: nothing in this package parses HTML or
// wikitext. It only gives the rest of the module typed access to the nodes
// and the source-provenance metadata a wiki parser is expected to have
// attached to them.
package dom

// NodeType distinguishes the three node shapes the serializer cares about.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	DocumentNode
)

// Attr is a single HTML attribute in document order.
type Attr struct {
	Key string
	Val string
}

// Node is one element, text run, or comment in the annotated DOM.
//
// Text and Comment nodes only use Data (and Data holds the comment body
// without the surrounding "<!--"/"-->"). Element nodes use Tag, Attr, and
// Provenance; FirstChild/NextSibling/Parent link the tree the same way
// golang.org/x/net/html does, which keeps adapting a parsed document into
// a Node tree mechanical.
type Node struct {
	Type NodeType
	Tag  string
	Data string
	Attr []Attr

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	NextSibling *Node
	PrevSibling *Node

	Provenance *Provenance
}

// AppendChild links child as the new last child of n.
func (n *Node) AppendChild(child *Node) {
	child.Parent = n
	if n.LastChild == nil {
		n.FirstChild = child
		n.LastChild = child
		return
	}
	child.PrevSibling = n.LastChild
	n.LastChild.NextSibling = child
	n.LastChild = child
}

// GetAttr returns the value of the given attribute and whether it was present.
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr replaces or appends an attribute.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, Attr{Key: key, Val: val})
}

// IsElement reports whether n is an element with the given tag name.
func (n *Node) IsElement(tag string) bool {
	return n.Type == ElementNode && n.Tag == tag
}

// Children returns the node's children in document order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
