package engine

import (
	"github.com/openfroyo/deckfiber/pkg/deck"
)

// Node is one built element: an engine object and its children in declared
// order. A Node has at most one parent.
type Node struct {
	// Object is the view or layer this node was built into.
	Object deck.Object

	// Type is the element type name the node was built from.
	Type string

	// Children are the nested nodes, in declaration order.
	Children []*Node
}

// AttachChild appends child to parent's children.
func AttachChild(parent, child *Node) {
	parent.Children = append(parent.Children, child)
}

// ChildSet is the ordered list of root-level nodes of one commit.
type ChildSet struct {
	nodes  []*Node
	sealed bool
}

// NewChildSet begins an empty child set.
func NewChildSet() *ChildSet {
	return &ChildSet{}
}

// Append adds a root-level node. Appending to a sealed set is an internal
// error.
func (s *ChildSet) Append(n *Node) error {
	if s.sealed {
		return NewPermanentError("child set already finalized", nil).
			WithCode(ErrCodeInternal).
			WithOperation("appendChildToContainerChildSet")
	}
	s.nodes = append(s.nodes, n)
	return nil
}

// Seal marks the set complete. Further appends fail.
func (s *ChildSet) Seal() { s.sealed = true }

// Sealed reports whether Seal was called.
func (s *ChildSet) Sealed() bool { return s.sealed }

// Nodes returns the root-level nodes.
func (s *ChildSet) Nodes() []*Node { return s.nodes }

// Len returns the number of root-level nodes.
func (s *ChildSet) Len() int { return len(s.nodes) }

// Lists are the classified outputs of one commit.
type Lists struct {
	Views  []deck.View
	Layers []deck.Layer
}

// IDs returns the ids of views and layers, in order.
func (l Lists) IDs() (views, layers []string) {
	views = make([]string, 0, len(l.Views))
	for _, v := range l.Views {
		views = append(views, v.ID())
	}
	layers = make([]string, 0, len(l.Layers))
	for _, ly := range l.Layers {
		layers = append(layers, ly.ID())
	}
	return views, layers
}
