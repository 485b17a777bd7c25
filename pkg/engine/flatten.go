package engine

import (
	"github.com/openfroyo/deckfiber/pkg/deck"
)

// Flatten walks every root-level node in order, depth first, emitting each
// node's object before its descendants.
func Flatten(set *ChildSet) []deck.Object {
	if set == nil {
		return nil
	}
	out := make([]deck.Object, 0, set.Len())
	for _, n := range set.Nodes() {
		out = flattenNode(out, n)
	}
	return out
}

func flattenNode(out []deck.Object, n *Node) []deck.Object {
	out = append(out, n.Object)
	for _, c := range n.Children {
		out = flattenNode(out, c)
	}
	return out
}

// Classify partitions objects into views and layers, keeping relative
// order within each list. Objects that are neither are ignored; the
// catalogue only produces views and layers.
func Classify(objects []deck.Object) Lists {
	var lists Lists
	for _, o := range objects {
		switch v := o.(type) {
		case deck.View:
			lists.Views = append(lists.Views, v)
		case deck.Layer:
			lists.Layers = append(lists.Layers, v)
		}
	}
	return lists
}
