package engine

import (
	"github.com/openfroyo/deckfiber/pkg/deck"
)

// Applier is the engine instance surface the commit needs.
type Applier interface {
	SetProps(opts ...deck.PropOption) error
}

// Apply replaces the instance's views and layers with lists in one
// SetProps call. Rejections are returned as ENGINE_APPLY_FAILED.
func Apply(instance Applier, lists Lists) error {
	views := lists.Views
	if views == nil {
		views = []deck.View{}
	}
	layers := lists.Layers
	if layers == nil {
		layers = []deck.Layer{}
	}
	if err := instance.SetProps(deck.WithLayers(layers), deck.WithViews(views)); err != nil {
		return NewEngineApplyError(err)
	}
	return nil
}

// Commit flattens, classifies and applies set, returning the lists that
// were applied.
func Commit(instance Applier, set *ChildSet) (Lists, error) {
	lists := Classify(Flatten(set))
	if err := Apply(instance, lists); err != nil {
		return Lists{}, err
	}
	return lists, nil
}
