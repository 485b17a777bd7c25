package engine

import (
	"errors"

	"github.com/openfroyo/deckfiber/pkg/deck"
)

// fakeResolver resolves names ending in "View" to views and everything
// else in its known set to layers.
type fakeResolver struct {
	known map[string]bool
}

func newFakeResolver(names ...string) *fakeResolver {
	r := &fakeResolver{known: make(map[string]bool)}
	for _, n := range names {
		r.known[n] = true
	}
	return r
}

func (r *fakeResolver) Resolve(typeName string) (Constructor, error) {
	if !r.known[typeName] {
		return nil, NewUnsupportedTypeError(typeName)
	}
	if len(typeName) > 4 && typeName[len(typeName)-4:] == "View" {
		return func(p deck.Props) (deck.Object, error) { return deck.NewView(typeName, p) }, nil
	}
	return func(p deck.Props) (deck.Object, error) { return deck.NewLayer(typeName, p) }, nil
}

// rejectingInstance fails every SetProps call.
type rejectingInstance struct {
	calls int
}

func (r *rejectingInstance) SetProps(...deck.PropOption) error {
	r.calls++
	return errors.New("layer id clash")
}
