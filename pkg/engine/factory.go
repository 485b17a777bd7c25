package engine

import (
	"errors"

	"github.com/openfroyo/deckfiber/pkg/deck"
)

// Constructor builds one engine object from a property bag.
type Constructor func(props deck.Props) (deck.Object, error)

// Resolver maps an element type name to its constructor. Unknown names
// fail with an UNSUPPORTED_TYPE error.
type Resolver interface {
	Resolve(typeName string) (Constructor, error)
}

// Factory builds nodes. It holds no tree state and is safe to share.
type Factory struct {
	resolver Resolver
}

// NewFactory creates a factory resolving types through r.
func NewFactory(r Resolver) *Factory {
	return &Factory{resolver: r}
}

// Build resolves typeName, constructs the engine object and wraps it in a
// childless node. Updates go through Build too: a changed element always
// gets a new object.
func (f *Factory) Build(typeName string, props deck.Props) (*Node, error) {
	ctor, err := f.resolver.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	obj, err := ctor(props)
	if err != nil {
		var engineErr *EngineError
		if errors.As(err, &engineErr) {
			return nil, err
		}
		return nil, NewValidationError("invalid element props", err).
			WithResource(typeName).
			WithOperation("build")
	}
	if obj == nil {
		return nil, NewPermanentError("constructor returned no object", nil).
			WithCode(ErrCodeInternal).
			WithResource(typeName)
	}
	return &Node{Object: obj, Type: typeName}, nil
}
