// Package catalogue maps element type names to engine object constructors.
//
// Element names are lowerCamel ("scatterplotLayer"); they are normalized to
// the engine class name ("ScatterplotLayer") and looked up in a closed
// table of kinds. Unknown names fail with an UNSUPPORTED_TYPE error.
package catalogue

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
)

// Factory props keys of the layerFactory element.
const (
	FactoryLayerKey = "layer"
	FactoryPropsKey = "props"
)

// LayerConstructor is the explicit constructor a layerFactory element
// carries under FactoryLayerKey.
type LayerConstructor func(props deck.Props) (deck.Layer, error)

// Entry describes one catalogue entry.
type Entry struct {
	Kind Kind
	// Element is the declarative type name, for example "scatterplotLayer".
	Element string
	// Class is the engine class name, for example "ScatterplotLayer".
	Class string
}

// Catalogue is a read-only lookup table from class name to kind.
type Catalogue struct {
	byClass map[string]Kind
}

// New returns the catalogue of every supported kind.
func New() *Catalogue {
	c := &Catalogue{byClass: make(map[string]Kind, kindCount)}
	for _, k := range Kinds() {
		c.byClass[k.String()] = k
	}
	return c
}

// ToPascal upper-cases the first rune of name.
func ToPascal(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// ToCamel lower-cases the first rune of name.
func ToCamel(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// Lookup returns the kind of typeName.
func (c *Catalogue) Lookup(typeName string) (Kind, error) {
	if typeName == "" {
		return KindUnknown, engine.NewUnsupportedTypeError(typeName)
	}
	k, ok := c.byClass[ToPascal(typeName)]
	if !ok {
		return KindUnknown, engine.NewUnsupportedTypeError(typeName)
	}
	return k, nil
}

// Resolve implements engine.Resolver.
func (c *Catalogue) Resolve(typeName string) (engine.Constructor, error) {
	k, err := c.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return constructorFor(k), nil
}

// Entries lists every entry in kind order.
func (c *Catalogue) Entries() []Entry {
	kinds := Kinds()
	out := make([]Entry, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Entry{Kind: k, Element: ToCamel(k.String()), Class: k.String()})
	}
	return out
}

func constructorFor(k Kind) engine.Constructor {
	class := k.String()
	switch {
	case k == KindLayerFactory:
		return buildFromFactory
	case k.IsView():
		return func(props deck.Props) (deck.Object, error) {
			return deck.NewView(class, props)
		}
	default:
		return func(props deck.Props) (deck.Object, error) {
			return deck.NewLayer(class, props)
		}
	}
}

// buildFromFactory calls the constructor under "layer" with the bag under
// "props".
func buildFromFactory(props deck.Props) (deck.Object, error) {
	ctor, ok := props[FactoryLayerKey].(LayerConstructor)
	if !ok {
		if fn, isFunc := props[FactoryLayerKey].(func(deck.Props) (deck.Layer, error)); isFunc {
			ctor = fn
		} else {
			return nil, engine.NewValidationError(
				fmt.Sprintf("layerFactory requires a %q constructor", FactoryLayerKey), nil,
			).WithResource(KindLayerFactory.String())
		}
	}

	var inner deck.Props
	switch p := props[FactoryPropsKey].(type) {
	case nil:
	case deck.Props:
		inner = p
	case map[string]any:
		inner = deck.Props(p)
	default:
		return nil, engine.NewValidationError(
			fmt.Sprintf("layerFactory %q must be a property bag, got %T", FactoryPropsKey, p), nil,
		).WithResource(KindLayerFactory.String())
	}

	layer, err := ctor(inner)
	if err != nil {
		return nil, err
	}
	return layer, nil
}
