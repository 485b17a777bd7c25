package catalogue

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
)

func TestToPascal(t *testing.T) {
	tests := map[string]string{
		"mapView":        "MapView",
		"geoJsonLayer":   "GeoJsonLayer",
		"s2Layer":        "S2Layer",
		"h3HexagonLayer": "H3HexagonLayer",
		"MapView":        "MapView",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToPascal(in), in)
	}
}

func TestResolve_EveryEntry(t *testing.T) {
	c := New()
	entries := c.Entries()
	require.Len(t, entries, 31)

	for _, e := range entries {
		t.Run(e.Element, func(t *testing.T) {
			ctor, err := c.Resolve(e.Element)
			require.NoError(t, err)
			require.NotNil(t, ctor)
			if e.Kind == KindLayerFactory {
				return
			}

			obj, err := ctor(deck.Props{"id": "x"})
			require.NoError(t, err)
			assert.Equal(t, e.Class, obj.Class())

			_, isView := obj.(deck.View)
			_, isLayer := obj.(deck.Layer)
			assert.Equal(t, e.Kind.IsView(), isView)
			assert.NotEqual(t, isView, isLayer)
		})
	}
}

func TestResolve_Unsupported(t *testing.T) {
	c := New()
	for _, name := range []string{"", "hexagonLayer", "div", "Unknown", "mapview"} {
		_, err := c.Resolve(name)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, engine.ErrUnsupportedType), name)
	}
}

func TestKind_Module(t *testing.T) {
	assert.Equal(t, "core", KindGlobeView.Module())
	assert.Equal(t, "layers", KindGeoJSONLayer.Module())
	assert.Equal(t, "geo-layers", KindMVTLayer.Module())
	assert.Equal(t, "mesh-layers", KindSimpleMeshLayer.Module())
	assert.Equal(t, "Unknown", KindUnknown.String())
	assert.False(t, KindArcLayer.IsView())
}

func TestLayerFactory(t *testing.T) {
	ctor, err := New().Resolve("layerFactory")
	require.NoError(t, err)

	var got deck.Props
	custom := LayerConstructor(func(p deck.Props) (deck.Layer, error) {
		got = p
		return deck.NewLayer("HeatmapLayer", p)
	})

	obj, err := ctor(deck.Props{
		FactoryLayerKey: custom,
		FactoryPropsKey: map[string]any{"id": "heat"},
	})
	require.NoError(t, err)
	assert.Equal(t, "HeatmapLayer", obj.Class())
	assert.Equal(t, "heat", obj.ID())
	assert.Equal(t, deck.Props{"id": "heat"}, got)
}

func TestLayerFactory_Errors(t *testing.T) {
	ctor, err := New().Resolve("layerFactory")
	require.NoError(t, err)

	_, err = ctor(deck.Props{})
	assert.Equal(t, engine.ErrCodeValidation, engine.Code(err))

	_, err = ctor(deck.Props{
		FactoryLayerKey: func(deck.Props) (deck.Layer, error) { return nil, fmt.Errorf("boom") },
	})
	assert.EqualError(t, err, "boom")

	_, err = ctor(deck.Props{
		FactoryLayerKey: func(p deck.Props) (deck.Layer, error) { return deck.NewLayer("X", p) },
		FactoryPropsKey: 42,
	})
	assert.Equal(t, engine.ErrCodeValidation, engine.Code(err))
}

func ExampleCatalogue_Resolve() {
	ctor, err := New().Resolve("scatterplotLayer")
	if err != nil {
		panic(err)
	}
	obj, _ := ctor(deck.Props{"id": "points"})
	fmt.Println(obj.Class(), obj.ID())
	// Output: ScatterplotLayer points
}
