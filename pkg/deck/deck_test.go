package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		InitialViewState: ViewState{Longitude: -122.4, Latitude: 37.8, Zoom: 11},
		Controller:       true,
		Canvas:           &Canvas{ID: "map", Width: 800, Height: 600},
	}
}

func mustLayer(t *testing.T, class, id string) Layer {
	t.Helper()
	l, err := NewLayer(class, Props{"id": id})
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID())
	assert.Equal(t, 800, d.Config().Width)
	require.NotNil(t, d.Surface())
	assert.Equal(t, "map", d.Surface().ID)
}

func TestNew_InterleavedHasNoSurface(t *testing.T) {
	d, err := New(Config{Interleaved: true})
	require.NoError(t, err)
	assert.Nil(t, d.Surface())
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing canvas", Config{}},
		{"latitude out of range", Config{Canvas: &Canvas{ID: "c"}, InitialViewState: ViewState{Latitude: 91}}},
		{"canvas without id", Config{Canvas: &Canvas{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewLayer_DefaultsIDToClass(t *testing.T) {
	l, err := NewLayer("ArcLayer", nil)
	require.NoError(t, err)
	assert.Equal(t, "ArcLayer", l.ID())
	assert.True(t, l.Visible())
}

func TestNewLayer_RejectsBadCommonProps(t *testing.T) {
	_, err := NewLayer("ArcLayer", Props{"opacity": 1.5})
	assert.Error(t, err)

	_, err = NewLayer("ArcLayer", Props{"visible": "yes"})
	assert.Error(t, err)

	_, err = NewLayer("ArcLayer", Props{"id": 7})
	assert.Error(t, err)
}

func TestNewLayer_CopiesProps(t *testing.T) {
	props := Props{"id": "a", "radius": 3}
	l, err := NewLayer("ScatterplotLayer", props)
	require.NoError(t, err)

	props["radius"] = 9
	assert.Equal(t, 3, l.Props()["radius"])
}

func TestSetProps_ReplacesLists(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)

	a, b := mustLayer(t, "LineLayer", "a"), mustLayer(t, "PathLayer", "b")
	v, err := NewView("MapView", Props{"id": "main"})
	require.NoError(t, err)

	require.NoError(t, d.SetProps(WithViews([]View{v}), WithLayers([]Layer{a, b})))
	assert.Equal(t, []Layer{a, b}, d.Layers())
	assert.Equal(t, []View{v}, d.Views())
	assert.Equal(t, []string{"a", "b"}, d.LastDiff().Added)

	require.NoError(t, d.SetProps(WithLayers([]Layer{b})))
	assert.Equal(t, []Layer{b}, d.Layers())
	assert.Equal(t, []string{"a"}, d.LastDiff().Removed)
	assert.Equal(t, []string{"b"}, d.LastDiff().Unchanged)
}

func TestSetProps_Idempotent(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)
	layers := []Layer{mustLayer(t, "LineLayer", "a")}

	require.NoError(t, d.SetProps(WithLayers(layers)))
	require.NoError(t, d.SetProps(WithLayers(layers)))

	assert.True(t, d.LastDiff().Empty())
	assert.Equal(t, layers, d.Layers())
	assert.Equal(t, 2, d.Updates())
}

func TestSetProps_UpdatedByID(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, d.SetProps(WithLayers([]Layer{mustLayer(t, "LineLayer", "a")})))
	require.NoError(t, d.SetProps(WithLayers([]Layer{mustLayer(t, "LineLayer", "a")})))
	assert.Equal(t, []string{"a"}, d.LastDiff().Updated)
}

func TestSetProps_DuplicateIDIsAtomic(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)
	first := []Layer{mustLayer(t, "LineLayer", "a")}
	require.NoError(t, d.SetProps(WithLayers(first)))

	v, err := NewView("MapView", nil)
	require.NoError(t, err)
	err = d.SetProps(
		WithViews([]View{v}),
		WithLayers([]Layer{mustLayer(t, "LineLayer", "x"), mustLayer(t, "ArcLayer", "x")}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Equal(t, first, d.Layers())
	assert.Empty(t, d.Views())
	assert.Equal(t, 1, d.Updates())
}

func TestSetProps_AnonymousLayersKeyedByPosition(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)

	a, err := NewLayer("ScatterplotLayer", nil)
	require.NoError(t, err)
	b, err := NewLayer("ScatterplotLayer", nil)
	require.NoError(t, err)
	require.NoError(t, d.SetProps(WithLayers([]Layer{a, b})))

	assert.Len(t, d.Layers(), 2)
	assert.Equal(t, []string{"ScatterplotLayer", "ScatterplotLayer-1"}, d.LastDiff().Added)

	require.NoError(t, d.SetProps(WithLayers([]Layer{a})))
	assert.Equal(t, []string{"ScatterplotLayer"}, d.LastDiff().Unchanged)
	assert.Equal(t, []string{"ScatterplotLayer-1"}, d.LastDiff().Removed)

	named := mustLayer(t, "ScatterplotLayer", "ScatterplotLayer")
	err = d.SetProps(WithLayers([]Layer{a, named}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestSetProps_ViewState(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, d.SetProps(WithViewState(ViewState{Zoom: 4})))
	assert.Equal(t, 4.0, d.ViewState().Zoom)

	assert.Error(t, d.SetProps(WithViewState(ViewState{Zoom: 40})))
	assert.Equal(t, 4.0, d.ViewState().Zoom)
}

func TestFinalize(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, d.Finalize())
	assert.True(t, d.Finalized())
	assert.ErrorIs(t, d.Finalize(), ErrFinalized)
	assert.ErrorIs(t, d.SetProps(WithLayers(nil)), ErrFinalized)
}
