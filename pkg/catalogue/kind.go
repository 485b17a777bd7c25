package catalogue

// Kind is one supported element kind.
type Kind int

const (
	KindUnknown Kind = iota

	// Views.
	KindMapView
	KindOrthographicView
	KindOrbitView
	KindFirstPersonView
	KindGlobeView

	// Core layers.
	KindArcLayer
	KindBitmapLayer
	KindIconLayer
	KindLineLayer
	KindPointCloudLayer
	KindScatterplotLayer
	KindColumnLayer
	KindGridCellLayer
	KindPathLayer
	KindPolygonLayer
	KindGeoJSONLayer
	KindTextLayer
	KindSolidPolygonLayer

	// Geo layers.
	KindS2Layer
	KindQuadkeyLayer
	KindTileLayer
	KindTripsLayer
	KindH3ClusterLayer
	KindH3HexagonLayer
	KindTile3DLayer
	KindTerrainLayer
	KindMVTLayer
	KindGeohashLayer

	// Mesh layers.
	KindScenegraphLayer
	KindSimpleMeshLayer

	// KindLayerFactory defers to an explicit constructor passed in props.
	KindLayerFactory

	kindCount
)

// classNames holds the engine class name of every kind, indexed by Kind.
var classNames = [kindCount]string{
	KindUnknown:           "",
	KindMapView:           "MapView",
	KindOrthographicView:  "OrthographicView",
	KindOrbitView:         "OrbitView",
	KindFirstPersonView:   "FirstPersonView",
	KindGlobeView:         "GlobeView",
	KindArcLayer:          "ArcLayer",
	KindBitmapLayer:       "BitmapLayer",
	KindIconLayer:         "IconLayer",
	KindLineLayer:         "LineLayer",
	KindPointCloudLayer:   "PointCloudLayer",
	KindScatterplotLayer:  "ScatterplotLayer",
	KindColumnLayer:       "ColumnLayer",
	KindGridCellLayer:     "GridCellLayer",
	KindPathLayer:         "PathLayer",
	KindPolygonLayer:      "PolygonLayer",
	KindGeoJSONLayer:      "GeoJsonLayer",
	KindTextLayer:         "TextLayer",
	KindSolidPolygonLayer: "SolidPolygonLayer",
	KindS2Layer:           "S2Layer",
	KindQuadkeyLayer:      "QuadkeyLayer",
	KindTileLayer:         "TileLayer",
	KindTripsLayer:        "TripsLayer",
	KindH3ClusterLayer:    "H3ClusterLayer",
	KindH3HexagonLayer:    "H3HexagonLayer",
	KindTile3DLayer:       "Tile3DLayer",
	KindTerrainLayer:      "TerrainLayer",
	KindMVTLayer:          "MVTLayer",
	KindGeohashLayer:      "GeohashLayer",
	KindScenegraphLayer:   "ScenegraphLayer",
	KindSimpleMeshLayer:   "SimpleMeshLayer",
	KindLayerFactory:      "LayerFactory",
}

// String returns the engine class name.
func (k Kind) String() string {
	if k <= KindUnknown || k >= kindCount {
		return "Unknown"
	}
	return classNames[k]
}

// IsView reports whether k builds a view.
func (k Kind) IsView() bool {
	return k >= KindMapView && k <= KindGlobeView
}

// Module returns the layer package a kind belongs to.
func (k Kind) Module() string {
	switch {
	case k.IsView():
		return "core"
	case k >= KindArcLayer && k <= KindSolidPolygonLayer:
		return "layers"
	case k >= KindS2Layer && k <= KindGeohashLayer:
		return "geo-layers"
	case k >= KindScenegraphLayer && k <= KindSimpleMeshLayer:
		return "mesh-layers"
	case k == KindLayerFactory:
		return "factory"
	}
	return ""
}

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
