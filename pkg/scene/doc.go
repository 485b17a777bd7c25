// Package scene reads declarative layer trees from files.
//
// A scene document carries the deck configuration block, an optional set
// of named wrapper components and the root-level tree. Documents are read
// from YAML, JSON or CUE, validated, and turned into reconciler nodes that
// a root can render. Watcher re-reads a scene file whenever it changes.
//
//	version: v1
//	deck:
//	  initialViewState: {longitude: 4.9, latitude: 52.37, zoom: 11}
//	  controller: true
//	components:
//	  Basemap:
//	    type: tileLayer
//	    props: {id: basemap, opacity: $opacity}
//	    children:
//	      - type: Children
//	layers:
//	  - type: mapView
//	    props: {id: main}
//	    children:
//	      - type: Basemap
//	        props: {opacity: 0.8}
//	        children:
//	          - type: bitmapLayer
//
// A component's template may reference call-site props as "$name" string
// values and places its call-site children at the "Children" slot.
package scene
