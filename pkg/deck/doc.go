// Package deck is the in-process rendering engine driven by the bridge.
//
// A Deck owns one drawing surface (or borrows one in interleaved mode) and
// holds the current ordered lists of views and layers. Views and layers are
// immutable objects built from a property bag; callers never patch them in
// place; a change produces a new object with the same id.
//
// The only mutation entry point is SetProps, which replaces the view and
// layer lists in a single step. SetProps matches layers by id against the
// previous commit and records the outcome in a Diff, so repeated commits of
// unchanged objects are cheap to detect.
//
//	d, err := deck.New(deck.Config{Canvas: &deck.Canvas{ID: "map"}})
//	if err != nil {
//	    return err
//	}
//	scatter, _ := deck.NewLayer("ScatterplotLayer", deck.Props{"id": "points"})
//	err = d.SetProps(deck.WithLayers([]deck.Layer{scatter}))
package deck
