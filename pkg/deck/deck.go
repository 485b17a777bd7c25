package deck

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrFinalized is returned by every Deck method called after Finalize.
var ErrFinalized = errors.New("deck: finalized")

// Diff describes how a SetProps call changed the layer list, keyed by id.
type Diff struct {
	// Unchanged holds ids whose object is the same instance as before.
	Unchanged []string
	// Updated holds ids present before with a different instance.
	Updated []string
	// Added holds ids not present before.
	Added []string
	// Removed holds ids no longer present.
	Removed []string
}

// Empty reports whether the diff changed nothing.
func (d Diff) Empty() bool {
	return len(d.Updated) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}

// Deck is a live rendering engine instance.
type Deck struct {
	mu        sync.Mutex
	id        string
	config    Config
	surface   *Canvas
	viewState ViewState
	views     []View
	layers    []Layer
	layerKeys []string
	lastDiff  Diff
	updates   int
	finalized bool
}

// New constructs a Deck. In interleaved mode the Deck does not own a
// surface.
func New(cfg Config) (*Deck, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.resolved()
	d := &Deck{
		id:        uuid.New().String(),
		config:    cfg,
		viewState: cfg.InitialViewState,
	}
	if !cfg.Interleaved {
		d.surface = cfg.Canvas
	}
	return d, nil
}

// ID returns the instance id.
func (d *Deck) ID() string { return d.id }

// Config returns the resolved construction config.
func (d *Deck) Config() Config { return d.config }

// Surface returns the owned surface, or nil in interleaved mode.
func (d *Deck) Surface() *Canvas { return d.surface }

type pendingProps struct {
	views     []View
	layers    []Layer
	viewState *ViewState
	setViews  bool
	setLayers bool
}

// PropOption sets one Deck prop in a SetProps call.
type PropOption func(*pendingProps)

// WithLayers replaces the layer list.
func WithLayers(layers []Layer) PropOption {
	return func(p *pendingProps) {
		p.layers = layers
		p.setLayers = true
	}
}

// WithViews replaces the view list.
func WithViews(views []View) PropOption {
	return func(p *pendingProps) {
		p.views = views
		p.setViews = true
	}
}

// WithViewState moves the camera.
func WithViewState(vs ViewState) PropOption {
	return func(p *pendingProps) {
		p.viewState = &vs
	}
}

// SetProps applies every option as one update. Either all options take
// effect or, on error, none do.
func (d *Deck) SetProps(opts ...PropOption) error {
	var p pendingProps
	for _, opt := range opts {
		opt(&p)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.finalized {
		return ErrFinalized
	}
	if p.setViews {
		if _, err := objectKeys(p.views); err != nil {
			return fmt.Errorf("views: %w", err)
		}
	}
	var keys []string
	if p.setLayers {
		var err error
		if keys, err = objectKeys(p.layers); err != nil {
			return fmt.Errorf("layers: %w", err)
		}
	}
	if p.viewState != nil {
		if err := validate.Struct(p.viewState); err != nil {
			return fmt.Errorf("invalid view state: %w", err)
		}
		d.viewState = *p.viewState
	}
	if p.setViews {
		d.views = slices.Clone(p.views)
	}
	if p.setLayers {
		d.lastDiff = diffLayers(d.layers, d.layerKeys, p.layers, keys)
		d.layers = slices.Clone(p.layers)
		d.layerKeys = keys
	}
	d.updates++
	return nil
}

// objectKeys returns the id each object is matched by across commits. An
// object built without an id prop takes its class name; further anonymous
// objects of the same class get "-1", "-2", ... in list order. Explicit ids
// must be unique.
func objectKeys[T Object](objs []T) ([]string, error) {
	keys := make([]string, len(objs))
	seen := make(map[string]struct{}, len(objs))
	anonymous := make(map[string]int)
	for i, o := range objs {
		if any(o) == nil {
			return nil, fmt.Errorf("nil object at index %d", i)
		}
		key := o.ID()
		if a, ok := any(o).(interface{ anonymousID() bool }); ok && a.anonymousID() {
			if n := anonymous[o.Class()]; n > 0 {
				key = fmt.Sprintf("%s-%d", o.Class(), n)
			}
			anonymous[o.Class()]++
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate id %q (%s)", key, o.Class())
		}
		seen[key] = struct{}{}
		keys[i] = key
	}
	return keys, nil
}

func diffLayers(prev []Layer, prevKeys []string, next []Layer, nextKeys []string) Diff {
	var diff Diff
	old := make(map[string]Layer, len(prev))
	for i, l := range prev {
		old[prevKeys[i]] = l
	}
	for i, l := range next {
		key := nextKeys[i]
		was, ok := old[key]
		switch {
		case !ok:
			diff.Added = append(diff.Added, key)
		case was == l:
			diff.Unchanged = append(diff.Unchanged, key)
		default:
			diff.Updated = append(diff.Updated, key)
		}
		delete(old, key)
	}
	for _, key := range prevKeys {
		if _, gone := old[key]; gone {
			diff.Removed = append(diff.Removed, key)
		}
	}
	return diff
}

// Layers returns the current layer list in paint order.
func (d *Deck) Layers() []Layer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.layers)
}

// Views returns the current view list.
func (d *Deck) Views() []View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.views)
}

// ViewState returns the current camera.
func (d *Deck) ViewState() ViewState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewState
}

// LastDiff returns the layer diff of the most recent SetProps call that
// carried layers.
func (d *Deck) LastDiff() Diff {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDiff
}

// Updates returns the number of successful SetProps calls.
func (d *Deck) Updates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates
}

// Finalize releases the Deck. A second call returns ErrFinalized.
func (d *Deck) Finalize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.finalized {
		return ErrFinalized
	}
	d.finalized = true
	d.views = nil
	d.layers = nil
	d.layerKeys = nil
	d.surface = nil
	return nil
}

// Finalized reports whether Finalize has been called.
func (d *Deck) Finalized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finalized
}
