// Package roots keeps one bridge root per mount target and exposes the
// configure, render and unmount handle applications drive it through.
package roots

import (
	"context"
	"time"

	"github.com/openfroyo/deckfiber/pkg/catalogue"
	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/host"
	"github.com/openfroyo/deckfiber/pkg/reconciler"
	"github.com/openfroyo/deckfiber/pkg/store"
	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// Reconciler is the reconciler driving the host adapter.
type Reconciler = reconciler.Reconciler[*engine.Node, *engine.ChildSet, *host.Container]

// Container is the committed tree of one root.
type Container = reconciler.Container[*engine.Node, *host.Container]

// Entry is the registered state of one mount target.
type Entry struct {
	Container *Container
	Store     *store.Store
}

// ID returns the root id.
func (e *Entry) ID() string { return e.Container.Info().ID }

func (e *Entry) lifecycle() *engine.Lifecycle { return e.Container.Info().Lifecycle }

// Registry maps mount targets to their entries. It performs no locking:
// callers serialize registry changes with renders of the same target.
type Registry struct {
	reconciler *Reconciler
	entries    map[*deck.Canvas]*Entry
	tel        *telemetry.Telemetry
	lifecycle  []engine.LifecycleOption
}

type settings struct {
	resolver      engine.Resolver
	tel           *telemetry.Telemetry
	renderTimeout time.Duration
	lifecycle     []engine.LifecycleOption
}

// Option configures a Registry.
type Option func(*settings)

// WithTelemetry instruments every root with tel.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(s *settings) {
		s.tel = tel
	}
}

// WithResolver replaces the default catalogue.
func WithResolver(r engine.Resolver) Option {
	return func(s *settings) {
		s.resolver = r
	}
}

// WithRenderTimeout discards non-discrete renders slower than d.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.renderTimeout = d
	}
}

// WithConstructor replaces deck.New for every root.
func WithConstructor(fn engine.ConstructFunc) Option {
	return func(s *settings) {
		s.lifecycle = append(s.lifecycle, engine.WithConstructor(fn))
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	s := settings{resolver: catalogue.New()}
	for _, opt := range opts {
		opt(&s)
	}

	recOpts := []reconciler.Option{reconciler.WithRenderTimeout(s.renderTimeout)}
	if s.tel != nil {
		recOpts = append(recOpts, reconciler.WithLogger(
			s.tel.Logger.NewComponentLogger("reconciler").Zerolog(),
		))
	}

	return &Registry{
		reconciler: reconciler.New[*engine.Node, *engine.ChildSet, *host.Container](host.New(s.resolver), recOpts...),
		entries:    make(map[*deck.Canvas]*Entry),
		tel:        s.tel,
		lifecycle:  s.lifecycle,
	}
}

// GetOrCreate returns the entry of target, creating it on first use.
func (r *Registry) GetOrCreate(target *deck.Canvas) *Entry {
	if e, ok := r.entries[target]; ok {
		return e
	}
	info := host.NewContainer(r.lifecycle...)
	e := &Entry{
		Container: r.reconciler.CreateContainer(info),
		Store:     info.Store,
	}
	r.entries[target] = e
	r.metrics().RootRegistered()
	return e
}

// Lookup returns the entry of target if registered.
func (r *Registry) Lookup(target *deck.Canvas) (*Entry, bool) {
	e, ok := r.entries[target]
	return e, ok
}

// Remove deletes the entry of target.
func (r *Registry) Remove(target *deck.Canvas) {
	e, ok := r.entries[target]
	if !ok {
		return
	}
	delete(r.entries, target)
	r.metrics().RootRemoved(e.ID())
}

// Len returns the number of registered targets.
func (r *Registry) Len() int { return len(r.entries) }

func (r *Registry) metrics() *telemetry.Metrics {
	if r.tel == nil {
		return nil
	}
	return r.tel.Metrics
}

// context attaches the registry telemetry unless ctx already carries one.
func (r *Registry) context(ctx context.Context, rootID string) context.Context {
	if r.tel != nil && telemetry.FromTelemetryContext(ctx) == nil {
		ctx = r.tel.WithContext(ctx)
	}
	return telemetry.WithRootContext(ctx, rootID)
}
