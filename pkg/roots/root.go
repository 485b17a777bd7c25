package roots

import (
	"context"
	"errors"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/reconciler"
	"github.com/openfroyo/deckfiber/pkg/store"
	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// Root is the handle of one mount target.
type Root struct {
	registry *Registry
	target   *deck.Canvas
	entry    *Entry
}

// CreateRoot returns the handle of target. Handles for the same target
// share one entry until it is unmounted.
func (r *Registry) CreateRoot(target *deck.Canvas) *Root {
	return &Root{registry: r, target: target, entry: r.GetOrCreate(target)}
}

// ID returns the root id.
func (rt *Root) ID() string { return rt.entry.ID() }

// Store returns the root state holder.
func (rt *Root) Store() *store.Store { return rt.entry.Store }

// Phase returns the lifecycle phase.
func (rt *Root) Phase() store.Phase { return rt.entry.lifecycle().Phase() }

// Deck returns the live engine instance, or nil.
func (rt *Root) Deck() *deck.Deck { return store.Select(rt.entry.Store, store.SelectDeck) }

// Commits returns the number of committed renders.
func (rt *Root) Commits() int { return rt.entry.Container.Commits() }

// Configure constructs the engine instance. Unless the config is
// interleaved or names its own canvas, the mount target is used.
func (rt *Root) Configure(ctx context.Context, cfg deck.Config) (*deck.Deck, error) {
	ctx = rt.registry.context(ctx, rt.ID())
	if cfg.Canvas == nil && !cfg.Interleaved {
		cfg.Canvas = rt.target
	}

	op := telemetry.StartOperation(ctx, "root.configure", telemetry.AttrRootID.String(rt.ID()))
	d, err := rt.entry.lifecycle().Configure(cfg)
	if err != nil {
		rt.fail(op, err, true)
		return nil, err
	}
	op.End(nil)

	_ = telemetry.EventsFrom(ctx).PublishRootConfigured(rt.ID(), targetID(rt.target), d.ID())
	op.Logger.WithField("deck_id", d.ID()).Info("Root configured")
	return d, nil
}

// Render renders node and commits it to the engine instance. It fails with
// NOT_CONFIGURED before Configure and ALREADY_FINALIZED after Unmount. A
// render dropped before commit returns a transient RENDER_DISCARDED error.
func (rt *Root) Render(ctx context.Context, node reconciler.Node, opts ...reconciler.UpdateOption) error {
	ctx = rt.registry.context(ctx, rt.ID())
	op := telemetry.StartOperation(ctx, "root.render", telemetry.AttrRootID.String(rt.ID()))

	if _, err := rt.entry.lifecycle().Instance("render"); err != nil {
		rt.fail(op, err, true)
		return err
	}

	err := rt.update(op.Ctx, node, opts...)
	if err != nil {
		rt.fail(op, err, !isEngineError(err))
		return err
	}
	op.End(nil)
	return nil
}

func (rt *Root) update(ctx context.Context, node reconciler.Node, opts ...reconciler.UpdateOption) error {
	err := rt.registry.reconciler.UpdateContainer(ctx, node, rt.entry.Container, opts...)
	var discarded *reconciler.DiscardedError
	if errors.As(err, &discarded) {
		reason := discardReason(discarded.Cause)
		telemetry.MetricsFrom(ctx).RecordDiscardedRender(reason)
		_ = telemetry.EventsFrom(ctx).PublishRenderDiscarded(rt.ID(), reason)
		return engine.NewRenderDiscardedError(err).
			WithResource(rt.ID()).
			WithDetail("reason", reason)
	}
	return err
}

// Unmount renders an empty tree, finalizes the engine instance and removes
// the registry entry. Before Configure it does nothing. A second Unmount
// fails with ALREADY_FINALIZED.
func (rt *Root) Unmount(ctx context.Context) error {
	ctx = rt.registry.context(ctx, rt.ID())
	lc := rt.entry.lifecycle()

	switch lc.Phase() {
	case store.PhaseUnconfigured:
		return nil
	case store.PhaseFinalized:
		return engine.NewAlreadyFinalizedError("unmount")
	}

	op := telemetry.StartOperation(ctx, "root.unmount", telemetry.AttrRootID.String(rt.ID()))

	var tornDown bool
	var teardownErr error
	renderErr := rt.update(op.Ctx, nil, reconciler.WithCallback(func() {
		tornDown = true
		teardownErr = rt.teardown(op.Ctx)
	}))
	if !tornDown {
		teardownErr = rt.teardown(op.Ctx)
	}

	err := errors.Join(renderErr, teardownErr)
	if err != nil {
		rt.fail(op, err, teardownErr != nil)
		return err
	}
	op.End(nil)
	return nil
}

func (rt *Root) teardown(ctx context.Context) error {
	_, err := rt.entry.lifecycle().Finalize()
	if current, ok := rt.registry.Lookup(rt.target); ok && current == rt.entry {
		rt.registry.Remove(rt.target)
	}
	telemetry.MetricsFrom(ctx).RecordFinalization()
	_ = telemetry.EventsFrom(ctx).PublishRootUnmounted(rt.ID(), rt.Commits())
	telemetry.FromContext(ctx).Info("Root unmounted")
	return err
}

// fail ends op with err. Errors raised by host callbacks were counted
// where they happened; count is false for those.
func (rt *Root) fail(op *telemetry.InstrumentedContext, err error, count bool) {
	if count {
		telemetry.RecordFailure(op.Ctx, string(engine.Class(err)), engine.Code(err), err)
	}
	op.Logger.WithError(err).Warn("Root operation failed")
	op.End(err)
}

func isEngineError(err error) bool {
	var e *engine.EngineError
	return errors.As(err, &e)
}

func discardReason(cause error) string {
	switch {
	case errors.Is(cause, reconciler.ErrSuperseded):
		return "superseded"
	case errors.Is(cause, reconciler.ErrRenderTimeout):
		return "timeout"
	case errors.Is(cause, context.DeadlineExceeded):
		return "deadline"
	default:
		return "cancelled"
	}
}

func targetID(c *deck.Canvas) string {
	if c == nil {
		return ""
	}
	return c.ID
}
