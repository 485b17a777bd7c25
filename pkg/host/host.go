// Package host adapts the engine package to the reconciler's callback
// interface.
//
// Config holds no tree state: every callback works only on the nodes,
// child sets and containers passed to it. Telemetry is read from the
// context the reconciler passes to fallible callbacks.
package host

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/reconciler"
	"github.com/openfroyo/deckfiber/pkg/store"
	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// NoTimeout is the handle returned when no timeout is scheduled.
const NoTimeout = -1

// Container is the root info of one mount target.
type Container struct {
	// ID identifies the root in logs, metrics and events.
	ID string

	// Store holds the engine instance and lifecycle phase.
	Store *store.Store

	// Lifecycle guards access to the engine instance.
	Lifecycle *engine.Lifecycle
}

// NewContainer creates a container for a new root with its own store.
func NewContainer(opts ...engine.LifecycleOption) *Container {
	s := store.New()
	return &Container{
		ID:        uuid.New().String(),
		Store:     s,
		Lifecycle: engine.NewLifecycle(s, opts...),
	}
}

// Config implements reconciler.HostConfig over engine nodes.
type Config struct {
	factory *engine.Factory
}

var _ reconciler.HostConfig[*engine.Node, *engine.ChildSet, *Container] = (*Config)(nil)

// New creates a host resolving element types through r.
func New(r engine.Resolver) *Config {
	return &Config{factory: engine.NewFactory(r)}
}

// GetRootHostContext returns no context; nodes do not depend on their
// ancestors.
func (c *Config) GetRootHostContext(*Container) reconciler.HostContext {
	return nil
}

// GetChildHostContext passes the parent context through.
func (c *Config) GetChildHostContext(parent reconciler.HostContext, _ string, _ *Container) reconciler.HostContext {
	return parent
}

// ShouldSetTextContent is always false: no element takes text content.
func (c *Config) ShouldSetTextContent(string, reconciler.Props) bool {
	return false
}

// CreateInstance builds a node for a new element.
func (c *Config) CreateInstance(ctx context.Context, typ string, props reconciler.Props, _ *Container, _ reconciler.HostContext) (*engine.Node, error) {
	return c.build(ctx, "createInstance", typ, props)
}

// CreateTextInstance rejects text children.
func (c *Config) CreateTextInstance(ctx context.Context, text string, _ *Container, _ reconciler.HostContext) (*engine.Node, error) {
	err := engine.NewUnsupportedChildError(text).WithOperation("createTextInstance")
	telemetry.RecordFailure(ctx, string(err.Class), err.Code, err)
	return nil, err
}

// CloneInstance builds a fresh node for a changed element. The old node
// is never modified. With keepChildren the old children move to the new
// node.
func (c *Config) CloneInstance(ctx context.Context, inst *engine.Node, typ string, _, newProps reconciler.Props, keepChildren bool) (*engine.Node, error) {
	n, err := c.build(ctx, "cloneInstance", typ, newProps)
	if err != nil {
		return nil, err
	}
	if keepChildren {
		for _, child := range inst.Children {
			engine.AttachChild(n, child)
		}
	}
	return n, nil
}

func (c *Config) build(ctx context.Context, callback, typ string, props reconciler.Props) (*engine.Node, error) {
	n, err := c.factory.Build(typ, deck.Props(props))
	if err != nil {
		telemetry.RecordFailure(ctx, string(engine.Class(err)), engine.Code(err), err)
		telemetry.FromContext(ctx).
			WithCallback(callback).
			WithElementType(typ).
			WithError(err).
			Debug("Element build failed")
		return nil, err
	}
	operation := "create"
	if callback == "cloneInstance" {
		operation = "clone"
	}
	telemetry.MetricsFrom(ctx).RecordInstance(n.Object.Class(), operation)
	return n, nil
}

// AppendInitialChild attaches child to parent.
func (c *Config) AppendInitialChild(parent, child *engine.Node) {
	engine.AttachChild(parent, child)
}

// FinalizeInitialChildren requests no commit-time work.
func (c *Config) FinalizeInitialChildren(*engine.Node, string, reconciler.Props, *Container, reconciler.HostContext) bool {
	return false
}

// CreateContainerChildSet begins the child set of one commit.
func (c *Config) CreateContainerChildSet(*Container) *engine.ChildSet {
	return engine.NewChildSet()
}

// AppendChildToContainerChildSet adds a root-level node.
func (c *Config) AppendChildToContainerChildSet(set *engine.ChildSet, child *engine.Node) error {
	return set.Append(child)
}

// FinalizeContainerChildren seals the child set. The engine instance is
// not touched until ReplaceContainerChildren, so a render discarded after
// this point leaves it unchanged.
func (c *Config) FinalizeContainerChildren(ctx context.Context, root *Container, set *engine.ChildSet) error {
	set.Seal()
	telemetry.FromContext(ctx).
		WithCallback("finalizeContainerChildren").
		WithRootID(root.ID).
		WithField("roots", set.Len()).
		Debug("Child set sealed")
	return nil
}

// PrepareForCommit has nothing to save.
func (c *Config) PrepareForCommit(*Container) {}

// ReplaceContainerChildren flattens and classifies the child set and
// applies both lists to the root's engine instance in one update.
func (c *Config) ReplaceContainerChildren(ctx context.Context, root *Container, set *engine.ChildSet) error {
	commitID := uuid.New().String()
	timer := telemetry.NewTimer()

	op := telemetry.StartOperation(ctx, "root.commit",
		telemetry.AttrRootID.String(root.ID),
		telemetry.AttrCommitID.String(commitID),
	)
	logger := op.Logger.WithCallback("replaceContainerChildren").WithRootID(root.ID).WithCommitID(commitID)

	err := c.commit(root, set, func(lists engine.Lists) {
		views, layers := lists.IDs()
		duration := timer.Duration()
		telemetry.SetAttributes(op.Span,
			telemetry.AttrViewCount.Int(len(views)),
			telemetry.AttrLayerCount.Int(len(layers)),
		)
		telemetry.MetricsFrom(ctx).RecordCommit(root.ID, "success", duration, len(views), len(layers))
		_ = telemetry.EventsFrom(ctx).PublishCommitApplied(root.ID, commitID, views, layers, duration)
		logger.WithFields(map[string]interface{}{
			"views":  len(views),
			"layers": len(layers),
		}).Debug("Commit applied")
	})
	if err != nil {
		telemetry.MetricsFrom(ctx).RecordCommit(root.ID, "failure", timer.Duration(), 0, 0)
		telemetry.RecordFailure(op.Ctx, string(engine.Class(err)), engine.Code(err), err)
		_ = telemetry.EventsFrom(ctx).PublishCommitFailed(root.ID, commitID, engine.Code(err), err.Error())
		logger.WithError(err).Warn("Commit failed")
	}
	op.End(err)
	return err
}

func (c *Config) commit(root *Container, set *engine.ChildSet, applied func(engine.Lists)) error {
	inst, err := root.Lifecycle.Instance("commit")
	if err != nil {
		return err
	}
	lists, err := engine.Commit(inst, set)
	if err != nil {
		return err
	}
	applied(lists)
	return nil
}

// ResetAfterCommit has nothing to restore.
func (c *Config) ResetAfterCommit(*Container) {}

// DetachDeletedInstance does nothing: engine objects hold no resources of
// their own and are released with their node.
func (c *Config) DetachDeletedInstance(*engine.Node) {}

// ScheduleTimeout runs fn after d.
func (c *Config) ScheduleTimeout(fn func(), d time.Duration) reconciler.TimeoutHandle {
	return time.AfterFunc(d, fn)
}

// CancelTimeout stops a timeout returned by ScheduleTimeout.
func (c *Config) CancelTimeout(h reconciler.TimeoutHandle) {
	if t, ok := h.(*time.Timer); ok {
		t.Stop()
	}
}

// NoTimeout returns the NoTimeout handle.
func (c *Config) NoTimeout() reconciler.TimeoutHandle {
	return NoTimeout
}
