package reconciler

import (
	"context"
	"time"
)

// HostContext is opaque context a host threads from parents to children.
type HostContext any

// TimeoutHandle identifies a scheduled timeout.
type TimeoutHandle any

// EventPriority is the priority of the update an event triggers.
type EventPriority int

const (
	// DefaultEventPriority covers updates not caused by a known event.
	DefaultEventPriority EventPriority = iota
	// DiscreteEventPriority covers clicks and key presses. Discrete updates
	// never time out.
	DiscreteEventPriority
	// ContinuousEventPriority covers pointer moves and wheel events.
	ContinuousEventPriority
)

func (p EventPriority) String() string {
	switch p {
	case DiscreteEventPriority:
		return "discrete"
	case ContinuousEventPriority:
		return "continuous"
	default:
		return "default"
	}
}

// HostConfig is the callback set a host implements. I is the host instance
// type, S the container child set and C the container.
type HostConfig[I comparable, S any, C any] interface {
	GetRootHostContext(root C) HostContext
	GetChildHostContext(parent HostContext, typ string, root C) HostContext
	ShouldSetTextContent(typ string, props Props) bool

	CreateInstance(ctx context.Context, typ string, props Props, root C, hostCtx HostContext) (I, error)
	CreateTextInstance(ctx context.Context, text string, root C, hostCtx HostContext) (I, error)
	CloneInstance(ctx context.Context, inst I, typ string, oldProps, newProps Props, keepChildren bool) (I, error)
	AppendInitialChild(parent, child I)
	FinalizeInitialChildren(inst I, typ string, props Props, root C, hostCtx HostContext) bool

	CreateContainerChildSet(root C) S
	AppendChildToContainerChildSet(set S, child I) error
	FinalizeContainerChildren(ctx context.Context, root C, set S) error

	PrepareForCommit(root C)
	ReplaceContainerChildren(ctx context.Context, root C, set S) error
	ResetAfterCommit(root C)
	DetachDeletedInstance(inst I)

	ScheduleTimeout(fn func(), d time.Duration) TimeoutHandle
	CancelTimeout(h TimeoutHandle)
	NoTimeout() TimeoutHandle
	ResolveEventPriority(eventType string) EventPriority
}
