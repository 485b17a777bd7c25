package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published over a root's lifetime.
const (
	EventTypeRootConfigured  = "root.configured"
	EventTypeRootUnmounted   = "root.unmounted"
	EventTypeCommitApplied   = "commit.applied"
	EventTypeCommitFailed    = "commit.failed"
	EventTypeRenderDiscarded = "render.discarded"
)

// Severity of an event.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

var (
	errPublisherStopped = errors.New("event publisher stopped")
	errBufferFull       = errors.New("event buffer full, event dropped")
)

// Event is one entry in a root's lifecycle stream. Data keys depend on Type.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	RootID    string                 `json:"root_id,omitempty"`
	CommitID  string                 `json:"commit_id,omitempty"`
	Message   string                 `json:"message"`
	Level     string                 `json:"level"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventSubscriber receives events that passed its filter.
type EventSubscriber func(event Event)

// EventFilter reports whether a subscriber wants an event. A nil filter
// accepts everything.
type EventFilter func(event Event) bool

type subscription struct {
	fn     EventSubscriber
	filter EventFilter
}

// EventPublisher fans events out to subscribers. Subscribers always see
// events in publish order; in async mode they run on a single delivery
// goroutine, otherwise on the publishing goroutine.
type EventPublisher struct {
	config EventsConfig

	mu   sync.RWMutex
	subs []subscription

	queue   chan Event
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}
}

// NewEventPublisher returns a publisher. With events disabled every method
// is a no-op.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	ep := &EventPublisher{config: cfg}
	if !cfg.Enabled || !cfg.EnableAsync {
		return ep, nil
	}
	ep.queue = make(chan Event, cfg.BufferSize)
	ep.stop = make(chan struct{})
	ep.done = make(chan struct{})
	go ep.run()
	return ep, nil
}

// Subscribe registers fn for events accepted by filter.
func (ep *EventPublisher) Subscribe(fn EventSubscriber, filter EventFilter) {
	if ep == nil {
		return
	}
	ep.mu.Lock()
	ep.subs = append(ep.subs, subscription{fn: fn, filter: filter})
	ep.mu.Unlock()
}

// Publish stamps the event and delivers it. A nil publisher drops it.
func (ep *EventPublisher) Publish(event Event) error {
	if ep == nil || !ep.config.Enabled {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if ep.queue == nil {
		ep.deliver(event)
		return nil
	}
	select {
	case <-ep.stop:
		return errPublisherStopped
	default:
	}
	select {
	case ep.queue <- event:
		return nil
	default:
		return errBufferFull
	}
}

func (ep *EventPublisher) run() {
	defer close(ep.done)
	for {
		select {
		case e := <-ep.queue:
			ep.deliver(e)
		case <-ep.stop:
			for {
				select {
				case e := <-ep.queue:
					ep.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (ep *EventPublisher) deliver(e Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()
	for _, s := range ep.subs {
		if s.filter == nil || s.filter(e) {
			s.fn(e)
		}
	}
}

// Shutdown stops accepting events and waits until queued ones are
// delivered or ctx ends.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if ep == nil || ep.queue == nil {
		return nil
	}
	ep.stopped.Do(func() { close(ep.stop) })
	select {
	case <-ep.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown: %w", ctx.Err())
	}
}

// PublishRootConfigured announces that a root bound an engine to target.
func (ep *EventPublisher) PublishRootConfigured(rootID, target, deckID string) error {
	return ep.Publish(Event{
		Type:    EventTypeRootConfigured,
		Source:  "roots",
		RootID:  rootID,
		Message: fmt.Sprintf("Root %s configured on %s", rootID, target),
		Level:   EventLevelInfo,
		Data:    map[string]interface{}{"target": target, "deck_id": deckID},
	})
}

// PublishRootUnmounted announces that a root finalized its engine.
func (ep *EventPublisher) PublishRootUnmounted(rootID string, commits int) error {
	return ep.Publish(Event{
		Type:    EventTypeRootUnmounted,
		Source:  "roots",
		RootID:  rootID,
		Message: fmt.Sprintf("Root %s unmounted after %d commits", rootID, commits),
		Level:   EventLevelInfo,
		Data:    map[string]interface{}{"commits": commits},
	})
}

// PublishCommitApplied carries the applied view and layer ids in order.
func (ep *EventPublisher) PublishCommitApplied(rootID, commitID string, views, layers []string, duration time.Duration) error {
	return ep.Publish(Event{
		Type:     EventTypeCommitApplied,
		Source:   "host",
		RootID:   rootID,
		CommitID: commitID,
		Message:  fmt.Sprintf("Commit %s applied %d views and %d layers", commitID, len(views), len(layers)),
		Level:    EventLevelInfo,
		Data: map[string]interface{}{
			"views":    views,
			"layers":   layers,
			"duration": duration.Seconds(),
		},
	})
}

func (ep *EventPublisher) PublishCommitFailed(rootID, commitID, code, reason string) error {
	return ep.Publish(Event{
		Type:     EventTypeCommitFailed,
		Source:   "host",
		RootID:   rootID,
		CommitID: commitID,
		Message:  fmt.Sprintf("Commit %s failed: %s", commitID, reason),
		Level:    EventLevelError,
		Data:     map[string]interface{}{"code": code, "reason": reason},
	})
}

func (ep *EventPublisher) PublishRenderDiscarded(rootID, reason string) error {
	return ep.Publish(Event{
		Type:    EventTypeRenderDiscarded,
		Source:  "roots",
		RootID:  rootID,
		Message: fmt.Sprintf("Render of root %s discarded: %s", rootID, reason),
		Level:   EventLevelWarning,
		Data:    map[string]interface{}{"reason": reason},
	})
}

// FilterByType accepts events whose type is one of types.
func FilterByType(types ...string) EventFilter {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(e Event) bool {
		_, ok := set[e.Type]
		return ok
	}
}

// FilterByRootID accepts events of a single root.
func FilterByRootID(rootID string) EventFilter {
	return func(e Event) bool { return e.RootID == rootID }
}
