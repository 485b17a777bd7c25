package host

import (
	"github.com/openfroyo/deckfiber/pkg/reconciler"
)

// ResolveEventPriority maps a pointer or mouse event type to an update
// priority. An empty or unknown event type gets the default priority.
func (c *Config) ResolveEventPriority(eventType string) reconciler.EventPriority {
	switch eventType {
	case "click", "contextmenu", "dblclick", "pointercancel", "pointerdown", "pointerup":
		return reconciler.DiscreteEventPriority
	case "pointermove", "pointerout", "pointerover", "pointerenter", "pointerleave", "wheel":
		return reconciler.ContinuousEventPriority
	default:
		return reconciler.DefaultEventPriority
	}
}
