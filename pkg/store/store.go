// Package store holds the per-mount-target state: the live Deck and the
// lifecycle phase it is in. Readers use selectors and may subscribe to
// changes.
package store

import (
	"slices"
	"sync"

	"github.com/openfroyo/deckfiber/pkg/deck"
)

// Phase is the lifecycle phase of a mount target's engine instance.
type Phase int

const (
	// PhaseUnconfigured means no Deck has been constructed yet.
	PhaseUnconfigured Phase = iota
	// PhaseConfigured means a live Deck is held.
	PhaseConfigured
	// PhaseFinalized is terminal; the Deck has been released.
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseConfigured:
		return "configured"
	case PhaseFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// State is a snapshot of the store.
type State struct {
	Deck  *deck.Deck
	Phase Phase
}

// Listener receives the new and previous state after every change.
type Listener func(next, prev State)

type subscription struct {
	id int
	fn Listener
}

// Store is a small observable state container. Listeners run in
// subscription order.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []subscription
	nextID    int
}

// New returns a store in the unconfigured phase.
func New() *Store {
	return &Store{}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetDeck stores the engine instance and moves to phase.
func (s *Store) SetDeck(d *deck.Deck, phase Phase) {
	s.set(State{Deck: d, Phase: phase})
}

func (s *Store) set(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(next, prev)
	}
}

// Subscribe registers fn and returns a function removing it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l subscription) bool { return l.id == id })
		s.mu.Unlock()
	}
}

// Selector derives a value from a state snapshot.
type Selector[T any] func(State) T

// Select applies sel to the current state.
func Select[T any](s *Store, sel Selector[T]) T {
	return sel(s.State())
}

// SelectDeck selects the live Deck, nil when none is held.
func SelectDeck(s State) *deck.Deck { return s.Deck }

// SelectPhase selects the lifecycle phase.
func SelectPhase(s State) Phase { return s.Phase }
