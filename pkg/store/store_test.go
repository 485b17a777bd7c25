package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/deckfiber/pkg/deck"
)

func TestStore_SetDeckNotifiesSubscribers(t *testing.T) {
	s := New()
	assert.Equal(t, PhaseUnconfigured, Select(s, SelectPhase))
	assert.Nil(t, Select(s, SelectDeck))

	d, err := deck.New(deck.Config{Interleaved: true})
	require.NoError(t, err)

	var calls []Phase
	unsubscribe := s.Subscribe(func(next, prev State) {
		calls = append(calls, prev.Phase, next.Phase)
	})

	s.SetDeck(d, PhaseConfigured)
	assert.Same(t, d, Select(s, SelectDeck))
	assert.Equal(t, []Phase{PhaseUnconfigured, PhaseConfigured}, calls)

	unsubscribe()
	s.SetDeck(nil, PhaseFinalized)
	assert.Len(t, calls, 2)
	assert.Equal(t, "finalized", Select(s, SelectPhase).String())
}

func TestStore_ListenersRunInSubscriptionOrder(t *testing.T) {
	s := New()

	var order []int
	unsubs := make([]func(), 0, 8)
	for i := range 8 {
		unsubs = append(unsubs, s.Subscribe(func(State, State) { order = append(order, i) }))
	}

	for range 3 {
		order = order[:0]
		s.SetDeck(nil, PhaseConfigured)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
	}

	unsubs[3]()
	order = order[:0]
	s.SetDeck(nil, PhaseFinalized)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 7}, order)
}
