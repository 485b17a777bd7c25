package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/store"
)

func TestLifecycle_FinalizeBeforeConfigureIsNoop(t *testing.T) {
	l := NewLifecycle(store.New())

	finalized, err := l.Finalize()
	require.NoError(t, err)
	assert.False(t, finalized)
	assert.Equal(t, store.PhaseUnconfigured, l.Phase())
}

func TestLifecycle_ConfigureOnce(t *testing.T) {
	s := store.New()
	l := NewLifecycle(s)

	var got *deck.Deck
	cfg := deck.Config{
		Interleaved: true,
		OnConfigure: func(d *deck.Deck, _ deck.Config) { got = d },
	}
	d, err := l.Configure(cfg)
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Same(t, d, store.Select(s, store.SelectDeck))
	assert.Equal(t, store.PhaseConfigured, l.Phase())

	_, err = l.Configure(cfg)
	assert.ErrorIs(t, err, ErrAlreadyConfigured)
	assert.Same(t, d, store.Select(s, store.SelectDeck))
}

func TestLifecycle_InstanceByPhase(t *testing.T) {
	l := NewLifecycle(store.New())

	_, err := l.Instance("render")
	assert.ErrorIs(t, err, ErrNotConfigured)

	d, err := l.Configure(deck.Config{Interleaved: true})
	require.NoError(t, err)
	inst, err := l.Instance("render")
	require.NoError(t, err)
	assert.Same(t, d, inst)

	finalized, err := l.Finalize()
	require.NoError(t, err)
	assert.True(t, finalized)
	assert.True(t, d.Finalized())

	_, err = l.Instance("render")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	_, err = l.Finalize()
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	_, err = l.Configure(deck.Config{Interleaved: true})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestLifecycle_ConstructorFailure(t *testing.T) {
	l := NewLifecycle(store.New(), WithConstructor(func(deck.Config) (*deck.Deck, error) {
		return nil, errors.New("no gpu")
	}))

	_, err := l.Configure(deck.Config{Interleaved: true})
	require.Error(t, err)
	assert.Equal(t, ErrCodeValidation, Code(err))
	assert.Equal(t, store.PhaseUnconfigured, l.Phase())
}

func TestLifecycle_InvalidConfig(t *testing.T) {
	l := NewLifecycle(store.New())

	_, err := l.Configure(deck.Config{})
	require.Error(t, err)
	assert.Equal(t, store.PhaseUnconfigured, l.Phase())
}
