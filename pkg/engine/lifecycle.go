package engine

import (
	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/store"
)

// ConstructFunc builds the engine instance from its configuration.
type ConstructFunc func(cfg deck.Config) (*deck.Deck, error)

// Lifecycle owns the single engine instance of one mount target and moves
// it through unconfigured, configured and finalized. The phase and the
// instance live in the target's store.
type Lifecycle struct {
	store     *store.Store
	construct ConstructFunc
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithConstructor replaces deck.New as the instance constructor.
func WithConstructor(fn ConstructFunc) LifecycleOption {
	return func(l *Lifecycle) {
		l.construct = fn
	}
}

// NewLifecycle creates a lifecycle over s.
func NewLifecycle(s *store.Store, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{store: s, construct: deck.New}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() store.Phase {
	return store.Select(l.store, store.SelectPhase)
}

// Configure constructs the engine instance. It may succeed once; later
// calls fail with ALREADY_CONFIGURED, or ALREADY_FINALIZED after unmount.
// The config's OnConfigure callback runs after the instance is stored.
func (l *Lifecycle) Configure(cfg deck.Config) (*deck.Deck, error) {
	switch l.Phase() {
	case store.PhaseConfigured:
		return nil, NewAlreadyConfiguredError()
	case store.PhaseFinalized:
		return nil, NewAlreadyFinalizedError("configure")
	}

	d, err := l.construct(cfg)
	if err != nil {
		return nil, NewValidationError("failed to construct engine instance", err).
			WithOperation("configure")
	}
	l.store.SetDeck(d, store.PhaseConfigured)

	if cfg.OnConfigure != nil {
		cfg.OnConfigure(d, d.Config())
	}
	return d, nil
}

// Instance returns the live engine instance for operation.
func (l *Lifecycle) Instance(operation string) (*deck.Deck, error) {
	st := l.store.State()
	switch st.Phase {
	case store.PhaseUnconfigured:
		return nil, NewNotConfiguredError(operation)
	case store.PhaseFinalized:
		return nil, NewAlreadyFinalizedError(operation)
	}
	if st.Deck == nil {
		return nil, NewPermanentError("configured root holds no engine instance", nil).
			WithCode(ErrCodeInternal).
			WithOperation(operation)
	}
	return st.Deck, nil
}

// Finalize releases the engine instance. Before configure it does nothing
// and reports false. After a previous Finalize it fails with
// ALREADY_FINALIZED.
func (l *Lifecycle) Finalize() (bool, error) {
	st := l.store.State()
	switch st.Phase {
	case store.PhaseUnconfigured:
		return false, nil
	case store.PhaseFinalized:
		return false, NewAlreadyFinalizedError("unmount")
	}

	var err error
	if st.Deck != nil {
		err = st.Deck.Finalize()
	}
	l.store.SetDeck(nil, store.PhaseFinalized)
	if err != nil {
		return true, NewPermanentError("engine finalize failed", err).
			WithCode(ErrCodeInternal).
			WithOperation("unmount")
	}
	return true, nil
}
