package app

import (
	"sync"

	"github.com/bft-labs/cartkeeper/internal/domain"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// State represents the lifecycle state of a cart.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateActive
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateLoading:
		return "Loading"
	case StateActive:
		return "Active"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Lifecycle manages the state machine guarding cart access.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	logger       log.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager in StateUninitialized.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateUninitialized,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	// Validate transition
	switch oldState {
	case StateUninitialized:
		if newState != StateLoading {
			l.mu.Unlock()
			return domain.ErrNotInitialized
		}
	case StateLoading:
		if newState != StateActive && newState != StateUninitialized {
			l.mu.Unlock()
			return domain.ErrAlreadyOpen
		}
	case StateActive:
		if newState != StateClosed {
			l.mu.Unlock()
			return domain.ErrAlreadyOpen
		}
	case StateClosed:
		l.mu.Unlock()
		return domain.ErrNotInitialized
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// Require returns ErrNotInitialized unless the cart is active.
func (l *Lifecycle) Require() error {
	if l.State() != StateActive {
		return domain.ErrNotInitialized
	}
	return nil
}

// CanOpen returns true if Open() can be called.
func (l *Lifecycle) CanOpen() bool {
	return l.State() == StateUninitialized
}
