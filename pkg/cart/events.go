package cart

import (
	"time"

	"github.com/bft-labs/cartkeeper/internal/app"
	"github.com/bft-labs/cartkeeper/internal/domain"
)

// EventHandler receives cart events. Embed BaseEventHandler to implement
// only the callbacks you need.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnCartChange(event CartChangeEvent)
	OnPersist(event PersistEvent)
	OnCorruptState(event CorruptStateEvent)
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// CartChangeEvent reports a change of the in-memory cart.
type CartChangeEvent struct {
	Op    string
	Items []LineItem
}

// PersistEvent reports the outcome of a snapshot write.
type PersistEvent struct {
	// Err is nil when the write succeeded.
	Err      error
	Attempts int
	Duration time.Duration
}

// CorruptStateEvent reports a rejected snapshot.
type CorruptStateEvent struct {
	Err *CorruptStateError
}

// BaseEventHandler implements EventHandler with no-op methods.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnCartChange(CartChangeEvent)     {}
func (BaseEventHandler) OnPersist(PersistEvent)           {}
func (BaseEventHandler) OnCorruptState(CorruptStateEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal observer interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnCartChange(op string, items []domain.LineItem) {
	if e.handler == nil {
		return
	}
	e.handler.OnCartChange(CartChangeEvent{Op: op, Items: items})
}

func (e *eventEmitterWrapper) OnPersist(err error, attempts int, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnPersist(PersistEvent{Err: err, Attempts: attempts, Duration: duration})
}

func (e *eventEmitterWrapper) OnCorruptState(err *domain.CorruptStateError) {
	if e.handler == nil {
		return
	}
	e.handler.OnCorruptState(CorruptStateEvent{Err: err})
}
