package cart

import (
	"github.com/bft-labs/cartkeeper/internal/app"
	"github.com/bft-labs/cartkeeper/internal/domain"
	"github.com/bft-labs/cartkeeper/internal/ports"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// LineItem is one product entry in the cart.
type LineItem = domain.LineItem

// ItemDescriptor describes a product to add; the cart assigns the quantity.
type ItemDescriptor = domain.ItemDescriptor

// KVStore is the string key-value store snapshots are persisted to.
type KVStore = ports.KVStore

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField is a structured logging key-value pair.
type LogField = log.Field

// CorruptStateError reports a stored snapshot that was rejected at load.
type CorruptStateError = domain.CorruptStateError

// PersistenceWriteError reports a snapshot write that failed on every attempt.
type PersistenceWriteError = domain.PersistenceWriteError

// Errors returned by Cart. Check them with errors.Is.
var (
	ErrNotInitialized   = domain.ErrNotInitialized
	ErrAlreadyOpen      = domain.ErrAlreadyOpen
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidItem      = domain.ErrInvalidItem
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrCorruptState     = domain.ErrCorruptState
	ErrPersistenceWrite = domain.ErrPersistenceWrite
)

// DefaultKey is the storage key used when Config.Key is empty.
const DefaultKey = app.DefaultKey

// Operation names carried by CartChangeEvent.
const (
	OpLoad      = app.OpLoad
	OpReload    = app.OpReload
	OpAdd       = app.OpAdd
	OpIncrement = app.OpIncrement
	OpDecrement = app.OpDecrement
	OpReset     = app.OpReset
)

// State is the lifecycle state of a Cart.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateActive
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateLoading:
		return StateLoading
	case app.StateActive:
		return StateActive
	case app.StateClosed:
		return StateClosed
	default:
		return StateUninitialized
	}
}
