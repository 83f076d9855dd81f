package cart

import "github.com/bft-labs/cartkeeper/pkg/log"

// Option configures optional behavior of a Cart.
type Option func(*options)

// options holds the optional configuration for a Cart instance.
type options struct {
	kv           KVStore
	logger       Logger
	eventHandler EventHandler
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithKVStore persists snapshots to kv instead of the configured backend.
// The cart does not close an injected store.
func WithKVStore(kv KVStore) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for cart events.
// Events are called synchronously from the goroutine that caused them.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the cart opens.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
