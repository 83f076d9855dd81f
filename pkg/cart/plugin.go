package cart

import "context"

// Plugin extends a Cart with background behavior tied to its lifecycle.
type Plugin interface {
	// Name returns a short identifier used in logs.
	Name() string

	// Initialize is called by Open after the snapshot was loaded.
	// Returning an error aborts Open.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called by Close, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// Reloader re-reads the stored snapshot into the cart.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	// Key is the storage key of the snapshot.
	Key string

	// SnapshotPath is the file holding the snapshot, or empty when the
	// store is not file based.
	SnapshotPath string

	// Cart reloads the cart from storage.
	Cart Reloader

	// Logger is the cart's logger.
	Logger Logger
}

// BasePlugin implements Plugin with no-op methods. Embed it and override
// what you need.
type BasePlugin struct {
	PluginName string
}

func (p BasePlugin) Name() string                                 { return p.PluginName }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
