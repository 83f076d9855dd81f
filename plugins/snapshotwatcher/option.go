package snapshotwatcher

import "github.com/bft-labs/cartkeeper/pkg/cart"

// WithSnapshotWatcher returns a cart Option that reloads the cart whenever
// another process rewrites its snapshot file.
//
// Usage:
//
//	c, err := cart.New(cfg,
//	    snapshotwatcher.WithSnapshotWatcher(snapshotwatcher.Config{
//	        DebounceDelay: 50 * time.Millisecond,
//	    }),
//	)
func WithSnapshotWatcher(cfg Config) cart.Option {
	return cart.WithPlugin(New(cfg))
}

// WithDefaultSnapshotWatcher enables snapshot watching with default settings.
func WithDefaultSnapshotWatcher() cart.Option {
	return WithSnapshotWatcher(DefaultConfig())
}
