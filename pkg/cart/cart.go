package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/cartkeeper/internal/adapters/fs"
	"github.com/bft-labs/cartkeeper/internal/adapters/memory"
	"github.com/bft-labs/cartkeeper/internal/adapters/redis"
	"github.com/bft-labs/cartkeeper/internal/app"
	"github.com/bft-labs/cartkeeper/internal/ports"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// Cart is a persistent shopping cart that can be embedded in other applications.
// Use New() to create an instance, then Open() to load the stored snapshot.
// All methods are safe for concurrent use.
type Cart struct {
	config    Config
	lifecycle *app.Lifecycle
	store     *app.Store
	kv        KVStore
	logger    Logger
	plugins   []Plugin

	// closer is set when the cart created the store and must release it.
	closer io.Closer

	mu      sync.Mutex
	loadErr error
}

// New creates a new Cart with the given configuration.
// The cart is created in StateUninitialized; call Open() before use.
// Returns an error wrapping ErrInvalidConfig if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Cart, error) {
	cfg.SetDefaults()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(o.kv == nil); err != nil {
		return nil, err
	}

	kv := o.kv
	var closer io.Closer
	if kv == nil {
		var err error
		kv, closer, err = openBackend(cfg)
		if err != nil {
			return nil, err
		}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	lifecycle := app.NewLifecycle(o.logger, emitter)
	store := app.NewStore(app.StoreConfig{
		Key:   cfg.Key,
		Retry: cfg.retryPolicy(),
	}, kv, o.logger, emitter)

	return &Cart{
		config:    cfg,
		lifecycle: lifecycle,
		store:     store,
		kv:        kv,
		logger:    o.logger,
		plugins:   o.plugins,
		closer:    closer,
	}, nil
}

func openBackend(cfg Config) (ports.KVStore, io.Closer, error) {
	switch cfg.Backend {
	case BackendRedis:
		s, err := redis.Dial(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return s, s, nil
	case BackendMemory:
		return memory.NewStore(), nil, nil
	default:
		return fs.NewFileStore(cfg.DataDir), nil, nil
	}
}

// Open loads the stored snapshot and makes the cart usable.
//
// A missing snapshot yields an empty cart. A malformed snapshot also yields an
// empty cart; Open succeeds and LoadError reports the problem. A storage read
// that keeps failing returns the error and leaves the cart uninitialized, so
// Open may be called again.
func (c *Cart) Open(ctx context.Context) error {
	if c == nil {
		return ErrNotInitialized
	}
	if !c.lifecycle.CanOpen() {
		if c.Status() == StateClosed {
			return ErrNotInitialized
		}
		return ErrAlreadyOpen
	}
	if err := c.lifecycle.TransitionTo(app.StateLoading, "Open() called"); err != nil {
		return err
	}

	err := c.store.Load(ctx)
	var cse *CorruptStateError
	if err != nil && !errors.As(err, &cse) {
		c.logger.Error("cart load failed", log.Key(c.store.Key()), log.Err(err))
		_ = c.lifecycle.TransitionTo(app.StateUninitialized, "load failed")
		return err
	}
	c.mu.Lock()
	c.loadErr = err
	c.mu.Unlock()

	if err := c.initPlugins(ctx); err != nil {
		_ = c.lifecycle.TransitionTo(app.StateUninitialized, "plugin init failed")
		return err
	}

	return c.lifecycle.TransitionTo(app.StateActive, "snapshot loaded")
}

func (c *Cart) initPlugins(ctx context.Context) error {
	pluginCfg := PluginConfig{
		Key:    c.store.Key(),
		Cart:   c.store,
		Logger: c.logger,
	}
	if pl, ok := c.kv.(ports.PathLocator); ok {
		pluginCfg.SnapshotPath = pl.Path(c.store.Key())
	}

	for i, p := range c.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			c.shutdownPlugins(c.plugins[:i])
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		c.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	return nil
}

// Products returns the line items in insertion order.
func (c *Cart) Products() ([]LineItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.store.Products(), nil
}

// AddToCart adds a product. A product already in the cart has its quantity
// incremented instead of being added again.
//
// The returned items reflect the in-memory cart even when the error is a
// PersistenceWriteError.
func (c *Cart) AddToCart(ctx context.Context, item ItemDescriptor) ([]LineItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.store.AddToCart(ctx, item)
}

// Increment adds one unit of the product with the given id.
// An unknown id changes nothing and returns an error wrapping ErrNotFound.
func (c *Cart) Increment(ctx context.Context, id string) ([]LineItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.store.Increment(ctx, id)
}

// Decrement removes one unit of the product with the given id. The line item
// is removed when its quantity reaches zero.
// An unknown id changes nothing and returns an error wrapping ErrNotFound.
func (c *Cart) Decrement(ctx context.Context, id string) ([]LineItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.store.Decrement(ctx, id)
}

// Reload re-reads the stored snapshot, picking up changes written by another
// process. Returns whether the cart changed.
func (c *Cart) Reload(ctx context.Context) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.store.Reload(ctx)
}

// Reset deletes the stored snapshot and empties the cart.
func (c *Cart) Reset(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

// LoadError returns the error that made Open fall back to an empty cart,
// or nil if the snapshot loaded cleanly.
func (c *Cart) LoadError() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Key returns the storage key of the snapshot.
func (c *Cart) Key() string {
	return c.config.Key
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (c *Cart) Status() State {
	if c == nil {
		return StateUninitialized
	}
	return convertState(c.lifecycle.State())
}

// Close shuts down plugins in reverse order and releases the store if the
// cart opened it. The cart cannot be reopened.
//
// On a cart that was never opened, or whose Open failed, Close still releases
// the store and returns ErrNotInitialized.
func (c *Cart) Close() error {
	if err := c.ready(); err != nil {
		if c != nil && c.Status() == StateUninitialized {
			_ = c.releaseStore()
		}
		return err
	}
	if err := c.lifecycle.TransitionTo(app.StateClosed, "Close() called"); err != nil {
		return err
	}

	c.shutdownPlugins(c.plugins)
	return c.releaseStore()
}

// releaseStore closes the store created by New, at most once.
func (c *Cart) releaseStore() error {
	c.mu.Lock()
	closer := c.closer
	c.closer = nil
	c.mu.Unlock()

	if closer == nil {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

func (c *Cart) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			c.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			c.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

func (c *Cart) ready() error {
	if c == nil {
		return ErrNotInitialized
	}
	return c.lifecycle.Require()
}
