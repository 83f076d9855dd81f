// Package snapshotwatcher keeps a file-backed cart in sync with changes made
// by other processes. It watches the snapshot file and reloads the cart after
// it was replaced or removed.
package snapshotwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/cartkeeper/pkg/cart"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// Plugin reloads the cart when its snapshot file changes on disk.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	reloadTimeout time.Duration

	path     string
	cart     cart.Reloader
	logger   cart.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer

	// pending counts scheduled or running debounced reloads.
	pending sync.WaitGroup

	reloads atomic.Int64
}

// Config holds configuration options for the snapshot watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after the last change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// ReloadTimeout bounds a single reload.
	// Default: 5 seconds
	ReloadTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		ReloadTimeout: 5 * time.Second,
	}
}

// New creates a new snapshot watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 5 * time.Second
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		reloadTimeout: cfg.ReloadTimeout,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "snapshotwatcher"
}

// Initialize starts watching the snapshot file. Stores that are not file
// based leave the plugin idle.
func (p *Plugin) Initialize(ctx context.Context, cfg cart.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.SnapshotPath
	p.cart = cfg.Cart
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.mu.Unlock()

	if p.path == "" || p.cart == nil {
		p.logger.Warn("snapshot watcher disabled: store is not file based")
		return nil
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	// The watch outlives Open's context; Shutdown stops it.
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel

	p.logger.Info("snapshot watcher started", log.Path(p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher, drops a scheduled reload and waits for a
// running one to finish.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil && p.debounce.Stop() {
		p.pending.Done()
	}
	p.debounce = nil
	p.mu.Unlock()

	p.pending.Wait()
	return nil
}

// Reloads returns how many reloads changed the cart.
func (p *Plugin) Reloads() int64 {
	return p.reloads.Load()
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("snapshot watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if p.debounce != nil && p.debounce.Stop() {
		p.pending.Done()
	}
	p.pending.Add(1)
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		defer p.pending.Done()
		p.reload(ctx)
	})
}

func (p *Plugin) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.reloadTimeout)
	defer cancel()

	changed, err := p.cart.Reload(ctx)
	if err != nil {
		p.logger.Warn("snapshot reload failed", log.Path(p.path), log.Err(err))
		return
	}
	if changed {
		p.reloads.Add(1)
		p.logger.Info("cart reloaded from disk", log.Path(p.path))
	}
}
