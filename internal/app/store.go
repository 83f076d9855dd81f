package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/cartkeeper/internal/domain"
	"github.com/bft-labs/cartkeeper/internal/ports"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// DefaultKey is the storage key snapshots are written under.
const DefaultKey = "cart:products"

// Operation names reported to observers.
const (
	OpLoad      = "load"
	OpReload    = "reload"
	OpAdd       = "add"
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpReset     = "reset"
)

// Observer receives cart store events. Calls are synchronous and happen
// outside the store's locks.
type Observer interface {
	// OnCartChange is called after the in-memory cart changed.
	OnCartChange(op string, items []domain.LineItem)

	// OnPersist is called after every snapshot write, err is nil on success.
	OnPersist(err error, attempts int, duration time.Duration)

	// OnCorruptState is called when a stored snapshot was rejected.
	OnCorruptState(err *domain.CorruptStateError)
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// Key is the storage key for the snapshot. Default: "cart:products"
	Key string

	// Retry applies to snapshot reads and writes.
	Retry RetryPolicy
}

// Store owns the authoritative cart and keeps it in sync with a KVStore.
//
// Mutations publish the new cart to readers before persisting it. Writes are
// serialized and version-stamped: a flush always writes the newest cart and is
// skipped when a newer version already reached storage, so an older snapshot
// can never overwrite a newer one.
type Store struct {
	key      string
	kv       ports.KVStore
	retry    RetryPolicy
	logger   log.Logger
	observer Observer

	mu      sync.RWMutex
	cart    domain.Cart
	version uint64

	// writeMu serializes storage access; persisted is guarded by it.
	writeMu   sync.Mutex
	persisted uint64
}

// NewStore creates a Store with an empty cart. Call Load before use.
func NewStore(cfg StoreConfig, kv ports.KVStore, logger log.Logger, observer Observer) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Store{
		key:      cfg.Key,
		kv:       kv,
		retry:    cfg.Retry.withDefaults(),
		logger:   logger,
		observer: observer,
		cart:     domain.NewCart(nil),
	}
}

// Key returns the storage key of the snapshot.
func (s *Store) Key() string {
	return s.key
}

// Products returns a copy of the current line items.
func (s *Store) Products() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Items()
}

// Version returns the number of state changes applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Load replaces the cart with the stored snapshot.
//
// A missing snapshot leaves the cart empty. A malformed snapshot also leaves
// the cart empty and returns a *domain.CorruptStateError. Read failures are
// retried; if they persist the cart is left untouched and the error returned.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, ok, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	cart := domain.NewCart(nil)
	var loadErr error
	if ok {
		cart, loadErr = decodeSnapshot(s.key, raw)
		if loadErr != nil {
			s.reportCorrupt(loadErr)
			s.logger.Warn("falling back to empty cart", log.Key(s.key))
			cart = domain.NewCart(nil)
		}
	}

	items := s.replace(cart)
	s.logger.Info("cart loaded",
		log.Key(s.key),
		log.Int("items", len(items)),
		log.Bool("found", ok))
	s.observer.OnCartChange(OpLoad, items)

	return loadErr
}

// Reload re-reads the stored snapshot and replaces the cart if it differs.
// It is skipped while a mutation is waiting to be persisted, since storage is
// then known to be older than memory, and its result is discarded when a
// mutation lands during the read. A malformed snapshot is reported and the
// current cart kept. Returns whether the cart changed.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	pending := s.version > s.persisted
	current, seen := s.cart, s.version
	s.mu.RUnlock()
	if pending {
		s.logger.Debug("reload skipped, write pending", log.Key(s.key))
		return false, nil
	}

	raw, ok, err := s.read(ctx)
	if err != nil {
		return false, fmt.Errorf("reload snapshot: %w", err)
	}

	cart := domain.NewCart(nil)
	if ok {
		cart, err = decodeSnapshot(s.key, raw)
		if err != nil {
			s.reportCorrupt(err)
			return false, err
		}
	}
	if cart.Equal(current) {
		return false, nil
	}

	items, ok := s.replaceAt(cart, seen)
	if !ok {
		s.logger.Debug("reload discarded, cart changed during read", log.Key(s.key))
		return false, nil
	}
	s.logger.Info("cart reloaded", log.Key(s.key), log.Int("items", len(items)))
	s.observer.OnCartChange(OpReload, items)
	return true, nil
}

// AddToCart adds a product. A product already in the cart is incremented
// instead of being added twice.
func (s *Store) AddToCart(ctx context.Context, d domain.ItemDescriptor) ([]domain.LineItem, error) {
	return s.mutate(ctx, OpAdd, func(c domain.Cart) (domain.Cart, error) {
		return c.Add(d)
	})
}

// Increment adds one unit of the product with the given id.
// An unknown id leaves the cart unchanged and returns domain.ErrNotFound.
func (s *Store) Increment(ctx context.Context, id string) ([]domain.LineItem, error) {
	return s.mutate(ctx, OpIncrement, func(c domain.Cart) (domain.Cart, error) {
		return c.Increment(id)
	})
}

// Decrement removes one unit of the product with the given id, dropping the
// line item when its quantity reaches zero.
// An unknown id leaves the cart unchanged and returns domain.ErrNotFound.
func (s *Store) Decrement(ctx context.Context, id string) ([]domain.LineItem, error) {
	return s.mutate(ctx, OpDecrement, func(c domain.Cart) (domain.Cart, error) {
		return c.Decrement(id)
	})
}

// Reset removes the stored snapshot and empties the cart.
// The cart is only emptied once the removal succeeded.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove snapshot %q: %w", s.key, err)
	}

	items := s.replace(domain.NewCart(nil))
	s.logger.Info("cart reset", log.Key(s.key))
	s.observer.OnCartChange(OpReset, items)
	return nil
}

// mutate applies fn to the cart, publishes the result and persists it.
// If fn fails the cart is unchanged and nothing is written. A failed write
// does not roll back the published cart.
func (s *Store) mutate(ctx context.Context, op string, fn func(domain.Cart) (domain.Cart, error)) ([]domain.LineItem, error) {
	s.mu.Lock()
	next, err := fn(s.cart)
	if err != nil {
		items := s.cart.Items()
		s.mu.Unlock()
		s.logger.Debug("cart mutation rejected", log.Op(op), log.Err(err))
		return items, err
	}
	s.cart = next
	s.version++
	version := s.version
	items := next.Items()
	s.mu.Unlock()

	s.logger.Debug("cart mutated",
		log.Op(op),
		log.Uint64("version", version),
		log.Int("items", len(items)))
	s.observer.OnCartChange(op, items)

	return items, s.flush(ctx)
}

// flush writes the newest cart unless storage already holds it.
func (s *Store) flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	cart, version := s.cart, s.version
	s.mu.RUnlock()

	if version <= s.persisted {
		return nil
	}

	raw, err := encodeSnapshot(cart)
	if err != nil {
		return err
	}
	if err := s.write(ctx, raw); err != nil {
		return err
	}
	s.persisted = version
	return nil
}

// write stores raw under the key, retrying with backoff.
func (s *Store) write(ctx context.Context, raw string) error {
	start := time.Now()
	b := newBackoff(s.retry.Initial, s.retry.Max)

	var err error
	attempts := 0
	for attempts < s.retry.Attempts {
		attempts++
		if err = s.kv.Set(ctx, s.key, raw); err == nil {
			s.observer.OnPersist(nil, attempts, time.Since(start))
			return nil
		}
		s.logger.Warn("snapshot write failed",
			log.Key(s.key),
			log.Int("attempt", attempts),
			log.Err(err))
		if attempts == s.retry.Attempts {
			break
		}
		if waitErr := b.Wait(ctx); waitErr != nil {
			err = errors.Join(err, waitErr)
			break
		}
	}

	werr := &domain.PersistenceWriteError{Key: s.key, Attempts: attempts, Err: err}
	s.logger.Error("snapshot not persisted", log.Key(s.key), log.Err(werr))
	s.observer.OnPersist(werr, attempts, time.Since(start))
	return werr
}

// read fetches the raw snapshot, retrying failed reads with backoff.
func (s *Store) read(ctx context.Context) (string, bool, error) {
	b := newBackoff(s.retry.Initial, s.retry.Max)

	var err error
	for attempt := 1; ; attempt++ {
		var raw string
		var ok bool
		raw, ok, err = s.kv.Get(ctx, s.key)
		if err == nil {
			return raw, ok, nil
		}
		s.logger.Warn("snapshot read failed",
			log.Key(s.key),
			log.Int("attempt", attempt),
			log.Err(err))
		if attempt >= s.retry.Attempts {
			return "", false, err
		}
		if waitErr := b.Wait(ctx); waitErr != nil {
			return "", false, errors.Join(err, waitErr)
		}
	}
}

// replace installs cart as both the in-memory and the persisted state.
// Callers hold writeMu.
func (s *Store) replace(cart domain.Cart) []domain.LineItem {
	s.mu.Lock()
	s.cart = cart
	s.version++
	s.persisted = s.version
	items := cart.Items()
	s.mu.Unlock()
	return items
}

// replaceAt installs cart like replace, unless a mutation published a version
// other than seen. Callers hold writeMu.
func (s *Store) replaceAt(cart domain.Cart, seen uint64) ([]domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != seen {
		return nil, false
	}
	s.cart = cart
	s.version++
	s.persisted = s.version
	return cart.Items(), true
}

func (s *Store) reportCorrupt(err error) {
	var cse *domain.CorruptStateError
	if !errors.As(err, &cse) {
		return
	}
	s.logger.Warn("stored snapshot rejected",
		log.Key(s.key),
		log.String("reason", cse.Reason),
		log.Err(err))
	s.observer.OnCorruptState(cse)
}

type noopObserver struct{}

func (noopObserver) OnCartChange(string, []domain.LineItem)   {}
func (noopObserver) OnPersist(error, int, time.Duration)      {}
func (noopObserver) OnCorruptState(*domain.CorruptStateError) {}
