package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/bft-labs/cartkeeper/internal/adapters/memory"
)

type countingCloser struct {
	closed int
}

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestCart_CloseAfterFailedOpenReleasesStore(t *testing.T) {
	kv := memory.NewStore()
	kv.FailGets(errors.New("connection refused"))

	cfg := Config{RetryInitial: 1, RetryMax: 1}
	c, err := New(cfg, WithKVStore(kv))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closer := &countingCloser{}
	c.closer = closer

	if err := c.Open(context.Background()); err == nil {
		t.Fatal("Open() succeeded with failing reads")
	}
	if err := c.Close(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Close() after failed Open error = %v, want ErrNotInitialized", err)
	}
	if closer.closed != 1 {
		t.Errorf("store closed %d times, want 1", closer.closed)
	}

	_ = c.Close()
	if closer.closed != 1 {
		t.Errorf("store closed %d times after second Close(), want 1", closer.closed)
	}
}

func TestCart_CloseReleasesStoreOnce(t *testing.T) {
	c, err := New(Config{}, WithKVStore(memory.NewStore()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	closer := &countingCloser{}
	c.closer = closer

	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := c.Close(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("second Close() error = %v, want ErrNotInitialized", err)
	}
	if closer.closed != 1 {
		t.Errorf("store closed %d times, want 1", closer.closed)
	}
}
