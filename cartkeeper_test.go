package cartkeeper

import (
	"context"
	"testing"
)

func TestOpen_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := Open(ctx, DefaultConfig(dir))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := c.AddToCart(ctx, ItemDescriptor{ID: "tea", Price: 2}); err != nil {
		t.Fatalf("AddToCart() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	again, err := Open(ctx, DefaultConfig(dir))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer again.Close()

	items, err := again.Products()
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "tea" || items[0].Quantity != 1 {
		t.Errorf("Products() = %+v, want tea x1", items)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	if _, err := Open(context.Background(), Config{Backend: "file"}); err == nil {
		t.Error("Open() should fail without a data dir")
	}
}

func TestConsoleLogger(t *testing.T) {
	if ConsoleLogger("debug") == nil {
		t.Error("ConsoleLogger() returned nil")
	}
}
