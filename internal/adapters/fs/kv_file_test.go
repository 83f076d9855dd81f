package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"cart:products", "cart_products.json"},
		{"@Market:Products", "_Market_Products.json"},
		{"plain", "plain.json"},
		{"../escape", ".._escape.json"},
		{"", "_.json"},
	}

	for _, tt := range tests {
		if got := FileName(tt.key); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())

	v, ok, err := s.Get(context.Background(), "cart:products")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get() = (%q, %v), want absent", v, ok)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewFileStore(dir)
	ctx := context.Background()

	if err := s.Set(ctx, "cart:products", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(ctx, "cart:products", `[{"id":"b"}]`); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}

	v, ok, err := s.Get(ctx, "cart:products")
	if err != nil || !ok {
		t.Fatalf("Get() = (%q, %v, %v)", v, ok, err)
	}
	if v != `[{"id":"b"}]` {
		t.Errorf("Get() = %q, want last written value", v)
	}

	info, err := os.Stat(s.Path("cart:products"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "k", strings.Repeat("x", i)); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "k.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want [k.json]", names)
	}
}

func TestFileStore_Remove(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := s.Remove(ctx, "missing"); err != nil {
		t.Errorf("Remove() on missing key error: %v", err)
	}

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key still present after Remove()")
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Error("Set() with canceled context should fail")
	}
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get() with canceled context should fail")
	}
}
