package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/cartkeeper/internal/cliconfig"
	"github.com/bft-labs/cartkeeper/pkg/cart"
)

// run executes the CLI against a file backend rooted in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		cfg:    cliconfig.DefaultConfig(),
		logger: cliconfig.Logger("error"),
		out:    &out,
	}
	root := a.rootCommand()
	base := []string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--backend", "file",
		"--data-dir", dir,
		"--log-level", "error",
	}
	root.SetArgs(append(args, base...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AddIncrementDecrement(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "add", "tea", "--title", "Green tea", "--price", "4.5"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, dir, "increment", "tea"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	out, err := run(t, dir, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var items []cart.LineItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	if len(items) != 1 || items[0].Quantity != 2 || items[0].Title != "Green tea" {
		t.Fatalf("list = %+v, want tea x2", items)
	}

	if _, err := run(t, dir, "decrement", "tea"); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	out, err = run(t, dir, "decrement", "tea")
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !strings.Contains(out, "cart is empty") {
		t.Errorf("output = %q, want empty cart", out)
	}
}

func TestCLI_TableOutput(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "cup", "--title", "Cup", "--price", "9")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, want := range []string{"ID", "QTY", "cup", "Cup", "9.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestCLI_UnknownID(t *testing.T) {
	_, err := run(t, t.TempDir(), "increment", "ghost")
	if !errors.Is(err, cart.ErrNotFound) {
		t.Errorf("increment error = %v, want ErrNotFound", err)
	}
}

func TestCLI_InvalidItem(t *testing.T) {
	_, err := run(t, t.TempDir(), "add", "tea", "--price", "-1")
	if !errors.Is(err, cart.ErrInvalidItem) {
		t.Errorf("add error = %v, want ErrInvalidItem", err)
	}
}

func TestCLI_Reset(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "add", "tea"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, dir, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, err := run(t, dir, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "cart is empty") {
		t.Errorf("list after reset = %q, want empty cart", out)
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	_, err := run(t, t.TempDir(), "list", "--write-retries", "1")
	if err == nil {
		t.Error("expected an error for a single write attempt")
	}
}
