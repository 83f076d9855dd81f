// Package cartkeeper is the short path to a persistent shopping cart.
//
// Example usage:
//
//	c, err := cartkeeper.Open(ctx, cartkeeper.DefaultConfig("/var/lib/shop"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	items, err := c.AddToCart(ctx, cartkeeper.ItemDescriptor{ID: "sku-1", Price: 9.5})
//
// Use package pkg/cart directly for custom stores, plugins and event handlers.
package cartkeeper

import (
	"context"
	"os"

	"github.com/bft-labs/cartkeeper/pkg/cart"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// Config holds the configuration of a cart.
type Config = cart.Config

// Cart is an opened, persistent shopping cart.
type Cart = cart.Cart

// LineItem is one product entry in the cart.
type LineItem = cart.LineItem

// ItemDescriptor describes a product to add.
type ItemDescriptor = cart.ItemDescriptor

// DefaultConfig returns a Config storing the cart as a JSON file in dataDir.
func DefaultConfig(dataDir string) Config {
	return cart.DefaultConfig(dataDir)
}

// Open creates a cart from cfg and loads its stored snapshot.
func Open(ctx context.Context, cfg Config, opts ...cart.Option) (*Cart, error) {
	c, err := cart.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Open(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// ConsoleLogger returns a cart.Logger writing human-readable lines to stderr.
func ConsoleLogger(level string) cart.Logger {
	return log.NewZerologAdapterWithLogger(log.NewConsoleLogger(os.Stderr, level))
}
