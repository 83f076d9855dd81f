// Package cart is the entry point for embedding a persistent shopping cart.
//
// A [Cart] holds an ordered list of line items, merges repeated additions of
// the same product into one line, removes a line when its quantity drops to
// zero, and writes a full snapshot of the cart to a key-value store after
// every change so the cart survives restarts.
//
// # Lifecycle
//
// Create a cart with [New], then call [Cart.Open] once to load the stored
// snapshot. Every read or mutation made before Open completed or after
// [Cart.Close] returns [ErrNotInitialized].
//
//	c, err := cart.New(cart.Config{Backend: cart.BackendFile, DataDir: dir})
//	if err != nil {
//	    return err
//	}
//	if err := c.Open(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	items, err := c.AddToCart(ctx, cart.ItemDescriptor{ID: "sku-1", Title: "Tea", Price: 4.5})
//
// # Errors
//
// A snapshot that cannot be parsed does not fail Open: the cart starts empty
// and the [CorruptStateError] is available from [Cart.LoadError]. A write that
// keeps failing returns a [PersistenceWriteError]; the in-memory cart already
// holds the change and the next successful write persists it.
//
// # Storage
//
// Backends are selected by [Config.Backend]: a directory of JSON files, a
// Redis server, or process memory. [WithKVStore] plugs in any other store.
package cart
