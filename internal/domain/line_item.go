package domain

import (
	"fmt"
	"math"
	"strings"
)

// LineItem is one product entry in the cart.
// Quantity is always >= 1 while the item is in a cart.
type LineItem struct {
	// ID is the stable product identifier, unique within a cart
	ID string `json:"id"`

	// Title is the display name of the product
	Title string `json:"title"`

	// ImageURL points to the product image
	ImageURL string `json:"image_url"`

	// Price is the unit price, currency agnostic
	Price float64 `json:"price"`

	// Quantity is the number of units in the cart
	Quantity int `json:"quantity"`
}

// ItemDescriptor describes a product to add. It carries no quantity;
// the cart assigns or merges one.
type ItemDescriptor struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// Validate checks the descriptor and returns an error wrapping ErrInvalidItem.
func (d ItemDescriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if math.IsNaN(d.Price) || math.IsInf(d.Price, 0) {
		return fmt.Errorf("%w: price must be finite", ErrInvalidItem)
	}
	if d.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidItem)
	}
	return nil
}

// lineItem converts the descriptor to a LineItem with quantity 1.
func (d ItemDescriptor) lineItem() LineItem {
	return LineItem{
		ID:       strings.TrimSpace(d.ID),
		Title:    d.Title,
		ImageURL: d.ImageURL,
		Price:    d.Price,
		Quantity: 1,
	}
}

// Cart is the ordered collection of line items.
// Insertion order is the order in which products were first added.
//
// Mutating methods never modify the receiver's backing array. They return a
// fresh Cart so that snapshots handed to readers stay stable.
type Cart struct {
	items []LineItem
}

// NewCart creates a cart from items, copying them.
// Items are not validated; use Validate for untrusted input.
func NewCart(items []LineItem) Cart {
	return Cart{items: cloneItems(items)}
}

// Items returns a copy of the line items in insertion order.
func (c Cart) Items() []LineItem {
	return cloneItems(c.items)
}

// Len returns the number of distinct products in the cart.
func (c Cart) Len() int {
	return len(c.items)
}

// IndexOf returns the position of the item with the given id, or -1.
func (c Cart) IndexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add merges a product into the cart. A known id has its quantity
// incremented; an unknown id is appended with quantity 1.
func (c Cart) Add(d ItemDescriptor) (Cart, error) {
	if err := d.Validate(); err != nil {
		return c, err
	}
	item := d.lineItem()
	if c.IndexOf(item.ID) >= 0 {
		return c.Increment(item.ID)
	}
	next := make([]LineItem, len(c.items), len(c.items)+1)
	copy(next, c.items)
	return Cart{items: append(next, item)}, nil
}

// Increment adds one unit to the item with the given id. Surrounding
// whitespace in id is ignored, as in Add.
// Returns ErrNotFound and the unchanged cart if the id is absent.
func (c Cart) Increment(id string) (Cart, error) {
	id = strings.TrimSpace(id)
	idx := c.IndexOf(id)
	if idx < 0 {
		return c, fmt.Errorf("increment %q: %w", id, ErrNotFound)
	}
	next := cloneItems(c.items)
	next[idx].Quantity++
	return Cart{items: next}, nil
}

// Decrement removes one unit from the item with the given id.
// An item at quantity 1 is removed from the cart entirely.
// Returns ErrNotFound and the unchanged cart if the id is absent.
func (c Cart) Decrement(id string) (Cart, error) {
	id = strings.TrimSpace(id)
	idx := c.IndexOf(id)
	if idx < 0 {
		return c, fmt.Errorf("decrement %q: %w", id, ErrNotFound)
	}
	if c.items[idx].Quantity <= 1 {
		next := make([]LineItem, 0, len(c.items)-1)
		next = append(next, c.items[:idx]...)
		next = append(next, c.items[idx+1:]...)
		return Cart{items: next}, nil
	}
	next := cloneItems(c.items)
	next[idx].Quantity--
	return Cart{items: next}, nil
}

// Equal reports whether both carts hold the same items in the same order.
func (c Cart) Equal(other Cart) bool {
	if len(c.items) != len(other.items) {
		return false
	}
	for i := range c.items {
		if c.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Validate checks the cart invariants: non-empty unique ids, quantities
// of at least one, and finite non-negative prices.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c.items))
	for i, it := range c.items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("item %d: empty id", i)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}
		if it.Quantity < 1 {
			return fmt.Errorf("item %q: quantity %d is below 1", it.ID, it.Quantity)
		}
		if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) || it.Price < 0 {
			return fmt.Errorf("item %q: invalid price %v", it.ID, it.Price)
		}
	}
	return nil
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
