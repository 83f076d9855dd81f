package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/cartkeeper/internal/domain"
)

// snapshotItem mirrors domain.LineItem with pointer fields so that a missing
// field can be told apart from a zero value.
type snapshotItem struct {
	ID       *string  `json:"id"`
	Title    *string  `json:"title"`
	ImageURL *string  `json:"image_url"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

// encodeSnapshot serializes the full cart as a JSON array of line items.
// An empty cart encodes as "[]".
func encodeSnapshot(c domain.Cart) (string, error) {
	items := c.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(b), nil
}

// decodeSnapshot parses and validates a stored snapshot.
// Any deviation from the line item shape yields a *domain.CorruptStateError;
// partial results are never returned.
func decodeSnapshot(key, raw string) (domain.Cart, error) {
	corrupt := func(reason string, err error) (domain.Cart, error) {
		return domain.NewCart(nil), &domain.CorruptStateError{Key: key, Reason: reason, Err: err}
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return corrupt("empty value", nil)
	}
	if trimmed[0] != '[' {
		return corrupt("not a JSON array", nil)
	}

	var parsed []snapshotItem
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return corrupt("invalid JSON", err)
	}

	items := make([]domain.LineItem, 0, len(parsed))
	for i, p := range parsed {
		switch {
		case p.ID == nil:
			return corrupt(fmt.Sprintf("item %d: missing id", i), nil)
		case p.Title == nil:
			return corrupt(fmt.Sprintf("item %d: missing title", i), nil)
		case p.ImageURL == nil:
			return corrupt(fmt.Sprintf("item %d: missing image_url", i), nil)
		case p.Price == nil:
			return corrupt(fmt.Sprintf("item %d: missing price", i), nil)
		case p.Quantity == nil:
			return corrupt(fmt.Sprintf("item %d: missing quantity", i), nil)
		}
		items = append(items, domain.LineItem{
			ID:       *p.ID,
			Title:    *p.Title,
			ImageURL: *p.ImageURL,
			Price:    *p.Price,
			Quantity: *p.Quantity,
		})
	}

	cart := domain.NewCart(items)
	if err := cart.Validate(); err != nil {
		return corrupt("invalid items", err)
	}
	return cart, nil
}
