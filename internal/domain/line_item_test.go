package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func apple() ItemDescriptor {
	return ItemDescriptor{ID: "a", Title: "Apple", ImageURL: "https://img/a.png", Price: 1.5}
}

func TestItemDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       ItemDescriptor
		wantErr bool
	}{
		{"valid", apple(), false},
		{"zero price", ItemDescriptor{ID: "free", Price: 0}, false},
		{"empty id", ItemDescriptor{ID: "", Price: 1}, true},
		{"blank id", ItemDescriptor{ID: "   ", Price: 1}, true},
		{"negative price", ItemDescriptor{ID: "x", Price: -1}, true},
		{"nan price", ItemDescriptor{ID: "x", Price: math.NaN()}, true},
		{"inf price", ItemDescriptor{ID: "x", Price: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("Validate() error = %v, want ErrInvalidItem", err)
			}
		})
	}
}

func TestCart_AddDistinct(t *testing.T) {
	c := NewCart(nil)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		var err error
		c, err = c.Add(ItemDescriptor{ID: id, Price: 1})
		if err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}

	if c.Len() != len(ids) {
		t.Fatalf("Len() = %d, want %d", c.Len(), len(ids))
	}
	for i, it := range c.Items() {
		if it.ID != ids[i] {
			t.Errorf("item %d id = %s, want %s", i, it.ID, ids[i])
		}
		if it.Quantity != 1 {
			t.Errorf("item %s quantity = %d, want 1", it.ID, it.Quantity)
		}
	}
}

func TestCart_AddTwiceMergesQuantity(t *testing.T) {
	added, _ := NewCart(nil).Add(apple())
	twice, err := added.Add(apple())
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	incremented, err := added.Increment("a")
	if err != nil {
		t.Fatalf("Increment() error: %v", err)
	}

	if diff := cmp.Diff(incremented.Items(), twice.Items()); diff != "" {
		t.Errorf("add twice differs from add+increment (-want +got):\n%s", diff)
	}
	if twice.Len() != 1 || twice.Items()[0].Quantity != 2 {
		t.Errorf("got %+v, want single row with quantity 2", twice.Items())
	}
}

func TestCart_IDWhitespaceIgnored(t *testing.T) {
	padded := apple()
	padded.ID = " a "
	c, err := NewCart(nil).Add(padded)
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if got := c.Items()[0].ID; got != "a" {
		t.Fatalf("stored id = %q, want %q", got, "a")
	}

	c, err = c.Increment(" a ")
	if err != nil {
		t.Fatalf("Increment() error: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 2 {
		t.Errorf("quantity after Increment() = %d, want 2", got)
	}

	c, err = c.Decrement("a\t")
	if err != nil {
		t.Fatalf("Decrement() error: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("quantity after Decrement() = %d, want 1", got)
	}
}

func TestCart_DecrementKeepsOrder(t *testing.T) {
	c := NewCart([]LineItem{
		{ID: "a", Quantity: 1},
		{ID: "b", Quantity: 3},
		{ID: "c", Quantity: 2},
	})

	got, err := c.Decrement("b")
	if err != nil {
		t.Fatalf("Decrement() error: %v", err)
	}

	want := []LineItem{
		{ID: "a", Quantity: 1},
		{ID: "b", Quantity: 2},
		{ID: "c", Quantity: 2},
	}
	if diff := cmp.Diff(want, got.Items()); diff != "" {
		t.Errorf("Decrement() mismatch (-want +got):\n%s", diff)
	}
}

func TestCart_DecrementAtOneRemoves(t *testing.T) {
	c := NewCart([]LineItem{
		{ID: "a", Quantity: 2},
		{ID: "b", Quantity: 1},
		{ID: "c", Quantity: 5},
	})

	got, err := c.Decrement("b")
	if err != nil {
		t.Fatalf("Decrement() error: %v", err)
	}

	want := []LineItem{
		{ID: "a", Quantity: 2},
		{ID: "c", Quantity: 5},
	}
	if diff := cmp.Diff(want, got.Items()); diff != "" {
		t.Errorf("Decrement() mismatch (-want +got):\n%s", diff)
	}
}

func TestCart_UnknownIDIsNoop(t *testing.T) {
	c := NewCart([]LineItem{{ID: "a", Quantity: 1}})

	inc, err := c.Increment("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Increment() error = %v, want ErrNotFound", err)
	}
	if !inc.Equal(c) {
		t.Errorf("Increment() changed cart: %+v", inc.Items())
	}

	dec, err := c.Decrement("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Decrement() error = %v, want ErrNotFound", err)
	}
	if !dec.Equal(c) {
		t.Errorf("Decrement() changed cart: %+v", dec.Items())
	}
}

func TestCart_MutationsDoNotAlias(t *testing.T) {
	c := NewCart([]LineItem{{ID: "a", Quantity: 1}})
	before := c.Items()

	if _, err := c.Increment("a"); err != nil {
		t.Fatalf("Increment() error: %v", err)
	}

	if diff := cmp.Diff(before, c.Items()); diff != "" {
		t.Errorf("receiver cart modified (-want +got):\n%s", diff)
	}
}

func TestCart_Scenario(t *testing.T) {
	c := NewCart(nil)
	steps := []struct {
		name string
		op   func(Cart) (Cart, error)
		want []LineItem
	}{
		{"add", func(c Cart) (Cart, error) { return c.Add(apple()) }, []LineItem{{ID: "a", Title: "Apple", ImageURL: "https://img/a.png", Price: 1.5, Quantity: 1}}},
		{"add again", func(c Cart) (Cart, error) { return c.Add(apple()) }, []LineItem{{ID: "a", Title: "Apple", ImageURL: "https://img/a.png", Price: 1.5, Quantity: 2}}},
		{"decrement", func(c Cart) (Cart, error) { return c.Decrement("a") }, []LineItem{{ID: "a", Title: "Apple", ImageURL: "https://img/a.png", Price: 1.5, Quantity: 1}}},
		{"decrement to empty", func(c Cart) (Cart, error) { return c.Decrement("a") }, []LineItem{}},
	}

	for _, s := range steps {
		var err error
		c, err = s.op(c)
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if diff := cmp.Diff(s.want, c.Items()); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", s.name, diff)
		}
	}
}

func TestCart_Validate(t *testing.T) {
	tests := []struct {
		name    string
		items   []LineItem
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []LineItem{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 4, Price: 2}}, false},
		{"empty id", []LineItem{{ID: "", Quantity: 1}}, true},
		{"duplicate id", []LineItem{{ID: "a", Quantity: 1}, {ID: "a", Quantity: 2}}, true},
		{"zero quantity", []LineItem{{ID: "a", Quantity: 0}}, true},
		{"negative price", []LineItem{{ID: "a", Quantity: 1, Price: -3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCart(tt.items).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorTypes_MatchSentinels(t *testing.T) {
	cause := errors.New("disk full")

	var err error = &PersistenceWriteError{Key: "cart:products", Attempts: 3, Err: cause}
	if !errors.Is(err, ErrPersistenceWrite) {
		t.Error("PersistenceWriteError should match ErrPersistenceWrite")
	}
	if !errors.Is(err, cause) {
		t.Error("PersistenceWriteError should unwrap to its cause")
	}

	err = &CorruptStateError{Key: "cart:products", Reason: "invalid json"}
	if !errors.Is(err, ErrCorruptState) {
		t.Error("CorruptStateError should match ErrCorruptState")
	}
	var cse *CorruptStateError
	if !errors.As(err, &cse) || cse.Reason != "invalid json" {
		t.Errorf("errors.As() = %+v", cse)
	}
}
