// Package memory provides an in-process ports.KVStore.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Op names recorded in the operation log.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
)

// Op is one recorded store call.
type Op struct {
	Name  string
	Key   string
	Value string
}

// Store implements ports.KVStore in memory. It records every call and can be
// told to fail writes, which makes it the store of choice in tests.
type Store struct {
	mu      sync.Mutex
	values  map[string]string
	ops     []Op
	setErrs []error
	getErr  error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = append(s.ops, Op{Name: OpGet, Key: key})
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = append(s.ops, Op{Name: OpSet, Key: key, Value: value})
	if len(s.setErrs) > 0 {
		err := s.setErrs[0]
		s.setErrs = s.setErrs[1:]
		return err
	}
	s.values[key] = value
	return nil
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = append(s.ops, Op{Name: OpRemove, Key: key})
	delete(s.values, key)
	return nil
}

// Put stores a value without recording an operation. Used to seed state.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Value returns the stored value without recording an operation.
func (s *Store) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// FailNextSets makes the next len(errs) Set calls fail with errs, in order.
func (s *Store) FailNextSets(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrs = append(s.setErrs, errs...)
}

// FailGets makes every Get fail with err until called again with nil.
func (s *Store) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// Ops returns a copy of the recorded operations.
func (s *Store) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}
