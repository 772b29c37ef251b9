package samples

import (
	"context"
	"fmt"
	"sync"
)

// NotRegisteredError reports a sample the comparer has not hashed yet. Callers may
// register it and retry.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("sample is not registered in the content comparer: %s", e.Name)
}

// HashingComparer decides whether two samples sound the same by comparing content
// hashes. File generators are identified by their file, other generators by
// themselves, so they must be comparable.
type HashingComparer struct {
	mu     sync.RWMutex
	hashes map[any]string
}

func identity(g Generator) any {
	if fg, ok := g.(*FileGenerator); ok {
		return fg.File
	}
	return g
}

// NewHashingComparer registers gens up front.
func NewHashingComparer(ctx context.Context, gens ...HashableGenerator) (*HashingComparer, error) {
	c := &HashingComparer{hashes: map[any]string{}}
	for _, g := range gens {
		if err := c.Register(ctx, g); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *HashingComparer) IsRegistered(g Generator) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.hashes[identity(g)]
	return ok
}

// Register hashes g. Registering twice is a no-op.
func (c *HashingComparer) Register(ctx context.Context, g HashableGenerator) error {
	if c.IsRegistered(g) {
		return nil
	}
	h, err := g.ContentHash(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.hashes[identity(g)] = h
	c.mu.Unlock()
	return nil
}

// Hash returns the registered hash of g.
func (c *HashingComparer) Hash(g Generator) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hashes[identity(g)]
	if !ok {
		return "", &NotRegisteredError{Name: g.Name()}
	}
	return h, nil
}

// Equal reports whether a and b produce identical content. Two nils are equal
// and a nil never equals a sample.
func (c *HashingComparer) Equal(a, b Generator) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	ha, err := c.Hash(a)
	if err != nil {
		return false, err
	}
	hb, err := c.Hash(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}
