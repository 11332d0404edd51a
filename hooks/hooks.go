// Package hooks provides typed extension points. Callbacks run in ascending
// priority order; callbacks sharing a priority run in registration order.
package hooks

import (
	"context"
	"sort"
	"sync"
)

// DefaultPriority is used by callers that have no ordering preference.
const DefaultPriority = 10

type entry[F any] struct {
	priority int
	seq      int
	fn       F
}

type chain[F any] struct {
	mu      sync.RWMutex
	name    string
	seq     int
	entries []entry[F]
}

func (c *chain[F]) add(priority int, fn F) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries = append(c.entries, entry[F]{priority: priority, seq: c.seq, fn: fn})
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].priority != c.entries[j].priority {
			return c.entries[i].priority < c.entries[j].priority
		}
		return c.entries[i].seq < c.entries[j].seq
	})
}

func (c *chain[F]) snapshot() []entry[F] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entry[F], len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of registered callbacks.
func (c *chain[F]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Name returns the extension point name.
func (c *chain[F]) Name() string {
	return c.name
}

// Action is an extension point whose callbacks receive an argument and
// return nothing.
type Action[T any] struct {
	chain[func(context.Context, T)]
}

// NewAction creates an empty action.
func NewAction[T any](name string) *Action[T] {
	a := &Action[T]{}
	a.name = name
	return a
}

// Add registers fn at priority.
func (a *Action[T]) Add(priority int, fn func(context.Context, T)) {
	a.add(priority, fn)
}

// Do runs every callback with arg.
func (a *Action[T]) Do(ctx context.Context, arg T) {
	for _, e := range a.snapshot() {
		e.fn(ctx, arg)
	}
}

// Filter is an extension point whose callbacks transform a value.
type Filter[T any] struct {
	chain[func(context.Context, T) T]
}

// NewFilter creates an empty filter.
func NewFilter[T any](name string) *Filter[T] {
	f := &Filter[T]{}
	f.name = name
	return f
}

// Add registers fn at priority.
func (f *Filter[T]) Add(priority int, fn func(context.Context, T) T) {
	f.add(priority, fn)
}

// Apply passes value through every callback and returns the result.
func (f *Filter[T]) Apply(ctx context.Context, value T) T {
	for _, e := range f.snapshot() {
		value = e.fn(ctx, value)
	}
	return value
}
