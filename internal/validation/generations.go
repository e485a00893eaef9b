package validation

import (
	"context"
	"sync"
)

// Generations tracks the newest validation per key so a slow validation can
// tell it has been superseded. Numbers come from one counter shared by all
// keys, which lets finished keys be forgotten without reusing a number.
type Generations struct {
	mu      sync.Mutex
	next    uint64
	current map[string]uint64
}

func NewGenerations() *Generations {
	return &Generations{current: make(map[string]uint64)}
}

func (g *Generations) Start(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	g.current[key] = g.next
	return g.next
}

// Finish reports whether gen is still the newest for key. The newest
// generation releases the key.
func (g *Generations) Finish(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current[key] != gen {
		return false
	}
	delete(g.current, key)
	return true
}

type scopeKey struct{}

// WithScope separates generations of independent form instances, such as two
// browser sessions validating the same field.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

func generationKey(ctx context.Context, field string) string {
	scope, _ := ctx.Value(scopeKey{}).(string)
	return scope + "\x00" + field
}
