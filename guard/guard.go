// Package guard serializes mutating operations on one entity and rejects
// re-entry from inside an operation that already holds the entity.
//
// Callers on other goroutines wait their turn. A call made on the same
// call chain (recognised through the context the holder passes down, e.g.
// into a delegated strategy call) fails with vaulterr.ErrReentrant instead
// of deadlocking.
package guard

import (
	"context"
	"sync"

	"github.com/rustyeddy/agentvault/vaulterr"
)

// Guard is usable as a zero value and must not be copied after first use.
type Guard struct {
	mu sync.Mutex
}

type heldKey struct{ g *Guard }

// Enter acquires the guard. The returned context marks the guard as held
// and must be passed to anything that could call back into the entity.
// release is never nil.
func (g *Guard) Enter(ctx context.Context) (held context.Context, release func(), err error) {
	if g.Held(ctx) {
		return ctx, func() {}, vaulterr.ErrReentrant
	}
	g.mu.Lock()
	return context.WithValue(ctx, heldKey{g}, struct{}{}), g.mu.Unlock, nil
}

// Held reports whether ctx was derived from a context returned by Enter.
func (g *Guard) Held(ctx context.Context) bool {
	return ctx.Value(heldKey{g}) != nil
}
