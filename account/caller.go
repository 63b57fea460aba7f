package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/vaulterr"
)

// Caller performs a delegated call against target. A non-nil error means
// the call failed; the account records that as data.
//
// The call runs while the account is held. Anything the callee does to the
// same account must use the ctx it was given, so the account can reject it
// with vaulterr.ErrReentrant. A callee that calls back with a fresh context
// (context.Background, say) blocks on the held account until it returns,
// which is never.
type Caller interface {
	Call(ctx context.Context, target bank.Address, payload []byte) ([]byte, error)
}

type CallerFunc func(ctx context.Context, target bank.Address, payload []byte) ([]byte, error)

func (f CallerFunc) Call(ctx context.Context, target bank.Address, payload []byte) ([]byte, error) {
	return f(ctx, target, payload)
}

// Router dispatches calls to a handler per target.
type Router struct {
	mu       sync.RWMutex
	handlers map[bank.Address]CallerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[bank.Address]CallerFunc)}
}

// Handle registers fn for target, replacing any earlier handler.
func (r *Router) Handle(target bank.Address, fn CallerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[target] = fn
}

func (r *Router) Call(ctx context.Context, target bank.Address, payload []byte) ([]byte, error) {
	r.mu.RLock()
	fn, ok := r.handlers[target]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("call %s: %w", target, vaulterr.ErrNotFound)
	}
	return fn(ctx, target, payload)
}
