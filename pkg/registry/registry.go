// Package registry provides an in-memory host for read-only cross-contract
// calls. Contracts register a calldata handler per address; callers dispatch
// through StaticCall.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Common errors.
var (
	ErrNoContract = errors.New("no contract at address")
	ErrCallFailed = errors.New("contract call failed")
)

// Handler evaluates calldata for one contract and returns the ABI-encoded
// result. Handlers must be read-only: StaticCall gives them no way to move
// value or write state.
type Handler func(data []byte) ([]byte, error)

// Registry maps contract addresses to handlers and dispatches static calls.
type Registry struct {
	contracts map[common.Address]Handler
	mu        sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		contracts: make(map[common.Address]Handler),
	}
}

// Register installs a handler at an address, replacing any existing one.
func (r *Registry) Register(addr common.Address, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[addr] = h
}

// Deregister removes the handler at an address.
func (r *Registry) Deregister(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contracts, addr)
}

// StaticCall dispatches calldata to the handler registered at to. A missing
// contract, a handler error, or a handler panic is a call failure.
func (r *Registry) StaticCall(ctx context.Context, to common.Address, data []byte) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	h, ok := r.contracts[to]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, to.Hex())
	}

	// A panicking handler reverts the call rather than the host.
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrCallFailed, rec)
		}
	}()

	out, err = h(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	return out, nil
}

// ContractCount returns the number of registered contracts.
func (r *Registry) ContractCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contracts)
}
