// Package oracle resolves and evaluates "who owns token X" queries against
// arbitrary external token contracts.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultOwnerOfFunction is the ownership query used when no override is
// recorded for a contract.
const DefaultOwnerOfFunction = "ownerOf(uint256)"

// Common errors.
var (
	// ErrOwnershipCheck wraps every failure to resolve ownership: null
	// contract, failing call, or undecodable payload. It is distinct from a
	// successful "not the owner" answer.
	ErrOwnershipCheck = errors.New("ownership check failed")
)

// StaticCaller issues a read-only cross-contract call. Implementations must
// not move value and must not allow the callee to mutate state, so the call
// cannot re-enter the ledger.
type StaticCaller interface {
	StaticCall(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Verifier answers ownership queries for the ledger.
type Verifier interface {
	OwnsToken(ctx context.Context, contract common.Address, tokenID *big.Int, claimed common.Address) (bool, error)
}

// Resolver resolves the per-contract ownership function and evaluates it via
// a StaticCaller. Overrides cover contracts whose query is not the standard
// ownerOf(uint256) shape.
type Resolver struct {
	caller    StaticCaller
	overrides map[common.Address]string
	mu        sync.RWMutex
}

// NewResolver creates a resolver backed by the given caller.
func NewResolver(caller StaticCaller) *Resolver {
	return &Resolver{
		caller:    caller,
		overrides: make(map[common.Address]string),
	}
}

// SetOwnerOfFunction records an overriding ownership function signature for a
// contract. An empty signature removes the override.
func (r *Resolver) SetOwnerOfFunction(contract common.Address, signature string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if signature == "" {
		delete(r.overrides, contract)
		return
	}
	r.overrides[contract] = signature
}

// ResolveFunction returns the ownership function signature for a contract:
// the override if present, else the default.
func (r *Resolver) ResolveFunction(contract common.Address) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sig, ok := r.overrides[contract]; ok {
		return sig
	}
	return DefaultOwnerOfFunction
}

// OwnsToken evaluates the resolved ownership function against contract and
// reports whether the returned owner equals claimed. Any failure to obtain a
// decodable answer is an ErrOwnershipCheck, never an ownership verdict.
func (r *Resolver) OwnsToken(ctx context.Context, contract common.Address, tokenID *big.Int, claimed common.Address) (bool, error) {
	if contract == (common.Address{}) {
		return false, fmt.Errorf("%w: null contract address", ErrOwnershipCheck)
	}
	if tokenID == nil || tokenID.Sign() < 0 || tokenID.BitLen() > 256 {
		return false, fmt.Errorf("%w: token id out of range", ErrOwnershipCheck)
	}

	data := EncodeCall(r.ResolveFunction(contract), tokenID)

	out, err := r.caller.StaticCall(ctx, contract, data)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrOwnershipCheck, contract.Hex(), err)
	}

	owner, err := decodeAddress(out)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrOwnershipCheck, contract.Hex(), err)
	}

	return owner == claimed, nil
}

// EncodeCall builds calldata for a single-uint256-argument function: the
// 4-byte keccak selector of the signature followed by the ABI-encoded id.
func EncodeCall(signature string, tokenID *big.Int) []byte {
	selector := crypto.Keccak256([]byte(signature))[:4]

	data := make([]byte, 4+32)
	copy(data, selector)
	tokenID.FillBytes(data[4:])
	return data
}

// decodeAddress decodes a 32-byte return word as an address. The high 12
// bytes must be zero for the payload to be address-shaped.
func decodeAddress(out []byte) (common.Address, error) {
	if len(out) != 32 {
		return common.Address{}, fmt.Errorf("return payload is %d bytes, want 32", len(out))
	}
	for _, b := range out[:12] {
		if b != 0 {
			return common.Address{}, errors.New("return payload is not address-shaped")
		}
	}
	return common.BytesToAddress(out[12:]), nil
}
