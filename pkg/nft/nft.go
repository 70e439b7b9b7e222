// Package nft provides an in-memory unique-asset ledger in the ERC-721 shape.
// It is the external token contract the achievement ledger binds against: it
// answers ownership queries through the static-call registry, under the
// standard ownerOf signature or a custom one.
package nft

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Common errors.
var (
	ErrZeroAddress  = errors.New("zero address")
	ErrUnknownToken = errors.New("unknown token id")
	ErrNotOwner     = errors.New("sender does not own token")
	ErrBadCalldata  = errors.New("malformed calldata")
)

// Ledger tracks unique tokens and their single owners.
type Ledger struct {
	owners map[common.Hash]common.Address
	nextID *big.Int

	mu sync.RWMutex
}

// NewLedger creates an empty unique-asset ledger. Token ids start at 1.
func NewLedger() *Ledger {
	return &Ledger{
		owners: make(map[common.Hash]common.Address),
		nextID: big.NewInt(1),
	}
}

// Mint creates a new token owned by to and returns its id.
func (l *Ledger) Mint(to common.Address) (*big.Int, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := new(big.Int).Set(l.nextID)
	l.owners[common.BigToHash(id)] = to
	l.nextID.Add(l.nextID, big.NewInt(1))

	return id, nil
}

// OwnerOf returns the owner of a token id.
func (l *Ledger) OwnerOf(tokenID *big.Int) (common.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	owner, ok := l.owners[common.BigToHash(tokenID)]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrUnknownToken, tokenID)
	}
	return owner, nil
}

// Transfer moves a token from its current owner to another address.
func (l *Ledger) Transfer(from, to common.Address, tokenID *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := common.BigToHash(tokenID)
	owner, ok := l.owners[k]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, tokenID)
	}
	if owner != from {
		return ErrNotOwner
	}

	l.owners[k] = to
	return nil
}

// Handler returns a static-call handler answering the given ownership
// function signature with this ledger's owners. The result is the owner
// address left-padded to a 32-byte word.
func (l *Ledger) Handler(signature string) func(data []byte) ([]byte, error) {
	selector := crypto.Keccak256([]byte(signature))[:4]

	return func(data []byte) ([]byte, error) {
		if len(data) != 36 {
			return nil, fmt.Errorf("%w: %d bytes", ErrBadCalldata, len(data))
		}
		if !bytes.Equal(data[:4], selector) {
			return nil, fmt.Errorf("%w: unknown selector %x", ErrBadCalldata, data[:4])
		}

		tokenID := new(big.Int).SetBytes(data[4:])
		owner, err := l.OwnerOf(tokenID)
		if err != nil {
			return nil, err
		}

		out := make([]byte, 32)
		copy(out[12:], owner.Bytes())
		return out, nil
	}
}
