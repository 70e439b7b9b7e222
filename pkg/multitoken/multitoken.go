// Package multitoken provides an in-memory semi-fungible balance ledger in
// the ERC-1155 shape: per-id fungible balances with single-unit transfers.
package multitoken

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Common errors.
var (
	ErrZeroAddress         = errors.New("zero address")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Ledger tracks balances per (token id, account) and total supply per id.
type Ledger struct {
	balances map[common.Hash]map[common.Address]*big.Int
	supply   map[common.Hash]*big.Int

	mu sync.RWMutex
}

// NewLedger creates an empty multi-token ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Hash]map[common.Address]*big.Int),
		supply:   make(map[common.Hash]*big.Int),
	}
}

// Mint credits amount units of id to an address and grows the supply.
func (l *Ledger) Mint(to common.Address, id *big.Int, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := common.BigToHash(id)
	l.credit(k, to, amount)

	supply := l.supply[k]
	if supply == nil {
		supply = big.NewInt(0)
	}
	l.supply[k] = new(big.Int).Add(supply, amount)

	return nil
}

// Transfer moves amount units of id between accounts. The data argument is
// carried for interface parity with safeTransferFrom and is not interpreted.
func (l *Ledger) Transfer(from, to common.Address, id *big.Int, amount *big.Int, data []byte) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := common.BigToHash(id)
	balance := l.balanceLocked(k, from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	l.balances[k][from] = new(big.Int).Sub(balance, amount)
	l.credit(k, to, amount)

	return nil
}

// BalanceOf returns the balance of an account for a token id.
func (l *Ledger) BalanceOf(account common.Address, id *big.Int) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.balanceLocked(common.BigToHash(id), account))
}

// TotalSupply returns the minted supply of a token id.
func (l *Ledger) TotalSupply(id *big.Int) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	supply := l.supply[common.BigToHash(id)]
	if supply == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(supply)
}

// credit adds amount to (id, account). Caller holds the write lock.
func (l *Ledger) credit(k common.Hash, account common.Address, amount *big.Int) {
	if l.balances[k] == nil {
		l.balances[k] = make(map[common.Address]*big.Int)
	}
	balance := l.balances[k][account]
	if balance == nil {
		balance = big.NewInt(0)
	}
	l.balances[k][account] = new(big.Int).Add(balance, amount)
}

// balanceLocked returns the stored balance without copying. Caller holds a lock.
func (l *Ledger) balanceLocked(k common.Hash, account common.Address) *big.Int {
	if accounts, ok := l.balances[k]; ok {
		if balance, ok := accounts[account]; ok {
			return balance
		}
	}
	return big.NewInt(0)
}
