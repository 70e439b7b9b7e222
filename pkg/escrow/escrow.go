// Package escrow provides a pull-based payment escrow: deposits accumulate
// per payee and are withdrawn later by the payee, never pushed.
package escrow

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Common errors.
var (
	ErrZeroPayee         = errors.New("zero payee address")
	ErrNonPositiveAmount = errors.New("deposit amount must be positive")
	ErrNothingToWithdraw = errors.New("no deposits for payee")
)

// Escrow holds deposits keyed by payee.
type Escrow struct {
	deposits map[common.Address]*big.Int
	mu       sync.RWMutex
}

// New creates an empty escrow.
func New() *Escrow {
	return &Escrow{
		deposits: make(map[common.Address]*big.Int),
	}
}

// Deposit credits exactly amount to the payee's withdrawable balance.
func (e *Escrow) Deposit(payee common.Address, amount *big.Int) error {
	if payee == (common.Address{}) {
		return ErrZeroPayee
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.deposits[payee]
	if held == nil {
		held = big.NewInt(0)
	}
	e.deposits[payee] = new(big.Int).Add(held, amount)

	return nil
}

// Withdraw drains and returns the payee's accumulated deposits.
func (e *Escrow) Withdraw(payee common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.deposits[payee]
	if held == nil || held.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}

	delete(e.deposits, payee)
	return held, nil
}

// DepositsOf returns the payee's current withdrawable balance.
func (e *Escrow) DepositsOf(payee common.Address) *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	held := e.deposits[payee]
	if held == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(held)
}
