// Package key derives composite lookup keys for the binding table.
//
// A binding is addressed by an external contract address and an achievement
// id. Both are multiplexed into one 256-bit key: the address occupies the high
// 160 bits, the 96-bit id the low 96 bits. The encoding is injective over that
// domain, so a single-key mapping can track per-(contract, achievement) state.
package key

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxIDBits is the widest achievement id the key can carry.
const MaxIDBits = 96

// ErrIDTooWide is returned when an achievement id exceeds 96 bits.
var ErrIDTooWide = errors.New("achievement id exceeds 96 bits")

// ErrNilID is returned when the achievement id is nil or negative.
var ErrNilID = errors.New("achievement id must be a non-negative integer")

// Encode packs contract and id into a single composite key. The middle 0 bits
// between the two fields are always zero.
func Encode(contract common.Address, id *big.Int) (common.Hash, error) {
	if id == nil || id.Sign() < 0 {
		return common.Hash{}, ErrNilID
	}
	if id.BitLen() > MaxIDBits {
		return common.Hash{}, ErrIDTooWide
	}

	var k common.Hash
	copy(k[:20], contract.Bytes())
	id.FillBytes(k[20:])
	return k, nil
}

// Decode is the inverse of Encode. It is not used on the ledger's hot path
// (keys are lookup-only) but keeps the encoding testable.
func Decode(k common.Hash) (common.Address, *big.Int) {
	addr := common.BytesToAddress(k[:20])
	id := new(big.Int).SetBytes(k[20:])
	return addr, id
}
