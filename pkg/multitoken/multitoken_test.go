package multitoken

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Mint(t *testing.T) {
	l := NewLedger()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	id := big.NewInt(1)

	err := l.Mint(addr, id, big.NewInt(100))
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(100), l.BalanceOf(addr, id))
	assert.Equal(t, big.NewInt(100), l.TotalSupply(id))
}

func TestLedger_Mint_IDsAreIndependent(t *testing.T) {
	l := NewLedger()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, l.Mint(addr, big.NewInt(1), big.NewInt(5)))
	require.NoError(t, l.Mint(addr, big.NewInt(2), big.NewInt(7)))

	assert.Equal(t, big.NewInt(5), l.BalanceOf(addr, big.NewInt(1)))
	assert.Equal(t, big.NewInt(7), l.BalanceOf(addr, big.NewInt(2)))
	assert.Equal(t, big.NewInt(5), l.TotalSupply(big.NewInt(1)))
}

func TestLedger_Mint_Invalid(t *testing.T) {
	l := NewLedger()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	err := l.Mint(common.Address{}, big.NewInt(1), big.NewInt(1))
	assert.ErrorIs(t, err, ErrZeroAddress)

	err = l.Mint(addr, big.NewInt(1), big.NewInt(0))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	err = l.Mint(addr, big.NewInt(1), nil)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestLedger_Transfer(t *testing.T) {
	l := NewLedger()
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	id := big.NewInt(1)

	require.NoError(t, l.Mint(from, id, big.NewInt(10)))

	err := l.Transfer(from, to, id, big.NewInt(1), nil)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(9), l.BalanceOf(from, id))
	assert.Equal(t, big.NewInt(1), l.BalanceOf(to, id))
	// Supply is conserved by transfers.
	assert.Equal(t, big.NewInt(10), l.TotalSupply(id))
}

func TestLedger_Transfer_InsufficientBalance(t *testing.T) {
	l := NewLedger()
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	id := big.NewInt(1)

	require.NoError(t, l.Mint(from, id, big.NewInt(1)))

	err := l.Transfer(from, to, id, big.NewInt(2), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balances unchanged.
	assert.Equal(t, big.NewInt(1), l.BalanceOf(from, id))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(to, id))
}

func TestLedger_BalanceOf_Unknown(t *testing.T) {
	l := NewLedger()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	assert.Equal(t, big.NewInt(0), l.BalanceOf(addr, big.NewInt(99)))
	assert.Equal(t, big.NewInt(0), l.TotalSupply(big.NewInt(99)))
}
