package nft

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_MintAndOwnerOf(t *testing.T) {
	l := NewLedger()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")

	id, err := l.Mint(owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), id)

	got, err := l.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	// Ids are consecutive.
	id2, err := l.Mint(owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), id2)
}

func TestLedger_OwnerOf_Unknown(t *testing.T) {
	l := NewLedger()

	_, err := l.OwnerOf(big.NewInt(99))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestLedger_Transfer(t *testing.T) {
	l := NewLedger()
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	id, err := l.Mint(from)
	require.NoError(t, err)

	require.NoError(t, l.Transfer(from, to, id))

	got, err := l.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, to, got)
}

func TestLedger_Transfer_NotOwner(t *testing.T) {
	l := NewLedger()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	stranger := common.HexToAddress("0x2222222222222222222222222222222222222222")

	id, err := l.Mint(owner)
	require.NoError(t, err)

	err = l.Transfer(stranger, stranger, id)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestLedger_Handler(t *testing.T) {
	l := NewLedger()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")

	id, err := l.Mint(owner)
	require.NoError(t, err)

	h := l.Handler("ownerOf(uint256)")

	data := make([]byte, 36)
	copy(data, crypto.Keccak256([]byte("ownerOf(uint256)"))[:4])
	id.FillBytes(data[4:])

	out, err := h(data)
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, owner, common.BytesToAddress(out[12:]))
}

func TestLedger_Handler_Rejections(t *testing.T) {
	l := NewLedger()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")

	id, err := l.Mint(owner)
	require.NoError(t, err)

	h := l.Handler("ownerOf(uint256)")

	// Short calldata.
	_, err = h([]byte{0x01})
	assert.ErrorIs(t, err, ErrBadCalldata)

	// Wrong selector.
	data := make([]byte, 36)
	copy(data, crypto.Keccak256([]byte("holderOf(uint256)"))[:4])
	id.FillBytes(data[4:])
	_, err = h(data)
	assert.ErrorIs(t, err, ErrBadCalldata)

	// Unknown token.
	copy(data, crypto.Keccak256([]byte("ownerOf(uint256)"))[:4])
	big.NewInt(99).FillBytes(data[4:])
	_, err = h(data)
	assert.ErrorIs(t, err, ErrUnknownToken)
}
