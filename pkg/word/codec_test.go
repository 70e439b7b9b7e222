package word

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_RoundTrip(t *testing.T) {
	w := uint256.NewInt(0)
	value := uint256.NewInt(0xDEAD)

	packed, err := Insert(w, value, 16, 64)
	require.NoError(t, err)

	got, err := Extract(packed, 16, 64)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestInsert_PreservesOtherBits(t *testing.T) {
	// Start from an all-ones word and write zero into the middle.
	w := new(uint256.Int).Not(uint256.NewInt(0))

	packed, err := Insert(w, uint256.NewInt(0), 8, 100)
	require.NoError(t, err)

	// The written range reads back as zero.
	mid, err := Extract(packed, 8, 100)
	require.NoError(t, err)
	assert.True(t, mid.IsZero())

	// The neighbors are untouched.
	below, err := Extract(packed, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, below.BitLen())

	above, err := Extract(packed, 148, 108)
	require.NoError(t, err)
	assert.Equal(t, 148, above.BitLen())
}

func TestInsert_ValueOverflow(t *testing.T) {
	w := uint256.NewInt(0)

	// 256 does not fit in 8 bits.
	_, err := Insert(w, uint256.NewInt(256), 8, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	// 255 does.
	_, err = Insert(w, uint256.NewInt(255), 8, 0)
	require.NoError(t, err)
}

func TestInsert_OutOfBounds(t *testing.T) {
	w := uint256.NewInt(0)

	_, err := Insert(w, uint256.NewInt(1), 8, 249)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = Extract(w, 2, 255)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestInsert_DoesNotMutateInput(t *testing.T) {
	w := uint256.NewInt(0)

	_, err := Insert(w, uint256.NewInt(7), 4, 0)
	require.NoError(t, err)
	assert.True(t, w.IsZero())
}

func TestInsertBool_RoundTrip(t *testing.T) {
	w := uint256.NewInt(0)

	packed, err := InsertBool(w, true, 255)
	require.NoError(t, err)

	got, err := ExtractBool(packed, 255)
	require.NoError(t, err)
	assert.True(t, got)

	cleared, err := InsertBool(packed, false, 255)
	require.NoError(t, err)

	got, err = ExtractBool(cleared, 255)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestInsertUint255_Boundary(t *testing.T) {
	w := uint256.NewInt(0)

	// 2^255 - 1 is the widest value that fits.
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	max.Sub(max, uint256.NewInt(1))

	packed, err := InsertUint255(w, max, 0)
	require.NoError(t, err)

	got, err := ExtractUint255(packed, 0)
	require.NoError(t, err)
	assert.Equal(t, max, got)

	// 2^255 does not fit.
	over := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	_, err = InsertUint255(w, over, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldOverflow)
}

func TestInsertUint255_SharesWordWithFlag(t *testing.T) {
	// Price in the low 255 bits, flag in the top bit: the layout used by the
	// achievement ledger. Both must survive in one word.
	w := uint256.NewInt(0)

	price := uint256.NewInt(1_000_000)
	packed, err := InsertUint255(w, price, 0)
	require.NoError(t, err)

	packed, err = InsertBool(packed, true, 255)
	require.NoError(t, err)

	gotPrice, err := ExtractUint255(packed, 0)
	require.NoError(t, err)
	assert.Equal(t, price, gotPrice)

	gotFlag, err := ExtractBool(packed, 255)
	require.NoError(t, err)
	assert.True(t, gotFlag)
}
