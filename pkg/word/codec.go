// Package word provides a fixed-width bit-field codec over a 256-bit word.
package word

import (
	"errors"

	"github.com/holiman/uint256"
)

// Size is the word width in bits.
const Size = 256

// Common errors.
var (
	ErrFieldOverflow = errors.New("value does not fit in bit width")
	ErrOutOfBounds   = errors.New("bit field exceeds word bounds")
)

// Insert writes value into the bit range [offset, offset+width) of word,
// zeroing that range first and preserving all other bits. The input word is
// not modified.
func Insert(w *uint256.Int, value *uint256.Int, width, offset uint) (*uint256.Int, error) {
	if width == 0 || offset+width > Size {
		return nil, ErrOutOfBounds
	}
	if value.BitLen() > int(width) {
		return nil, ErrFieldOverflow
	}

	mask := fieldMask(width, offset)
	out := new(uint256.Int).And(w, new(uint256.Int).Not(mask))
	shifted := new(uint256.Int).Lsh(value, offset)
	return out.Or(out, shifted), nil
}

// Extract reads the bit range [offset, offset+width) of word as an unsigned
// integer. Exact inverse of Insert over the same range.
func Extract(w *uint256.Int, width, offset uint) (*uint256.Int, error) {
	if width == 0 || offset+width > Size {
		return nil, ErrOutOfBounds
	}

	out := new(uint256.Int).Rsh(w, offset)
	return out.And(out, widthMask(width)), nil
}

// InsertBool is the 1-bit specialization of Insert.
func InsertBool(w *uint256.Int, value bool, offset uint) (*uint256.Int, error) {
	bit := uint256.NewInt(0)
	if value {
		bit.SetOne()
	}
	return Insert(w, bit, 1, offset)
}

// ExtractBool is the 1-bit specialization of Extract.
func ExtractBool(w *uint256.Int, offset uint) (bool, error) {
	v, err := Extract(w, 1, offset)
	if err != nil {
		return false, err
	}
	return !v.IsZero(), nil
}

// InsertUint255 writes a 255-bit value at the given offset.
func InsertUint255(w *uint256.Int, value *uint256.Int, offset uint) (*uint256.Int, error) {
	return Insert(w, value, 255, offset)
}

// ExtractUint255 reads a 255-bit value at the given offset.
func ExtractUint255(w *uint256.Int, offset uint) (*uint256.Int, error) {
	return Extract(w, 255, offset)
}

// widthMask returns a mask with the low width bits set.
func widthMask(width uint) *uint256.Int {
	if width >= Size {
		return new(uint256.Int).Not(uint256.NewInt(0))
	}
	one := uint256.NewInt(1)
	mask := new(uint256.Int).Lsh(one, width)
	return mask.Sub(mask, one)
}

// fieldMask returns a mask with bits [offset, offset+width) set.
func fieldMask(width, offset uint) *uint256.Int {
	return new(uint256.Int).Lsh(widthMask(width), offset)
}
