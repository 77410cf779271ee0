// Package bitutil holds the bit masking, formatting and number parsing helpers
// shared by the memory model.
package bitutil

import "golang.org/x/exp/constraints"

// CreateMask returns a value with bits [offset, offset+width-1] set.
func CreateMask[T constraints.Unsigned](offset, width uint) T {
	if width == 0 {
		return 0
	}
	var mask uint64
	if width >= 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << width) - 1
	}
	return T(mask << offset)
}

// ExtractBits returns the width bits of value at offset, shifted down to bit 0.
func ExtractBits[T constraints.Unsigned](value T, offset, width uint) T {
	return (value & CreateMask[T](offset, width)) >> offset
}

// InsertBits replaces the width bits of value at offset with field.
func InsertBits[T constraints.Unsigned](value T, offset, width uint, field T) T {
	mask := CreateMask[T](offset, width)
	return (value &^ mask) | ((field << offset) & mask)
}

// Fits reports whether value is representable in width bits.
func Fits(value uint64, width uint) bool {
	if width >= 64 {
		return true
	}
	return value < uint64(1)<<width
}

// MaxValue returns the largest value representable in width bits.
func MaxValue(width uint) uint64 {
	return CreateMask[uint64](0, width)
}
