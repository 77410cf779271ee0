package bitset

import (
	"fmt"
	"math/bits"
	"strings"
)

// Checks enables the index precondition checks on every index-bearing
// operation. A violation panics since it is a caller bug. Disable it once the
// callers are trusted and the address space is large.
var Checks = true

// FixedBitSet is a fixed size bit vector stored in 32-bit words. Bits past
// Len() in the last word are always zero.
type FixedBitSet struct {
	store   []uint32
	numBits int
}

func wordsFor(numBits int) int {
	return (numBits + 31) >> 5
}

// New returns a bit set of numBits cleared bits.
func New(numBits int) *FixedBitSet {
	if numBits < 0 {
		numBits = 0
	}
	return &FixedBitSet{
		store:   make([]uint32, wordsFor(numBits)),
		numBits: numBits,
	}
}

// Len returns the number of logical bits.
func (b *FixedBitSet) Len() int {
	return b.numBits
}

func (b *FixedBitSet) check(ix int) {
	if Checks && (ix < 0 || ix >= b.numBits) {
		panic(fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, ix, b.numBits))
	}
}

// GetBit returns zero if the bit is clear and a non-zero value otherwise.
func (b *FixedBitSet) GetBit(ix int) uint32 {
	b.check(ix)
	return b.store[ix>>5] & (1 << (ix & 0x1f))
}

func (b *FixedBitSet) SetBit(ix int) {
	b.check(ix)
	b.store[ix>>5] |= 1 << (ix & 0x1f)
}

func (b *FixedBitSet) ClearBit(ix int) {
	b.check(ix)
	b.store[ix>>5] &^= 1 << (ix & 0x1f)
}

func (b *FixedBitSet) InvertBit(ix int) {
	b.check(ix)
	b.store[ix>>5] ^= 1 << (ix & 0x1f)
}

// SetNibble sets the four bits starting at ix. ix must be a multiple of 4.
func (b *FixedBitSet) SetNibble(ix int) {
	if Checks {
		if ix&0x3 != 0 {
			panic(fmt.Errorf("%w: %d", ErrNotNibbleAligned, ix))
		}
		b.check(ix + 3)
	}
	b.check(ix)
	b.store[ix>>5] |= 0xf << (ix & 0x1f)
}

func (b *FixedBitSet) ClearAll() {
	for i := range b.store {
		b.store[i] = 0
	}
}

// Dup returns an independent copy.
func (b *FixedBitSet) Dup() *FixedBitSet {
	store := make([]uint32, len(b.store))
	copy(store, b.store)
	return &FixedBitSet{store: store, numBits: b.numBits}
}

// Resize grows or shrinks the set in place. Existing bits below the new
// length are preserved.
func (b *FixedBitSet) Resize(numBits int) {
	if numBits <= 0 {
		b.store = nil
		b.numBits = 0
		return
	}

	store := make([]uint32, wordsFor(numBits))
	copy(store, b.store)
	b.store = store
	b.numBits = numBits
	b.maskTail()
}

// maskTail clears the bits of the last word that are past numBits.
func (b *FixedBitSet) maskTail() {
	if rem := b.numBits & 0x1f; rem != 0 && len(b.store) > 0 {
		b.store[len(b.store)-1] &= (1 << rem) - 1
	}
}

// EachBit calls fn with the index of every set bit in ascending order. Empty
// words are skipped whole and the scan within a word jumps over clear bits.
// Returning false from fn stops the iteration.
func (b *FixedBitSet) EachBit(fn func(ix int) bool) {
	for wi, word := range b.store {
		if word == 0 {
			continue
		}
		base := wi << 5
		for word != 0 {
			tz := bits.TrailingZeros32(word)
			if !fn(base + tz) {
				return
			}
			word &= word - 1
		}
	}
}

// AllBits returns the indices of every set bit in ascending order.
func (b *FixedBitSet) AllBits() []int {
	var result []int
	b.EachBit(func(ix int) bool {
		result = append(result, ix)
		return true
	})
	return result
}

// EachNibble calls fn with the base index of every 4-bit group that has at
// least one bit set, in ascending order.
func (b *FixedBitSet) EachNibble(fn func(ix int) bool) {
	for wi, word := range b.store {
		if word == 0 {
			continue
		}
		base := wi << 5
		for word != 0 {
			shift := bits.TrailingZeros32(word) &^ 0x3
			if !fn(base + shift) {
				return
			}
			word &^= 0xf << shift
		}
	}
}

// Count returns the number of set bits.
func (b *FixedBitSet) Count() int {
	n := 0
	for _, word := range b.store {
		n += bits.OnesCount32(word)
	}
	return n
}

func (b *FixedBitSet) Equal(other *FixedBitSet) bool {
	if b.numBits != other.numBits {
		return false
	}
	for i := range b.store {
		if b.store[i] != other.store[i] {
			return false
		}
	}
	return true
}

// String renders the set as binary, bit 0 last.
func (b *FixedBitSet) String() string {
	var buf strings.Builder
	for ix := b.numBits - 1; ix >= 0; ix-- {
		if b.store[ix>>5]&(1<<(ix&0x1f)) != 0 {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}
