package memrange

import "omibyte.io/regview/bitset"

// InUse marks which bytes of a window of memory are used. One bit stands for
// one byte at that offset into the window.
type InUse struct {
	*bitset.FixedBitSet
}

// NewInUse returns an empty map of a window of length bytes.
func NewInUse(length int) *InUse {
	return &InUse{FixedBitSet: bitset.New(length)}
}

// SetAddrRange marks length bytes starting at offset as used. Word aligned
// spans are marked a word at a time.
func (u *InUse) SetAddrRange(offset, length int) {
	if offset&0x3 == 0 && length&0x3 == 0 {
		for ; length > 0; length -= 4 {
			u.SetWord(offset)
			offset += 4
		}
		return
	}

	for ; length > 0; length-- {
		u.SetBit(offset)
		offset++
	}
}

// SetWord marks the 4 bytes starting at offset as used. offset must be a
// multiple of 4.
func (u *InUse) SetWord(offset int) {
	u.SetNibble(offset)
}

// AddressRangesExact returns one range per run of used bytes. When aligned is
// set the scan works on 4-byte groups instead, and a group with any used byte
// counts as entirely used. Every base is offset by base.
func (u *InUse) AddressRangesExact(base uint64, aligned bool) []AddrRange {
	var result []AddrRange
	incr := 1
	if aligned {
		incr = 4
	}

	next := -1
	gotOne := func(ix int) bool {
		if ix != next {
			result = append(result, AddrRange{Base: base + uint64(ix), Length: uint64(incr)})
		} else {
			result[len(result)-1].Length += uint64(incr)
		}
		next = ix + incr
		return true
	}

	if aligned {
		u.EachNibble(gotOne)
	} else {
		u.EachBit(gotOne)
	}
	return result
}

// AddressRangesOptimized returns the exact ranges with neighbours merged when
// the hole between them is at most minGap bytes. In aligned mode minGap is
// rounded up to a multiple of 4.
func (u *InUse) AddressRangesOptimized(base uint64, aligned bool, minGap int) []AddrRange {
	exact := u.AddressRangesExact(base, aligned)
	if minGap <= 0 || len(exact) < 2 {
		return exact
	}

	if aligned {
		minGap = (minGap + 3) &^ 3
	}
	return Coalesce(exact, minGap)
}
