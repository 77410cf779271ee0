package memrange

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// AddrRange is a contiguous run of bytes starting at Base.
type AddrRange struct {
	Base   uint64
	Length uint64
}

func New(base, length uint64) AddrRange {
	return AddrRange{Base: base, Length: length}
}

// NextAddr returns the first address past the range.
func (r AddrRange) NextAddr() uint64 {
	return r.Base + r.Length
}

// EndAddr returns the last address inside the range.
func (r AddrRange) EndAddr() uint64 {
	return r.NextAddr() - 1
}

func (r AddrRange) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.NextAddr()
}

func (r AddrRange) String() string {
	return fmt.Sprintf("%#08x+%d", r.Base, r.Length)
}

// Sort orders ranges by ascending base address. Ranges with the same base
// keep their relative order.
func Sort(ranges []AddrRange) {
	slices.SortStableFunc(ranges, func(a, b AddrRange) bool {
		return a.Base < b.Base
	})
}

// Coalesce merges consecutive ranges of a sorted slice whenever the next range
// starts no more than gap bytes past the end of the current merged range. The
// merged range extends to the furthest end of the two. A negative gap disables
// merging and the ranges are returned as they are.
func Coalesce(sorted []AddrRange, gap int) []AddrRange {
	if gap < 0 {
		return slices.Clone(sorted)
	}

	var result []AddrRange
	for _, r := range sorted {
		if n := len(result); n > 0 {
			last := &result[n-1]
			if last.NextAddr()+uint64(gap) >= r.Base {
				if r.NextAddr() > last.NextAddr() {
					last.Length = r.NextAddr() - last.Base
				}
				continue
			}
		}
		result = append(result, r)
	}
	return result
}

// SplitIntoChunks bounds every range to at most maxBytes by cutting it into
// consecutive maxBytes pieces followed by the remainder. Zero length pieces are
// dropped. Output order follows the input order.
func SplitIntoChunks(ranges []AddrRange, maxBytes uint64) []AddrRange {
	result := make([]AddrRange, 0, len(ranges))
	for _, r := range ranges {
		if maxBytes > 0 {
			for r.Length > maxBytes {
				result = append(result, AddrRange{Base: r.Base, Length: maxBytes})
				r.Base += maxBytes
				r.Length -= maxBytes
			}
		}
		if r.Length > 0 {
			result = append(result, r)
		}
	}
	return result
}

// Total returns the summed length of the ranges.
func Total(ranges []AddrRange) uint64 {
	var n uint64
	for _, r := range ranges {
		n += r.Length
	}
	return n
}
