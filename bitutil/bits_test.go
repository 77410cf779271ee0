package bitutil

import "testing"

func TestMaskRoundTrip(t *testing.T) {
	for offset := uint(0); offset < 32; offset++ {
		for width := uint(1); offset+width <= 32; width++ {
			mask := CreateMask[uint32](offset, width)
			got := ExtractBits(mask, offset, width)
			expected := uint32(MaxValue(width))
			if got != expected {
				t.Fatalf("offset %d width %d: expected %#x, got %#x", offset, width, expected, got)
			}
		}
	}
}

func TestCreateMask(t *testing.T) {
	tests := []struct {
		name          string
		offset, width uint
		expected      uint32
	}{
		{"empty", 4, 0, 0},
		{"single", 3, 1, 0x8},
		{"nibble", 4, 4, 0xf0},
		{"full", 0, 32, 0xffffffff},
		{"top", 31, 1, 0x80000000},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := CreateMask[uint32](test.offset, test.width); got != test.expected {
				t.Errorf("expected %#x, got %#x", test.expected, got)
			}
		})
	}
}

func TestInsertBits(t *testing.T) {
	if got := InsertBits[uint32](0, 2, 3, 0b101); got != 0b10100 {
		t.Fatalf("expected %#b, got %#b", 0b10100, got)
	}
	if got := InsertBits[uint32](0xffffffff, 4, 4, 0); got != 0xffffff0f {
		t.Fatalf("expected 0xffffff0f, got %#x", got)
	}
	// Bits of the field value past width are dropped.
	if got := InsertBits[uint8](0, 0, 2, 0xff); got != 0x3 {
		t.Fatalf("expected 0x3, got %#x", got)
	}
}

func TestFits(t *testing.T) {
	if !Fits(7, 3) || Fits(8, 3) || !Fits(^uint64(0), 64) {
		t.Fatal("unexpected Fits result")
	}
}
