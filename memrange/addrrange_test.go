package memrange

import (
	"reflect"
	"testing"
)

func TestAccessors(t *testing.T) {
	r := New(0x100, 0x10)
	if r.NextAddr() != 0x110 {
		t.Errorf("next address %#x", r.NextAddr())
	}
	if r.EndAddr() != 0x10f {
		t.Errorf("end address %#x", r.EndAddr())
	}
	if !r.Contains(0x10f) || r.Contains(0x110) || r.Contains(0xff) {
		t.Error("unexpected containment")
	}
}

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name     string
		ranges   []AddrRange
		max      uint64
		expected []AddrRange
	}{
		{
			"tenThousand",
			[]AddrRange{New(0, 10000)},
			4096,
			[]AddrRange{New(0, 4096), New(4096, 4096), New(8192, 1808)},
		},
		{
			"exactMultiple",
			[]AddrRange{New(0x1000, 8)},
			4,
			[]AddrRange{New(0x1000, 4), New(0x1004, 4)},
		},
		{
			"dropsEmpty",
			[]AddrRange{New(0, 0), New(16, 2)},
			4,
			[]AddrRange{New(16, 2)},
		},
		{
			"keepsOrder",
			[]AddrRange{New(100, 6), New(0, 3)},
			4,
			[]AddrRange{New(100, 4), New(104, 2), New(0, 3)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SplitIntoChunks(test.ranges, test.max)
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
			if Total(got) != Total(test.ranges) {
				t.Errorf("total changed from %d to %d", Total(test.ranges), Total(got))
			}
		})
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	in := []AddrRange{New(0, 10)}
	SplitIntoChunks(in, 4)
	if in[0] != New(0, 10) {
		t.Fatalf("input was modified: %v", in[0])
	}
}

func TestCoalesce(t *testing.T) {
	sorted := []AddrRange{New(0, 4), New(12, 4), New(40, 4), New(42, 1)}
	tests := []struct {
		name     string
		gap      int
		expected []AddrRange
	}{
		{"never", -1, sorted},
		{"touchingOnly", 0, []AddrRange{New(0, 4), New(12, 4), New(40, 4)}},
		{"gapEight", 8, []AddrRange{New(0, 16), New(40, 4)}},
		{"all", 100, []AddrRange{New(0, 44)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Coalesce(sorted, test.gap)
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestSort(t *testing.T) {
	ranges := []AddrRange{New(8, 1), New(0, 2), New(4, 3)}
	Sort(ranges)
	expected := []AddrRange{New(0, 2), New(4, 3), New(8, 1)}
	if !reflect.DeepEqual(ranges, expected) {
		t.Fatalf("expected %v, got %v", expected, ranges)
	}
}
