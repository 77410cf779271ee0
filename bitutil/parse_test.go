package bitutil

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
		fails    bool
	}{
		{"0b101", 5, false},
		{"0B11", 3, false},
		{"0x1F", 31, false},
		{"0xdeadbeef", 0xdeadbeef, false},
		{"#1010", 10, false},
		{"42", 42, false},
		{" 7 ", 7, false},
		{"12abc", 0, true},
		{"0x", 0, true},
		{"0b2", 0, true},
		{"#", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"", 0, true},
		{"forty", 0, true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseInteger(test.input)
			if test.fails {
				if !errors.Is(err, ErrUnparseable) {
					t.Fatalf("expected ErrUnparseable, got %v (%d)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != test.expected {
				t.Errorf("expected %d, got %d", test.expected, got)
			}
		})
	}
}

func TestParseDimIndex(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		count    int
		expected []string
		fails    bool
	}{
		{"empty", "", 3, []string{"0", "1", "2"}, false},
		{"list", "A, B,C", 3, []string{"A", "B", "C"}, false},
		{"listMismatch", "A,B", 3, nil, true},
		{"numeric", "3-6", 4, []string{"3", "4", "5", "6"}, false},
		{"numericShort", "3-4", 4, nil, true},
		{"letters", "a-c", 2, []string{"a", "b"}, false},
		{"lettersShort", "A-B", 3, nil, true},
		{"single", "X", 1, []string{"X"}, false},
		{"garbage", "x_y", 2, nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseDimIndex(test.spec, test.count)
			if test.fails {
				if !errors.Is(err, ErrInvalidDimIndex) {
					t.Fatalf("expected ErrInvalidDimIndex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}
