package bitutil

import (
	"strconv"
	"strings"
)

// HexDigits returns the number of hex digits needed for width bits.
func HexDigits(width uint) int {
	return int((width + 3) / 4)
}

// HexFormat renders value in hex, zero padded to padding digits.
func HexFormat(value uint64, padding int, prefix bool) string {
	s := zeroPad(strconv.FormatUint(value, 16), padding)
	if prefix {
		return "0x" + s
	}
	return s
}

// BinaryFormat renders value in binary, zero padded to padding digits. When
// group is set the digits are split into nibbles separated by spaces, counting
// from the least significant digit.
func BinaryFormat(value uint64, padding int, prefix, group bool) string {
	s := zeroPad(strconv.FormatUint(value, 2), padding)
	if group && len(s) > 4 {
		var buf strings.Builder
		lead := len(s) % 4
		if lead > 0 {
			buf.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 4 {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(s[i : i+4])
		}
		s = buf.String()
	}
	if prefix {
		return "0b" + s
	}
	return s
}

func DecimalFormat(value uint64) string {
	return strconv.FormatUint(value, 10)
}

func zeroPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
