package bitutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInteger accepts 0b binary, 0x hex, # binary and plain decimal. Anything
// else, including trailing garbage, is an error.
func ParseInteger(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	var digits string
	base := 10
	switch {
	case strings.HasPrefix(lower, "0b"):
		digits, base = s[2:], 2
	case strings.HasPrefix(lower, "0x"):
		digits, base = s[2:], 16
	case strings.HasPrefix(s, "#"):
		digits, base = s[1:], 2
	default:
		digits = s
	}

	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	return value, nil
}

// ParseDimIndex expands a dimIndex specification into count index strings.
// It accepts a comma separated list, a numeric range such as 0-3, or a letter
// range such as A-D. An empty specification yields 0..count-1.
func ParseDimIndex(spec string, count int) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if len(spec) == 0 {
		result := make([]string, count)
		for i := range result {
			result[i] = strconv.Itoa(i)
		}
		return result, nil
	}

	if strings.Contains(spec, ",") {
		parts := strings.Split(spec, ",")
		if len(parts) != count {
			return nil, fmt.Errorf("%w: %q has %d entries, expected %d", ErrInvalidDimIndex, spec, len(parts), count)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}

	from, to, ok := strings.Cut(spec, "-")
	if !ok {
		if count == 1 {
			return []string{spec}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrInvalidDimIndex, spec)
	}

	if start, err := strconv.Atoi(from); err == nil {
		end, err := strconv.Atoi(to)
		if err != nil || end-start+1 < count {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDimIndex, spec)
		}
		result := make([]string, count)
		for i := range result {
			result[i] = strconv.Itoa(start + i)
		}
		return result, nil
	}

	if len(from) == 1 && len(to) == 1 && isLetter(from[0]) && isLetter(to[0]) {
		if int(to[0])-int(from[0])+1 < count {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDimIndex, spec)
		}
		result := make([]string, count)
		for i := range result {
			result[i] = string(rune(from[0]) + rune(i))
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidDimIndex, spec)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
