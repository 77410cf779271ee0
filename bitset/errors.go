package bitset

import "errors"

var (
	ErrIndexOutOfRange  = errors.New("bit index out of range")
	ErrNotNibbleAligned = errors.New("bit index is not a multiple of 4")
)
