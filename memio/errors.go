package memio

import "errors"

var (
	ErrReadFailed         = errors.New("memory read failed")
	ErrWriteFailed        = errors.New("memory write failed")
	ErrRangeOutsideBuffer = errors.New("address range outside of destination buffer")
	ErrUnmapped           = errors.New("address not mapped")
	ErrInvalidImageSpec   = errors.New("invalid image specification")
)
