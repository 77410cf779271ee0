package peripheral

import "errors"

var (
	ErrInvalidSize        = errors.New("invalid register size")
	ErrNoData             = errors.New("register data not read yet")
	ErrValueOutOfRange    = errors.New("value out of range")
	ErrInvalidValue       = errors.New("value is not a valid format")
	ErrUnknownEnumeration = errors.New("unknown enumeration value")
	ErrReadOnly           = errors.New("node is read-only")
	ErrNotFound           = errors.New("node not found")
	ErrInvalidFormat      = errors.New("unknown number format")
)
