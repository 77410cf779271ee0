package svd

import (
	"errors"
	"fmt"
)

// ErrParse is the root of every error caused by the content of a device
// description.
var ErrParse = errors.New("svd parse error")

var (
	ErrMissingOffset     = fmt.Errorf("%w: missing address", ErrParse)
	ErrMissingWidth      = fmt.Errorf("%w: missing bit position", ErrParse)
	ErrInvalidDim        = fmt.Errorf("%w: invalid dimension", ErrParse)
	ErrInvalidAccess     = fmt.Errorf("%w: invalid access", ErrParse)
	ErrUnknownDerivation = fmt.Errorf("%w: derived from unknown element", ErrParse)
	ErrDerivationCycle   = fmt.Errorf("%w: derivation cycle", ErrParse)
)
