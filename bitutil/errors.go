package bitutil

import "errors"

var (
	ErrUnparseable     = errors.New("unparseable integer")
	ErrInvalidDimIndex = errors.New("invalid dimIndex specification")
)
