package config

import "errors"

var (
	ErrInvalidSetting = errors.New("invalid setting")
	ErrLoadFailed     = errors.New("failed to load settings")
)
