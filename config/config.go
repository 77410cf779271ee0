// Package config loads the settings of the register viewer. Built in defaults
// are overlaid by an optional YAML file and then by REGVIEW_* environment
// variables.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"omibyte.io/regview/peripheral"
)

//go:embed defaults.yaml
var rawDefaults []byte

type Settings struct {
	GapThreshold    int                     `yaml:"gapThreshold"`
	MaxChunk        uint64                  `yaml:"maxChunk"`
	ReadConcurrency int                     `yaml:"readConcurrency"`
	DefaultFormat   peripheral.NumberFormat `yaml:"defaultFormat"`
}

// Defaults returns the built in settings.
func Defaults() Settings {
	var s Settings
	if err := yaml.Unmarshal(rawDefaults, &s); err != nil {
		panic(err)
	}
	return s
}

// Load returns the settings using the process environment. See LoadEnv.
func Load(path string) (Settings, error) {
	return LoadEnv(path, Environment())
}

// LoadEnv returns the defaults overlaid by the YAML file at path, or the file
// named by REGVIEW_CONFIG when path is empty, and then by env.
func LoadEnv(path string, env Env) (Settings, error) {
	s := Defaults()

	if len(path) == 0 {
		path = env.Value(EnvConfig)
	}
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
		}
	}

	if err := s.apply(env); err != nil {
		return Settings{}, err
	}
	s.normalize()
	return s, nil
}

func (s *Settings) apply(env Env) (err error) {
	if v := env.Value(EnvGap); len(v) > 0 {
		if s.GapThreshold, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, EnvGap, v)
		}
	}
	if v := env.Value(EnvMaxChunk); len(v) > 0 {
		if s.MaxChunk, err = strconv.ParseUint(v, 0, 64); err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, EnvMaxChunk, v)
		}
	}
	if v := env.Value(EnvConcurrency); len(v) > 0 {
		if s.ReadConcurrency, err = strconv.Atoi(v); err != nil || s.ReadConcurrency < 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, EnvConcurrency, v)
		}
	}
	if v := env.Value(EnvFormat); len(v) > 0 {
		if s.DefaultFormat, err = peripheral.ParseFormat(v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, EnvFormat, err)
		}
	}
	return nil
}

func (s *Settings) normalize() {
	s.MaxChunk &^= 3
	if s.MaxChunk == 0 {
		s.MaxChunk = 4096
	}
	if s.ReadConcurrency < 0 {
		s.ReadConcurrency = 0
	}
}
