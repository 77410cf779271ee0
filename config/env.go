package config

import (
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	EnvConfig      = "REGVIEW_CONFIG"
	EnvGap         = "REGVIEW_GAP"
	EnvMaxChunk    = "REGVIEW_MAX_CHUNK"
	EnvConcurrency = "REGVIEW_CONCURRENCY"
	EnvFormat      = "REGVIEW_FORMAT"
)

// Env holds the environment variables that affect the settings. Unset
// variables are empty.
type Env map[string]string

func Environment() Env {
	return Env{
		EnvConfig:      getenv(EnvConfig, ""),
		EnvGap:         getenv(EnvGap, ""),
		EnvMaxChunk:    getenv(EnvMaxChunk, ""),
		EnvConcurrency: getenv(EnvConcurrency, ""),
		EnvFormat:      getenv(EnvFormat, ""),
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// List returns the set variables as KEY=VALUE in key order.
func (e Env) List() []string {
	keys := maps.Keys(e)
	slices.Sort(keys)

	var result []string
	for _, key := range keys {
		if value := e[key]; len(value) > 0 {
			result = append(result, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return result
}

func getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
