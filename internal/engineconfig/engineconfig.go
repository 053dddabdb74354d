// Package engineconfig loads the diplomacy engine's configuration knobs
// from environment variables, with sensible defaults for embedding binaries
// that don't want to wire their own config source.
package engineconfig

import (
	"os"
	"strconv"

	"github.com/freeeve/diplomacy-engine/pkg/diplomacy"
)

// Config holds the two knobs spec'd for a Game: the stalemate-draw
// threshold and whether a convoy paradox aborts resolution instead of
// falling back to the Szykman rule.
type Config struct {
	DrawOnStalemateYears     int
	ExceptionOnConvoyParadox bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		DrawOnStalemateYears:     intOrDefault("DIPLOMACY_DRAW_ON_STALEMATE_YEARS", -1),
		ExceptionOnConvoyParadox: boolOrDefault("DIPLOMACY_EXCEPTION_ON_CONVOY_PARADOX", false),
	}
}

// Engine converts c into the diplomacy package's own config type.
func (c *Config) Engine() *diplomacy.EngineConfig {
	return &diplomacy.EngineConfig{
		ExceptionOnConvoyParadox: c.ExceptionOnConvoyParadox,
		DrawOnStalemateYears:     c.DrawOnStalemateYears,
	}
}

func intOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
