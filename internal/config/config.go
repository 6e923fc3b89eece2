// Package config holds the bot's startup-time operational knobs, read
// from environment variables with sensible defaults, following the same
// envOrDefault pattern as the teacher's internal/config.Load. Per
// spec.md §6 the bot carries no files, environment variables, or
// persisted state that affects per-turn *decisions*; everything here is
// an operational knob (verbosity, wall-clock budgets, which opening
// book to use, RNG seed for reproducible opportunistic fills) rather
// than game state.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the bot's operational configuration.
type Config struct {
	LogLevel string

	// Per-phase wall-clock search budgets (spec.md §4.9 step 5 and §5).
	RepairBudget      time.Duration
	InterceptorBudget time.Duration
	AttackBudget      time.Duration

	OpeningBook string
	Seed        int64

	DebugWSAddr string // empty disables the telemetry channel
	EvalModelPath string // empty disables the optional neural adjuster
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		RepairBudget:      durationOrDefault("REPAIR_BUDGET", 750*time.Millisecond),
		InterceptorBudget: durationOrDefault("INTERCEPTOR_BUDGET", time.Second),
		AttackBudget:      durationOrDefault("ATTACK_BUDGET", 2*time.Second),
		OpeningBook:       envOrDefault("OPENING_BOOK", "default"),
		Seed:              int64OrDefault("BOT_SEED", 0),
		DebugWSAddr:       envOrDefault("DEBUG_WS_ADDR", ""),
		EvalModelPath:     envOrDefault("EVAL_MODEL_PATH", ""),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func int64OrDefault(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
