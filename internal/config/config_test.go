package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "REPAIR_BUDGET", "INTERCEPTOR_BUDGET", "ATTACK_BUDGET", "OPENING_BOOK", "BOT_SEED", "DEBUG_WS_ADDR", "EVAL_MODEL_PATH"} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.RepairBudget != 750*time.Millisecond {
		t.Errorf("RepairBudget = %v, want 750ms", cfg.RepairBudget)
	}
	if cfg.OpeningBook != "default" {
		t.Errorf("OpeningBook = %q, want %q", cfg.OpeningBook, "default")
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
}

func TestLoad_ReadsOverridesFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("ATTACK_BUDGET", "5s")
	os.Setenv("BOT_SEED", "99")
	defer func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ATTACK_BUDGET")
		os.Unsetenv("BOT_SEED")
	}()

	cfg := Load()
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.AttackBudget != 5*time.Second {
		t.Errorf("AttackBudget = %v, want 5s", cfg.AttackBudget)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
}

func TestLoad_MalformedDurationFallsBackToDefault(t *testing.T) {
	os.Setenv("REPAIR_BUDGET", "not-a-duration")
	defer os.Unsetenv("REPAIR_BUDGET")

	cfg := Load()
	if cfg.RepairBudget != 750*time.Millisecond {
		t.Errorf("expected a malformed duration to fall back to the default, got %v", cfg.RepairBudget)
	}
}
