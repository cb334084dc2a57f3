package configs

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Engine.TickInterval != time.Second {
		t.Errorf("tick interval = %s, want 1s", cfg.Engine.TickInterval)
	}
	if cfg.Oracle.BaseURL == "" {
		t.Error("oracle base URL must have a default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/tradesim")
	t.Setenv("ENGINE_TICK_INTERVAL", "250ms")

	cfg := Load()

	if cfg.Server.Port != "9999" {
		t.Errorf("port = %s, want 9999", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://localhost/tradesim" {
		t.Errorf("database URL = %s", cfg.Database.URL)
	}
	if cfg.Engine.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %s, want 250ms", cfg.Engine.TickInterval)
	}
}

func TestLoad_BadTickIntervalFallsBack(t *testing.T) {
	tests := []string{"garbage", "-5s", "0s"}
	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			t.Setenv("ENGINE_TICK_INTERVAL", value)
			if got := Load().Engine.TickInterval; got != time.Second {
				t.Errorf("tick interval = %s, want 1s fallback", got)
			}
		})
	}
}
