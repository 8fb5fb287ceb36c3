package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "0123456789abcdef-secret"},
		Shift: ShiftConfig{
			Timezone:       "UTC",
			CancelCutoff:   time.Hour,
			CheckInEarly:   30 * time.Minute,
			MaxOccurrences: 52,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty secret":    func(c *Config) { c.Auth.JWTSecret = "" },
		"short secret":    func(c *Config) { c.Auth.JWTSecret = "short" },
		"bad port":        func(c *Config) { c.Server.Port = 70000 },
		"bad timezone":    func(c *Config) { c.Shift.Timezone = "Mars/Olympus" },
		"negative cutoff": func(c *Config) { c.Shift.CancelCutoff = -time.Minute },
		"no occurrences":  func(c *Config) { c.Shift.MaxOccurrences = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestShiftLocation_FallsBackToUTC(t *testing.T) {
	c := ShiftConfig{Timezone: "not/a-zone"}
	if c.Location() != time.UTC {
		t.Errorf("expected UTC fallback, got %v", c.Location())
	}

	c = ShiftConfig{Timezone: "Europe/London"}
	if c.Location().String() != "Europe/London" {
		t.Errorf("expected Europe/London, got %v", c.Location())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("VH_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("VH_SERVER_PORT", "9090")
	t.Setenv("VH_SHIFT_CANCEL_CUTOFF", "90m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Shift.CancelCutoff != 90*time.Minute {
		t.Errorf("expected cutoff 90m, got %v", cfg.Shift.CancelCutoff)
	}
	if cfg.Shift.CheckInEarly != 30*time.Minute {
		t.Errorf("expected default check-in window 30m, got %v", cfg.Shift.CheckInEarly)
	}
}
