package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadDetectorDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HF_SPACE_URL", "https://detector.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Detector.URL != "https://detector.example" {
		t.Errorf("trailing slash should be trimmed, got %s", cfg.Detector.URL)
	}
	if cfg.Detector.MaxAttempts != 3 || cfg.Detector.FallbackMaxAttempts != 2 {
		t.Errorf("unexpected attempt budgets: %d / %d", cfg.Detector.MaxAttempts, cfg.Detector.FallbackMaxAttempts)
	}
	if cfg.Detector.BaseBackoff != 10*time.Second {
		t.Errorf("expected 10s base backoff, got %s", cfg.Detector.BaseBackoff)
	}
	if cfg.Converter.Timeout != 30*time.Second {
		t.Errorf("expected 30s converter timeout, got %s", cfg.Converter.Timeout)
	}
}

func TestGetDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("DETECTOR_TIMEOUT", "45")
	if d := getDuration("DETECTOR_TIMEOUT", time.Second); d != 45*time.Second {
		t.Errorf("expected 45s, got %s", d)
	}

	t.Setenv("DETECTOR_TIMEOUT", "1m30s")
	if d := getDuration("DETECTOR_TIMEOUT", time.Second); d != 90*time.Second {
		t.Errorf("expected 90s, got %s", d)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, o := range cfg.Server.AllowedOrigins {
		if o == "*" {
			t.Fatalf("default origins must not include a wildcard: %v", cfg.Server.AllowedOrigins)
		}
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.Server.AllowedOrigins)
	}

	t.Setenv("CORS_ORIGINS", " https://edaa.example , ,https://admin.edaa.example")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[0] != "https://edaa.example" || got[1] != "https://admin.edaa.example" {
		t.Errorf("unexpected origins %v", got)
	}
}
