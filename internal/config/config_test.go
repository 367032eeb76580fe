package config

import (
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "musebot" {
		t.Errorf("expected Name=musebot, got %s", cfg.Name)
	}
	if cfg.Extractor.Provider != "rules" {
		t.Errorf("expected Provider=rules, got %s", cfg.Extractor.Provider)
	}
	if cfg.Booking.OpenTime != "09:00" || cfg.Booking.CloseTime != "17:00" {
		t.Errorf("unexpected operating window: %s-%s", cfg.Booking.OpenTime, cfg.Booking.CloseTime)
	}
	if cfg.Booking.AllowCorrections {
		t.Error("corrections should default to off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MUSEBOT_STATE_DIR", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Booking.ClosedWeekday = "Monday"
	cfg.Extractor.Provider = "gemini"
	cfg.Extractor.APIKey = "test-key"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Booking.ClosedWeekday != "Monday" {
		t.Errorf("expected ClosedWeekday=Monday, got %s", loaded.Booking.ClosedWeekday)
	}
	if loaded.Extractor.Provider != "gemini" {
		t.Errorf("expected Provider=gemini, got %s", loaded.Extractor.Provider)
	}
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Booking.ClosedWeekday != "Sunday" {
		t.Errorf("expected default ClosedWeekday, got %s", cfg.Booking.ClosedWeekday)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Extractor.APIKey != "env-gemini-key" {
		t.Errorf("expected env API key override, got %q", cfg.Extractor.APIKey)
	}
}

func TestConfig_ValidateRejectsBadProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.Provider = "spacy"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestConfig_ValidateGeminiNeedsKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.Provider = "gemini"
	cfg.Extractor.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for gemini without API key")
	}
}

func TestBookingConfig_ClosedDay(t *testing.T) {
	b := BookingConfig{ClosedWeekday: "sunday"}
	wd, err := b.ClosedDay()
	if err != nil {
		t.Fatalf("ClosedDay failed: %v", err)
	}
	if wd != time.Sunday {
		t.Errorf("expected Sunday, got %v", wd)
	}

	b.ClosedWeekday = "someday"
	if _, err := b.ClosedDay(); err == nil {
		t.Error("expected error for invalid weekday")
	}
}

func TestBookingConfig_Window(t *testing.T) {
	b := BookingConfig{OpenTime: "09:00", CloseTime: "17:00"}
	open, close, err := b.Window()
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if open != 9*60 || close != 17*60 {
		t.Errorf("expected 540/1020, got %d/%d", open, close)
	}

	b = BookingConfig{OpenTime: "17:00", CloseTime: "09:00"}
	if _, _, err := b.Window(); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestConfig_GetDurations(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetSessionTTL(); got != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", got)
	}
	cfg.Store.SessionTTL = "garbage"
	if got := cfg.GetSessionTTL(); got != 30*time.Minute {
		t.Errorf("expected fallback TTL, got %v", got)
	}
}
