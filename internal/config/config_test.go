package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Log.PollInterval != "2s" {
		t.Errorf("expected default poll interval 2s, got %q", cfg.Log.PollInterval)
	}
	if !cfg.Log.UseFsnotify {
		t.Error("expected fsnotify enabled by default")
	}
	if !cfg.Archive.Enabled {
		t.Error("expected archive enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		wantErr  bool
	}{
		{"valid seconds", "5s", false},
		{"valid minutes", "1m", false},
		{"empty", "", true},
		{"not a duration", "soon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Log.PollInterval = tt.interval
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetLogPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.PollInterval = "500ms"

	d, err := cfg.GetLogPollInterval()
	if err != nil {
		t.Fatalf("GetLogPollInterval() error = %v", err)
	}
	if d.Milliseconds() != 500 {
		t.Errorf("expected 500ms, got %v", d)
	}
}
