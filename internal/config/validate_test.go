package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"overlap equals section", func(c *Config) { c.Tiling.OverlapPercent = c.Tiling.SectionSizePercent }},
		{"section above 100", func(c *Config) { c.Tiling.SectionSizePercent = 120 }},
		{"negative workers", func(c *Config) { c.Tiling.Workers = -1 }},
		{"empty whitelist", func(c *Config) { c.Recognition.Whitelist = " " }},
		{"no languages", func(c *Config) { c.Recognition.Languages = nil }},
		{"page seg mode", func(c *Config) { c.Recognition.PageSegMode = 14 }},
		{"negative timeout", func(c *Config) { c.Recognition.Timeout = -time.Second }},
		{"zero timeout", func(c *Config) { c.Recognition.Timeout = 0 }},
		{"zero attempts", func(c *Config) { c.Recognition.Attempts = 0 }},
		{"bad pattern", func(c *Config) { c.Extraction.Patterns = []string{"("} }},
		{"no patterns", func(c *Config) { c.Extraction.Patterns = nil }},
		{"threshold above 100", func(c *Config) { c.Aggregation.ConfidenceThreshold = 101 }},
		{"upscale below 1", func(c *Config) { c.Escalation.UpscaleFactor = 0.5 }},
		{"clip too large", func(c *Config) { c.Escalation.ClipPercent = 60 }},
		{"same suffixes", func(c *Config) { c.Rename.ReviewSuffix = c.Rename.VerifiedSuffix }},
		{"suffix with separator", func(c *Config) { c.Rename.VerifiedSuffix = "/ok" }},
		{"no extensions", func(c *Config) { c.Batch.Extensions = nil }},
		{"report without name", func(c *Config) { c.Batch.ReportName = "" }},
		{"negative settle", func(c *Config) { c.Watch.Settle = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = tt.in
			got, err := cfg.SlogLevel()
			if err != nil {
				t.Fatalf("SlogLevel failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConverters(t *testing.T) {
	cfg := DefaultConfig()

	if p := cfg.TilingParams(); p.SectionSizePercent != 50 || p.OverlapPercent != 10 {
		t.Errorf("TilingParams: got %+v, want 50/10", p)
	}
	if o := cfg.OCROptions(); o.PageSegMode != 6 || o.Whitelist != "0123456789A-" {
		t.Errorf("OCROptions: got %+v", o)
	}
	if e := cfg.EnhanceOptions(); e.UpscaleFactor != 2 || !e.Sharpen {
		t.Errorf("EnhanceOptions: got %+v", e)
	}
}
