package logging

import (
	"testing"

	"github.com/prisonrp/ruleswiki/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "INFO", "json"},
		{"text debug", "DEBUG", "text"},
		{"bad level falls back", "not-a-level", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.LoggingConfig{Level: tt.level, Format: tt.format}
			if err := InitLogger(cfg); err != nil {
				t.Fatalf("InitLogger(%q, %q) failed: %v", tt.level, tt.format, err)
			}
			if Logger == nil {
				t.Fatal("Logger not set after InitLogger")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	Logger = nil
	if GetLogger() == nil {
		t.Error("GetLogger should never return nil")
	}
}

func TestWithComponent(t *testing.T) {
	l := WithComponent("workflow")
	if l == nil {
		t.Fatal("WithComponent returned nil")
	}
}
