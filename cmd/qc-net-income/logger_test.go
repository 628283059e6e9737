package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/qc-net-income/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   config.LoggingConfig
		override string
		wantErr  bool
	}{
		{"Defaults", config.LoggingConfig{}, "", false},
		{"Console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"Override wins", config.LoggingConfig{Level: "bogus"}, "warn", false},
		{"Invalid level", config.LoggingConfig{Level: "loud"}, "", true},
		{"Invalid format", config.LoggingConfig{Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Error("initializeLogger() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("initializeLogger() returned nil logger")
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qc.log")

	logger, err := initializeLogger(config.LoggingConfig{Level: "info", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("Expected log file to contain the message, got %q", data)
	}
}
