package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SIMTRACE_ADDR", "SIMTRACE_SHUTDOWN_TIMEOUT",
		"SIMTRACE_CHART_WIDTH", "SIMTRACE_CHART_HEIGHT", "SIMTRACE_MAX_POINTS",
		"SIMTRACE_LOG_LEVEL", "SIMTRACE_LOG_FORMAT", "SIMTRACE_SAMPLE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Addr != ":8050" {
		t.Fatalf("expected default addr ':8050', got %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Chart.Width != 1024 || cfg.Chart.Height != 480 {
		t.Fatalf("expected default chart 1024x480, got %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Chart.MaxPoints != 0 {
		t.Fatalf("expected unlimited points by default, got %d", cfg.Chart.MaxPoints)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Loader.SampleSize != 1000 {
		t.Fatalf("expected sample size 1000, got %d", cfg.Loader.SampleSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIMTRACE_ADDR", "127.0.0.1:9000")
	t.Setenv("SIMTRACE_SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("SIMTRACE_MAX_POINTS", "5000")
	t.Setenv("SIMTRACE_LOG_FORMAT", "json")

	cfg := Load()

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Chart.MaxPoints != 5000 {
		t.Errorf("max points = %d", cfg.Chart.MaxPoints)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SIMTRACE_CHART_WIDTH", "wide")
	t.Setenv("SIMTRACE_SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Chart.Width != 1024 {
		t.Errorf("expected fallback width 1024, got %d", cfg.Chart.Width)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected fallback timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8050", ShutdownTimeout: time.Second},
		Chart:  ChartConfig{Width: 800, Height: 400},
		Log:    LogConfig{Level: "debug", Format: "text"},
		Loader: LoaderConfig{SampleSize: 100},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected nil error for valid config, got: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = " " }, "SIMTRACE_ADDR"},
		{"zero timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown"},
		{"tiny chart", func(c *Config) { c.Chart.Height = 10 }, "chart size"},
		{"negative points", func(c *Config) { c.Chart.MaxPoints = -1 }, "max points"},
		{"negative sample", func(c *Config) { c.Loader.SampleSize = -5 }, "sample size"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Addr = ""
	cfg.Log.Level = "loud"
	cfg.Chart.MaxPoints = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for multiple bad fields")
	}
	msg := err.Error()
	for _, want := range []string{"SIMTRACE_ADDR", "log level", "max points"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to mention %q, got: %v", want, msg)
		}
	}
}
