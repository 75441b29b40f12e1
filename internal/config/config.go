package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all simtrace configuration.
type Config struct {
	Server ServerConfig
	Chart  ChartConfig
	Log    LogConfig
	Loader LoaderConfig
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// ChartConfig holds timeline rendering settings.
type ChartConfig struct {
	Width     int
	Height    int
	MaxPoints int // per series, 0 = unlimited
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
}

// LoaderConfig holds CSV discovery settings.
type LoaderConfig struct {
	SampleSize int // rows inspected for type inference, 0 = all
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:            getenv("SIMTRACE_ADDR", ":8050"),
			ShutdownTimeout: getenvDuration("SIMTRACE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Chart: ChartConfig{
			Width:     getenvInt("SIMTRACE_CHART_WIDTH", 1024),
			Height:    getenvInt("SIMTRACE_CHART_HEIGHT", 480),
			MaxPoints: getenvInt("SIMTRACE_MAX_POINTS", 0),
		},
		Log: LogConfig{
			Level:  getenv("SIMTRACE_LOG_LEVEL", "info"),
			Format: getenv("SIMTRACE_LOG_FORMAT", "text"),
		},
		Loader: LoaderConfig{
			SampleSize: getenvInt("SIMTRACE_SAMPLE_SIZE", 1000),
		},
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("SIMTRACE_ADDR must not be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}
	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		errs = append(errs, fmt.Errorf("chart size must be at least 100x100, got %dx%d", c.Chart.Width, c.Chart.Height))
	}
	if c.Chart.MaxPoints < 0 {
		errs = append(errs, fmt.Errorf("max points must be >= 0, got %d", c.Chart.MaxPoints))
	}
	if c.Loader.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample size must be >= 0, got %d", c.Loader.SampleSize))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
