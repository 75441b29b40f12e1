package engine

import (
	"fmt"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Y-axis choices for the message timeline.
const (
	YAxisReceiver = "receiver"
	YAxisEmitter  = "emitter"
)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	YAxis     string // "receiver" or "emitter"
	Latencies bool   // add the latency timeline
	MaxPoints int    // per-series cap, 0 = unlimited
	RunTable  bool   // attach the run-level table
}

// WithYAxis selects the address column plotted by the message timeline.
func WithYAxis(axis string) Option {
	return func(c *config) {
		c.YAxis = axis
	}
}

// WithLatencies toggles the latency timeline.
func WithLatencies(on bool) Option {
	return func(c *config) {
		c.Latencies = on
	}
}

// WithMaxPoints caps the points kept per series. 0 disables the cap.
func WithMaxPoints(n int) Option {
	return func(c *config) {
		c.MaxPoints = n
	}
}

// WithRunTable attaches the run-level table of the filtered rows.
func WithRunTable(on bool) Option {
	return func(c *config) {
		c.RunTable = on
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		YAxis: YAxisReceiver,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// yColumn maps a Y-axis choice to its column key.
func yColumn(axis string) (string, error) {
	switch axis {
	case YAxisReceiver, "":
		return ColReceiverAddress, nil
	case YAxisEmitter:
		return ColEmitterAddress, nil
	default:
		return "", fmt.Errorf("unknown y axis %q (want %q or %q)", axis, YAxisReceiver, YAxisEmitter)
	}
}
