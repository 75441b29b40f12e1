package translator

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spektr-org/simtrace/engine"
)

// ============================================================================
// REQUEST PARSER — JSON body or query string → Request
// ============================================================================

// Parse decodes a JSON request body. Surrounding whitespace and markdown
// code fences are stripped; an empty body is the default request.
func Parse(body []byte) (*Request, error) {
	text := strings.TrimSpace(string(body))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var req Request
	if text == "" {
		return &req, nil
	}
	if err := json.Unmarshal([]byte(text), &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w (body: %.200s)", err, text)
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}
	return &req, nil
}

// FromQuery decodes a request from query parameters:
//
//	runs=1&runs=2 or runs=1,2   seeds ("All" for every run)
//	types=A,B                   message types
//	rates=lo,hi                 failure-rate range
//	y=receiver|emitter          message timeline Y axis
//	latencies=true              latency timeline
//
// A parameter that is present but empty selects nothing.
func FromQuery(q url.Values) (*Request, error) {
	var req Request

	if vals, ok := q["runs"]; ok {
		req.Runs = splitList(vals)
	}
	if vals, ok := q["types"]; ok {
		req.Types = splitList(vals)
	}
	if raw := q.Get("rates"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("rates: want lo,hi, got %q", raw)
		}
		req.FailureRates = make([]float64, 2)
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("rates: %w", err)
			}
			req.FailureRates[i] = v
		}
	}
	req.YAxis = q.Get("y")
	if raw := q.Get("latencies"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("latencies: %w", err)
		}
		req.ShowLatencies = on
	}

	if err := req.normalize(); err != nil {
		return nil, err
	}
	return &req, nil
}

// normalize lower-cases the axis and checks field shapes.
func (r *Request) normalize() error {
	r.YAxis = strings.ToLower(strings.TrimSpace(r.YAxis))
	switch r.YAxis {
	case "", engine.YAxisReceiver, engine.YAxisEmitter:
	default:
		return fmt.Errorf("yAxis: unknown value %q", r.YAxis)
	}
	if r.FailureRates != nil && len(r.FailureRates) != 2 {
		return fmt.Errorf("failureRates: want [lo, hi], got %d values", len(r.FailureRates))
	}
	return nil
}

// splitList flattens repeated and comma-separated values, dropping blanks.
func splitList(vals []string) []string {
	out := []string{}
	for _, v := range vals {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
