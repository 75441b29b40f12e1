package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spektr-org/simtrace/engine"
	"github.com/spektr-org/simtrace/translator"
)

func testResult(t *testing.T) *engine.Result {
	t.Helper()
	table, err := engine.NewTable([]engine.Event{
		{Seed: "1", MessageType: "APP", ReceiverAddress: "0", EmitterAddress: "1", ArrivalTime: 5, DepartureTime: 3, FailureHandling: "OPTI", TotalWork: 10, AverageFailureTime: 0.1},
		{Seed: "2", MessageType: "SYNC", ReceiverAddress: "1", EmitterAddress: "0", ArrivalTime: 7, DepartureTime: 6, FailureHandling: "PESS", TotalWork: 20, AverageFailureTime: 0.2},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	result, err := engine.Execute(table, engine.DefaultSelection(table), engine.WithRunTable(true))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return result
}

func TestQueryValues(t *testing.T) {
	req, err := translator.FromQuery(queryValues("1,2", "APP", "0,0.5", "Emitter", true))
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if len(req.Runs) != 2 || len(req.Types) != 1 || req.FailureRates[1] != 0.5 {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.YAxis != engine.YAxisEmitter || !req.ShowLatencies {
		t.Errorf("unexpected options: %+v", req)
	}

	if q := queryValues("", "", "", "", false); len(q) != 0 {
		t.Errorf("unset flags should produce no parameters, got %v", q)
	}
}

func TestWriteCSV(t *testing.T) {
	result := testResult(t)

	var buf bytes.Buffer
	if err := writeCSV(&buf, engine.BuildEventTable(result.View)); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != engine.ColSeed || records[1][0] != "1" {
		t.Errorf("unexpected csv: %v", records[:2])
	}
}

func TestWriteJSON(t *testing.T) {
	result := testResult(t)

	var compact, pretty bytes.Buffer
	if err := writeJSON(&compact, result, "json"); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if err := writeJSON(&pretty, result, "pretty"); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  \"success\": true") {
		t.Errorf("expected indented output")
	}

	var decoded engine.Result
	if err := json.Unmarshal(compact.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Rows != 2 || len(decoded.Timelines) != 3 {
		t.Errorf("unexpected result: rows=%d timelines=%d", decoded.Rows, len(decoded.Timelines))
	}
}

func TestWriteText(t *testing.T) {
	result := testResult(t)

	var buf bytes.Buffer
	if err := writeText(&buf, result); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{result.Reply, "Strategy", "Optimistic", "Pessimistic", "Total (2 runs)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

const eventsCSV = "seed,message_type,receiver_address,emitter_address,arrival_time,departure_time,failure_handling,total_work,total_bandwidth,average_failure_time,completeness\n" +
	"1,APP,0,1,5.0,3.0,OPTI,10,100,0.1,0.5\n" +
	"1,SYNC,1,0,7.5,6.0,OPTI,20,150,0.1,0.8\n" +
	"2,APP,2,1,4.0,2.0,PESS,5,50,0.2,0.4\n"

func writeEvents(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(eventsCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRun_Arguments(t *testing.T) {
	path := writeEvents(t)
	missing := filepath.Join(t.TempDir(), "missing.csv")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no input", nil, 1, "exactly one input file"},
		{"two inputs", []string{path, path}, 1, "exactly one input file"},
		{"unreadable input", []string{"--format", "json", missing}, 1, "Failed to load"},
		{"unknown format", []string{"--format", "xml", path}, 1, "unknown format"},
		{"unknown flag", []string{"--colour", path}, 1, ""},
		{"version", []string{"--version"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantErr, stderr.String())
			}
		})
	}
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "json", "--runs", "1", "--latencies", writeEvents(t)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}

	var res engine.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("decode stdout: %v", err)
	}
	if !res.Success || res.Rows != 2 || res.Total != 3 {
		t.Errorf("unexpected result: rows=%d total=%d", res.Rows, res.Total)
	}
	if res.Timeline(engine.LatencyTimeline) == nil {
		t.Error("--latencies should add the latency timeline")
	}
}

func TestRun_CSVToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "filtered.csv")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "csv", "--types", "APP", "--out", out, writeEvents(t)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty with --out, got %q", stdout.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected header + 2 APP rows, got %d records", len(records))
	}
}
