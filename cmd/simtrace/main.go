package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/simtrace/engine"
	"github.com/spektr-org/simtrace/helpers"
	"github.com/spektr-org/simtrace/internal/config"
	"github.com/spektr-org/simtrace/internal/logging"
	"github.com/spektr-org/simtrace/schema"
	"github.com/spektr-org/simtrace/server"
	"github.com/spektr-org/simtrace/translator"
)

// ============================================================================
// SIMTRACE CLI — Simulation event dashboard
// ============================================================================

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, loads the input file and either serves the dashboard or
// writes one result. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("simtrace", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── Flags ─────────────────────────────────────────────────────────────
	format := fs.String("format", "serve", "Output format: serve, json, pretty, text, csv")
	outFile := fs.String("out", "", "Write output to file instead of stdout")
	runs := fs.String("runs", "", "Comma-separated seeds (\"All\" for every run)")
	types := fs.String("types", "", "Comma-separated message types")
	rates := fs.String("rates", "", "Failure-rate range as lo,hi")
	yAxis := fs.String("y", "", "Message timeline Y axis: receiver, emitter")
	latencies := fs.Bool("latencies", false, "Include the latency timeline")
	showVersion := fs.Bool("version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `simtrace: simulation event dashboard

Usage:
  simtrace [flags] <events.csv>

  simtrace events.csv
  simtrace --format text --runs 1,2 events.csv
  simtrace --format csv --types APP --rates 0,0.2 --out filtered.csv events.csv

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Environment:
  SIMTRACE_ADDR              Listen address (default :8050)
  SIMTRACE_SHUTDOWN_TIMEOUT  Graceful shutdown timeout (default 10s)
  SIMTRACE_CHART_WIDTH       Chart width in pixels (default 1024)
  SIMTRACE_CHART_HEIGHT      Chart height in pixels (default 480)
  SIMTRACE_MAX_POINTS        Points kept per series, 0 = all
  SIMTRACE_LOG_LEVEL         debug, info, warn, error
  SIMTRACE_LOG_FORMAT        text or json
  SIMTRACE_SAMPLE_SIZE       Rows inspected for column types (default 1000, 0 = all)

Formats:
  serve     Host the dashboard (default)
  json      Filtered result as JSON
  pretty    Pretty-printed JSON
  text      Reply line and run table
  csv       Filtered events as CSV
`)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "simtrace %s\n", version)
		return 0
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one input file")
		fs.Usage()
		return 1
	}
	filePath := fs.Arg(0)

	switch *format {
	case "serve", "json", "pretty", "text", "csv":
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		fs.Usage()
		return 1
	}

	fail := func(format string, args ...any) int {
		fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
		return 1
	}

	// ── Config & logging ──────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fail("Invalid configuration: %v", err)
	}
	logging.Init(stderr, logging.IsJSON(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level))

	// ── Load data ─────────────────────────────────────────────────────────
	table, sch, err := helpers.LoadFile(filePath, schema.DiscoverOptions{SampleSize: cfg.Loader.SampleSize})
	if err != nil {
		return fail("Failed to load %s: %v", filePath, err)
	}
	slog.Info("dataset ready", "name", sch.Name, "rows", table.Len(), "seeds", len(table.Seeds()))

	// ── Serve mode ────────────────────────────────────────────────────────
	if *format == "serve" {
		if err := serve(table, cfg); err != nil {
			return fail("%v", err)
		}
		return 0
	}

	// ── One-shot mode ─────────────────────────────────────────────────────
	req, err := translator.FromQuery(queryValues(*runs, *types, *rates, *yAxis, *latencies))
	if err != nil {
		return fail("Invalid selection: %v", err)
	}

	opts := append(req.Options(),
		engine.WithMaxPoints(cfg.Chart.MaxPoints),
		engine.WithRunTable(true),
	)
	result, err := engine.Execute(table, req.Selection(table), opts...)
	if err != nil {
		return fail("Execution failed: %v", err)
	}

	writer := stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			return fail("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	switch *format {
	case "csv":
		err = writeCSV(writer, engine.BuildEventTable(result.View))
	case "text":
		err = writeText(writer, result)
	default:
		err = writeJSON(writer, result, *format)
	}
	if err != nil {
		return fail("Failed to write output: %v", err)
	}
	if *outFile != "" {
		slog.Info("output written", "path", *outFile, "format", *format)
	}
	return 0
}

// serve hosts the dashboard until SIGINT or SIGTERM.
func serve(table *engine.Table, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(table, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// queryValues maps the selection flags onto the dashboard's query format.
// Unset flags are left out so the defaults apply.
func queryValues(runs, types, rates, y string, latencies bool) map[string][]string {
	q := map[string][]string{}
	if runs != "" {
		q["runs"] = []string{runs}
	}
	if types != "" {
		q["types"] = []string{types}
	}
	if rates != "" {
		q["rates"] = []string{rates}
	}
	if y != "" {
		q["y"] = []string{y}
	}
	if latencies {
		q["latencies"] = []string{"true"}
	}
	return q
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

func writeCSV(w io.Writer, td *engine.TableData) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		headers[i] = c.Key
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(td.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func writeText(w io.Writer, result *engine.Result) error {
	lines := []string{titleStyle.Render(result.Reply)}
	if result.RunTable != nil && len(result.RunTable.Rows) > 0 {
		lines = append(lines, "", renderTable(result.RunTable))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// renderTable lays out a table with padded columns; numbers right-aligned.
func renderTable(td *engine.TableData) string {
	widths := make([]int, len(td.Columns))
	for i, c := range td.Columns {
		widths[i] = lipgloss.Width(c.Label)
	}
	for _, row := range td.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cell := func(i int, text string, style lipgloss.Style) string {
		align := lipgloss.Left
		if td.Columns[i].Align == "right" {
			align = lipgloss.Right
		}
		return style.Width(widths[i]).Align(align).Render(text)
	}

	var b strings.Builder
	header := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		header[i] = cell(i, c.Label, headerStyle)
	}
	b.WriteString(strings.Join(header, "  "))

	for _, row := range td.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = cell(i, v, lipgloss.NewStyle())
		}
		b.WriteString("\n" + strings.Join(parts, "  "))
	}

	if td.Summary != nil {
		var vals []string
		for _, c := range td.Columns {
			if v, ok := td.Summary.Values[c.Key]; ok {
				vals = append(vals, c.Label+": "+v)
			}
		}
		b.WriteString("\n" + dimStyle.Render(td.Summary.Label+"  "+strings.Join(vals, "  ")))
	}
	return b.String()
}
