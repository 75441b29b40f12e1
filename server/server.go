package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spektr-org/simtrace/engine"
	"github.com/spektr-org/simtrace/internal/config"
	"github.com/spektr-org/simtrace/translator"
)

// maxBodyBytes bounds widget request bodies.
const maxBodyBytes = 1 << 20

// Server hosts the dashboard over HTTP and WebSocket.
// The only shared state is the immutable table, so handlers run concurrently.
type Server struct {
	table  *engine.Table
	cfg    config.Config
	hub    *wsHub
	server *http.Server
}

// New creates a server for table. Nothing listens until Start.
func New(table *engine.Table, cfg config.Config) *Server {
	s := &Server{
		table: table,
		cfg:   cfg,
		hub:   newHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/meta", s.handleMeta)
	mux.HandleFunc("/api/timeline", s.handleTimeline)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/chart/", s.handleChart)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.hub.handle(s, w, r)
	})

	s.server = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}
	return s
}

// Handler returns the HTTP handler with every route.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	slog.Info("dashboard listening", "addr", s.cfg.Server.Addr, "dataset", s.table.ID())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return nil
}

// Shutdown disconnects WebSocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.server.Shutdown(ctx)
}

// execute runs one widget request against the table.
func (s *Server) execute(req *translator.Request) (*engine.Result, error) {
	opts := append(req.Options(),
		engine.WithMaxPoints(s.cfg.Chart.MaxPoints),
		engine.WithRunTable(true),
	)
	return engine.Execute(s.table, req.Selection(s.table), opts...)
}

// ============================================================================
// API HANDLERS
// ============================================================================

type metaResponse struct {
	DatasetID     string               `json:"datasetId"`
	Rows          int                  `json:"rows"`
	Columns       []string             `json:"columns"`
	AllRuns       string               `json:"allRuns"`
	Seeds         []string             `json:"seeds"`
	MessageTypes  []string             `json:"messageTypes"`
	Strategies    map[string]string    `json:"strategies"`
	FailureDomain engine.FailureDomain `json:"failureDomain"`
	Clients       int                  `json:"clients"`
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, metaResponse{
		DatasetID:     s.table.ID(),
		Rows:          s.table.Len(),
		Columns:       s.table.Columns(),
		AllRuns:       engine.AllRuns,
		Seeds:         s.table.Seeds(),
		MessageTypes:  s.table.MessageTypes(),
		Strategies:    s.table.StrategiesMap(),
		FailureDomain: s.table.FailureDomain(),
		Clients:       s.hub.clientCount(),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var (
		req *translator.Request
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = translator.FromQuery(r.URL.Query())
	case http.MethodPost:
		var body []byte
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err == nil {
			req, err = translator.Parse(body)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.execute(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, engine.BuildRunTable(s.table.Runs()))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/chart/")
	id, ok := strings.CutSuffix(name, ".png")
	if !ok || !knownTimeline(id) {
		http.Error(w, "Unknown chart", http.StatusNotFound)
		return
	}

	result, status, err := s.chartResult(r, id)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	tl := result.Timeline(id)
	if tl == nil {
		http.Error(w, "Timeline not in session result", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := RenderTimeline(w, *tl, s.cfg.Chart.Width, s.cfg.Chart.Height); err != nil {
		slog.Error("failed to write chart", "timeline", id, "error", err)
	}
}

// chartResult returns the Result a chart is drawn from: the cached Result of
// a WebSocket session when ?session= is given, otherwise a fresh one built
// from the query string.
func (s *Server) chartResult(r *http.Request, id string) (*engine.Result, int, error) {
	q := r.URL.Query()
	if session := q.Get("session"); session != "" {
		res, ok := s.hub.sessions.get(session)
		if !ok {
			return nil, http.StatusNotFound, fmt.Errorf("unknown session %q", session)
		}
		return res, http.StatusOK, nil
	}

	req, err := translator.FromQuery(q)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err)
	}
	if id == engine.LatencyTimeline {
		req.ShowLatencies = true
	}
	res, err := s.execute(req)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return res, http.StatusOK, nil
}

func knownTimeline(id string) bool {
	switch id {
	case engine.MessageTimeline, engine.BandwidthTimeline, engine.WorkTimeline, engine.LatencyTimeline:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
