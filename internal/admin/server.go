// Package admin serves the HTTP status and control surface.
package admin

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"drivelink/internal/logging"
	"drivelink/internal/monitor"
	"drivelink/internal/overtake"
	"drivelink/internal/transmit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Controller is the monitor surface the admin server reads and steers.
type Controller interface {
	Last() monitor.VerdictRow
	Mode() overtake.Mode
	SetMode(overtake.Mode)
	Thresholds() overtake.Thresholds
	SetThresholds(overtake.Thresholds) error
	TransmitStats() transmit.Stats
}

//go:embed templates/index.html
var content embed.FS

type Server struct {
	ctrl    Controller
	metrics http.Handler
	tpl     *template.Template
	mux     *http.ServeMux
}

// NewServer builds the routes. metrics may be nil to omit /metrics.
func NewServer(ctrl Controller, metrics http.Handler) *Server {
	s := &Server{
		ctrl:    ctrl,
		metrics: metrics,
		tpl:     template.Must(template.New("index.html").ParseFS(content, "templates/index.html")),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /conditions", s.handleConditions)
	s.mux.HandleFunc("GET /lane", s.handleLane)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /mode", s.handleGetMode)
	s.mux.HandleFunc("POST /mode", s.handleSetMode)
	s.mux.HandleFunc("GET /thresholds", s.handleGetThresholds)
	s.mux.HandleFunc("POST /thresholds", s.handleSetThresholds)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("admin server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type indexData struct {
	Row        monitor.VerdictRow
	Thresholds overtake.Thresholds
	Stats      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Row:        s.ctrl.Last(),
		Thresholds: s.ctrl.Thresholds(),
		Stats:      s.ctrl.TransmitStats().Format(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Last())
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	conds := s.ctrl.Last().Conditions
	if conds == nil {
		conds = []overtake.Condition{}
	}
	writeJSON(w, http.StatusOK, conds)
}

func (s *Server) handleLane(w http.ResponseWriter, r *http.Request) {
	row := s.ctrl.Last()
	writeJSON(w, http.StatusOK, map[string]any{
		"lane":     row.Lane,
		"position": row.LanePosition,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.TransmitStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":            st,
		"optimizationRate": st.OptimizationRate(),
		"summary":          st.Format(),
	})
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"mode": s.ctrl.Mode()})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	mode, err := overtake.ParseMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ctrl.SetMode(mode)
	logging.FromContext(r.Context()).Info("overtake mode changed", "mode", mode)
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode})
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Thresholds())
}

// handleSetThresholds merges the posted fields into the current thresholds.
func (s *Server) handleSetThresholds(w http.ResponseWriter, r *http.Request) {
	th := s.ctrl.Thresholds()
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := json.Unmarshal(body, &th); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.ctrl.SetThresholds(th); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logging.FromContext(r.Context()).Info("overtake thresholds changed", "thresholds", th)
	writeJSON(w, http.StatusOK, th)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
