// Package server exposes the scan pipeline over HTTP and WebSocket.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    *pipeline.Pipeline
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config
}

// HealthResponse is the payload of GET /healthz.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version,omitempty"`
	Engines []string `json:"engines"`
	Time    string   `json:"time"`
}

// ScanResponse wraps a scan outcome for the HTTP API.
type ScanResponse struct {
	Success bool                   `json:"success"`
	Result  *pipeline.DecodeResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// NewServer creates a scan server around a pipeline built from the
// provided configuration.
func NewServer(config Config) (*Server, error) {
	cfg := config.PipelineConfig
	pl, err := pipeline.NewBuilder().
		WithFamily(cfg.Family).
		WithPlan(cfg.Plan).
		WithPolicy(cfg.Policy).
		WithTimeout(cfg.Timeout).
		WithWorkers(cfg.MaxWorkers).
		WithZBar(cfg.ZBarEnabled, cfg.ZBar.Binary).
		Build()
	if err != nil {
		return nil, err
	}

	return &Server{
		pipeline:    pl,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.scanHandler))
	mux.HandleFunc("/scan/stream", s.scanStreamHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
