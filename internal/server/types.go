// Package server exposes the scan pipeline over HTTP: a multipart upload
// endpoint for single receipts, a WebSocket endpoint streaming stage
// progress, health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slipscan/slipscan/internal/config"
	"github.com/slipscan/slipscan/internal/pipeline"
	"github.com/slipscan/slipscan/internal/recognize"
	"github.com/slipscan/slipscan/internal/version"
)

// scanner is the slice of the pipeline the server needs. Tests substitute
// a stub here.
type scanner interface {
	ProcessContext(ctx context.Context, img image.Image) (*pipeline.ScanResult, error)
	ProcessWithCallback(ctx context.Context, img image.Image, cb pipeline.StageCallback) (*pipeline.ScanResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    scanner
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Pipeline    config.PipelineConfig
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ScanResponse wraps a scan result or an error for the JSON API.
type ScanResponse struct {
	Success bool                 `json:"success"`
	Result  *pipeline.ScanResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewServer creates a scan server, building the pipeline from config.
func NewServer(cfg Config) (*Server, error) {
	rec := recognize.NewTesseract(recognize.Config{
		Language:    cfg.Pipeline.Recognizer.Language,
		PageSegMode: cfg.Pipeline.Recognizer.PageSegMode,
	})

	pl, err := pipeline.NewBuilder().
		WithNormalizeOptions(cfg.Pipeline.Normalize).
		WithExtractConfig(cfg.Pipeline.Extract).
		WithRecognizer(rec).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	maxUpload := cfg.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 20
	}
	return &Server{
		pipeline:    pl,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: maxUpload,
		timeoutSec:  cfg.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/scan", s.corsMiddleware(s.scanHandler))
	mux.HandleFunc("/v1/scan/ws", s.scanWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// requestTimeout returns the per-request processing deadline.
func (s *Server) requestTimeout() time.Duration {
	if s.timeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.timeoutSec) * time.Second
}

func serverVersion() string { return version.Version }
