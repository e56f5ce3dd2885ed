package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/slipscan/slipscan/internal/pipeline"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: serverVersion(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding health response", "error", err)
	}
}

// scanHandler processes a single receipt image upload.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Scan pipeline not initialized", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.ProcessContext(ctx, img)
	scanDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	if err != nil {
		scanRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Scan failed: %v", err), scanErrorStatus(err))
		return
	}
	scanRequestsTotal.WithLabelValues("http", "success").Inc()
	scanConfidence.Observe(res.Validation.Confidence)
	scanItemsExtracted.Observe(float64(len(res.Receipt.Items)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ScanResponse{Success: true, Result: res}); err != nil {
		slog.Error("encoding scan response", "error", err)
	}
}

// scanErrorStatus maps pipeline failures to HTTP status codes. Input
// problems are the client's fault; everything else is a server error.
func scanErrorStatus(err error) int {
	var perr *pipeline.PipelineError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case pipeline.ErrorInput:
			return http.StatusBadRequest
		case pipeline.ErrorRecognition:
			return http.StatusUnprocessableEntity
		case pipeline.ErrorCanceled:
			return http.StatusGatewayTimeout
		}
	}
	return http.StatusInternalServerError
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ScanResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("writing error response", "error", err)
	}
}
