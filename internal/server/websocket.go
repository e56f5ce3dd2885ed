package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slipscan/slipscan/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketScanRequest is a scan request sent by the client. Image holds
// the raw encoded image bytes (base64 in the JSON wire form).
type WebSocketScanRequest struct {
	Type  string `json:"type"` // "scan"
	Image []byte `json:"image,omitempty"`
}

// WebSocketScanResponse is a progress or terminal message sent to the
// client while a scan runs.
type WebSocketScanResponse struct {
	Type      string               `json:"type"`
	Status    string               `json:"status"` // "processing", "completed", "error"
	Stage     string               `json:"stage,omitempty"`
	Progress  float64              `json:"progress,omitempty"`
	Result    *pipeline.ScanResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorType string               `json:"error_type,omitempty"`
	RequestID string               `json:"request_id,omitempty"`
}

// wsConnWriter is the write side of a WebSocket connection. Tests
// substitute a recorder here.
type wsConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// scanWebSocketHandler handles WebSocket connections for streaming scans.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrading connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(r.Context(), conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep the connection alive between scans
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

// handleWebSocketMessage parses and dispatches a single scan request.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, data []byte) {
	var req WebSocketScanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err), "")
		return
	}
	if req.Type != "scan" {
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type, "")
		return
	}
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided", "")
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err), requestID)
		return
	}

	s.processWebSocketScan(ctx, conn, img, requestID)
}

// processWebSocketScan runs the pipeline and streams stage transitions.
func (s *Server) processWebSocketScan(ctx context.Context, conn *websocket.Conn, img image.Image, requestID string) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	cb := &wsStageCallback{server: s, conn: conn, requestID: requestID}

	start := time.Now()
	res, err := s.pipeline.ProcessWithCallback(ctx, img, cb)
	scanDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())
	if err != nil {
		scanRequestsTotal.WithLabelValues("websocket", "error").Inc()
		// OnFailed already sent the error frame
		return
	}

	scanRequestsTotal.WithLabelValues("websocket", "success").Inc()
	scanConfidence.Observe(res.Validation.Confidence)
	scanItemsExtracted.Observe(float64(len(res.Receipt.Items)))
}

// wsStageCallback forwards pipeline stage transitions to the client.
type wsStageCallback struct {
	server    *Server
	conn      wsConnWriter
	requestID string
}

// stageProgress maps stages to an approximate completion fraction.
var stageProgress = map[pipeline.Stage]float64{
	pipeline.StageNormalizing: 0.1,
	pipeline.StageRecognizing: 0.3,
	pipeline.StageExtracting:  0.7,
	pipeline.StageValidating:  0.9,
}

func (cb *wsStageCallback) OnStage(stage pipeline.Stage) {
	cb.server.sendWebSocketResponse(cb.conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "processing",
		Stage:     stage.String(),
		Progress:  stageProgress[stage],
		RequestID: cb.requestID,
	})
}

func (cb *wsStageCallback) OnSucceeded(res *pipeline.ScanResult) {
	cb.server.sendWebSocketResponse(cb.conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "completed",
		Stage:     pipeline.StageSucceeded.String(),
		Progress:  1.0,
		Result:    res,
		RequestID: cb.requestID,
	})
}

func (cb *wsStageCallback) OnFailed(perr *pipeline.PipelineError) {
	cb.server.sendWebSocketResponse(cb.conn, WebSocketScanResponse{
		Type:      "error",
		Status:    "error",
		Stage:     perr.Stage.String(),
		Error:     perr.Error(),
		ErrorType: perr.Kind.String(),
		RequestID: cb.requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn wsConnWriter, response WebSocketScanResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("marshaling WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("sending WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn wsConnWriter, errorType, message, requestID string) {
	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
