package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipscan/slipscan/internal/pipeline"
	"github.com/slipscan/slipscan/internal/receipt"
	"github.com/slipscan/slipscan/internal/testutil"
	"github.com/slipscan/slipscan/internal/validate"
)

// stubScanner satisfies the scanner interface with canned outcomes.
type stubScanner struct {
	res *pipeline.ScanResult
	err error
}

func (s *stubScanner) ProcessContext(ctx context.Context, img image.Image) (*pipeline.ScanResult, error) {
	return s.res, s.err
}

func (s *stubScanner) ProcessWithCallback(ctx context.Context, img image.Image, cb pipeline.StageCallback) (*pipeline.ScanResult, error) {
	if s.err != nil {
		var perr *pipeline.PipelineError
		if !errors.As(s.err, &perr) {
			perr = &pipeline.PipelineError{Kind: pipeline.ErrorInternal, Stage: pipeline.StageIdle, Err: s.err}
		}
		cb.OnFailed(perr)
		return nil, s.err
	}
	for _, st := range []pipeline.Stage{
		pipeline.StageNormalizing,
		pipeline.StageRecognizing,
		pipeline.StageExtracting,
		pipeline.StageValidating,
	} {
		cb.OnStage(st)
	}
	cb.OnSucceeded(s.res)
	return s.res, nil
}

func stubResult() *pipeline.ScanResult {
	total := receipt.Money(1729)
	return &pipeline.ScanResult{
		Receipt: &receipt.Receipt{
			Merchant:   "FRESH MART GROCERY",
			Total:      &total,
			Confidence: 0.9,
		},
		Validation: &validate.Result{Valid: true, Confidence: 0.9},
	}
}

func testServer(sc scanner) *Server {
	return &Server{pipeline: sc, maxUploadMB: 20, timeoutSec: 5}
}

// multipartImage builds a multipart body carrying a PNG under the given
// field name.
func multipartImage(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "receipt.png")
	require.NoError(t, err)
	img := testutil.RenderReceiptImage(testutil.DefaultReceiptImageConfig())
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	srv := testServer(&stubScanner{res: stubResult()})

	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	srv := testServer(&stubScanner{})
	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScanHandlerSuccess(t *testing.T) {
	srv := testServer(&stubScanner{res: stubResult()})
	body, contentType := multipartImage(t, "image")

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "FRESH MART GROCERY", resp.Result.Receipt.Merchant)
}

func TestScanHandlerRejectsGet(t *testing.T) {
	srv := testServer(&stubScanner{})
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/scan", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScanHandlerMissingFile(t *testing.T) {
	srv := testServer(&stubScanner{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no image here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "No image file")
}

func TestScanHandlerInvalidImage(t *testing.T) {
	srv := testServer(&stubScanner{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("definitely not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanHandlerPipelineFailure(t *testing.T) {
	perr := &pipeline.PipelineError{
		Kind:  pipeline.ErrorRecognition,
		Stage: pipeline.StageRecognizing,
		Err:   errors.New("no text found"),
	}
	srv := testServer(&stubScanner{err: perr})
	body, contentType := multipartImage(t, "image")

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Scan failed")
}

// histogramSamples reads the cumulative observation count of a histogram
// child.
func histogramSamples(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	require.True(t, ok)
	var pb dto.Metric
	require.NoError(t, m.Write(&pb))
	return pb.GetHistogram().GetSampleCount()
}

func TestScanHandlerTimesFailedScans(t *testing.T) {
	before := histogramSamples(t, scanDuration.WithLabelValues("http"))

	srv := testServer(&stubScanner{err: &pipeline.PipelineError{
		Kind:  pipeline.ErrorRecognition,
		Stage: pipeline.StageRecognizing,
		Err:   errors.New("no text found"),
	}})
	body, contentType := multipartImage(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.scanHandler(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	after := histogramSamples(t, scanDuration.WithLabelValues("http"))
	assert.Equal(t, before+1, after, "failed scans are timed too")
}

func TestScanErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", &pipeline.PipelineError{Kind: pipeline.ErrorInput}, http.StatusBadRequest},
		{"recognition", &pipeline.PipelineError{Kind: pipeline.ErrorRecognition}, http.StatusUnprocessableEntity},
		{"canceled", &pipeline.PipelineError{Kind: pipeline.ErrorCanceled}, http.StatusGatewayTimeout},
		{"normalization", &pipeline.PipelineError{Kind: pipeline.ErrorNormalization}, http.StatusInternalServerError},
		{"internal", &pipeline.PipelineError{Kind: pipeline.ErrorInternal}, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanErrorStatus(tt.err))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	srv := testServer(&stubScanner{})
	srv.corsOrigin = "https://app.example.com"

	handler := srv.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodOptions, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String(), "preflight short-circuits the handler")
}

func TestCORSMiddlewareNoOrigin(t *testing.T) {
	srv := testServer(&stubScanner{})
	handler := srv.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}

// frameRecorder captures frames written through the wsConnWriter interface.
type frameRecorder struct {
	frames []WebSocketScanResponse
}

func (f *frameRecorder) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	var resp WebSocketScanResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	f.frames = append(f.frames, resp)
	return nil
}

func TestWSStageCallbackProgress(t *testing.T) {
	srv := testServer(&stubScanner{})
	rec := &frameRecorder{}
	cb := &wsStageCallback{server: srv, conn: rec, requestID: "req-1"}

	cb.OnStage(pipeline.StageNormalizing)
	cb.OnStage(pipeline.StageRecognizing)
	cb.OnSucceeded(stubResult())

	require.Len(t, rec.frames, 3)
	assert.Equal(t, "processing", rec.frames[0].Status)
	assert.Equal(t, "normalizing", rec.frames[0].Stage)
	assert.InDelta(t, 0.1, rec.frames[0].Progress, 1e-9)
	assert.InDelta(t, 0.3, rec.frames[1].Progress, 1e-9)

	final := rec.frames[2]
	assert.Equal(t, "completed", final.Status)
	assert.InDelta(t, 1.0, final.Progress, 1e-9)
	require.NotNil(t, final.Result)
	assert.Equal(t, "req-1", final.RequestID)
}

func TestWSStageCallbackFailure(t *testing.T) {
	srv := testServer(&stubScanner{})
	rec := &frameRecorder{}
	cb := &wsStageCallback{server: srv, conn: rec, requestID: "req-2"}

	cb.OnFailed(&pipeline.PipelineError{
		Kind:  pipeline.ErrorRecognition,
		Stage: pipeline.StageRecognizing,
		Err:   errors.New("no text found"),
	})

	require.Len(t, rec.frames, 1)
	assert.Equal(t, "error", rec.frames[0].Status)
	assert.Equal(t, "recognition", rec.frames[0].ErrorType)
	assert.Equal(t, "recognizing", rec.frames[0].Stage)
	assert.Contains(t, rec.frames[0].Error, "no text found")
}

func TestSetupRoutes(t *testing.T) {
	srv := testServer(&stubScanner{res: stubResult()})
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestTimeout(t *testing.T) {
	srv := testServer(&stubScanner{})
	assert.Equal(t, "5s", srv.requestTimeout().String())

	srv.timeoutSec = 0
	assert.Equal(t, "1m0s", srv.requestTimeout().String())
}
