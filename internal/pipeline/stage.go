package pipeline

import "log/slog"

// Stage identifies a phase of the scan pipeline. A job moves through the
// stages strictly in order and ends in exactly one terminal stage.
type Stage int

const (
	StageIdle Stage = iota
	StageNormalizing
	StageRecognizing
	StageExtracting
	StageValidating
	StageSucceeded
	StageFailed
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageNormalizing:
		return "normalizing"
	case StageRecognizing:
		return "recognizing"
	case StageExtracting:
		return "extracting"
	case StageValidating:
		return "validating"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the stage ends a job.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// MarshalText serializes the stage as its name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StageCallback receives pipeline progress for a single job. Callbacks are
// invoked synchronously from the processing goroutine; implementations
// should return quickly.
type StageCallback interface {
	// OnStage is called when a non-terminal stage begins.
	OnStage(stage Stage)
	// OnSucceeded is called once with the final result.
	OnSucceeded(result *ScanResult)
	// OnFailed is called once with the terminal error.
	OnFailed(err *PipelineError)
}

// NoOpStageCallback ignores all events.
type NoOpStageCallback struct{}

func (NoOpStageCallback) OnStage(Stage)           {}
func (NoOpStageCallback) OnSucceeded(*ScanResult) {}
func (NoOpStageCallback) OnFailed(*PipelineError) {}

// LogStageCallback reports stage transitions through slog.
type LogStageCallback struct{}

func (LogStageCallback) OnStage(stage Stage) {
	slog.Debug("stage started", "stage", stage.String())
}

func (LogStageCallback) OnSucceeded(result *ScanResult) {
	slog.Info("scan succeeded",
		"merchant", result.Receipt.Merchant,
		"confidence", result.Validation.Confidence)
}

func (LogStageCallback) OnFailed(err *PipelineError) {
	slog.Error("scan failed",
		"stage", err.Stage.String(),
		"kind", err.Kind.String(),
		"transient", err.Transient,
		"error", err.Err)
}

// MultiStageCallback fans events out to several callbacks in order.
type MultiStageCallback []StageCallback

func (m MultiStageCallback) OnStage(stage Stage) {
	for _, cb := range m {
		cb.OnStage(stage)
	}
}

func (m MultiStageCallback) OnSucceeded(result *ScanResult) {
	for _, cb := range m {
		cb.OnSucceeded(result)
	}
}

func (m MultiStageCallback) OnFailed(err *PipelineError) {
	for _, cb := range m {
		cb.OnFailed(err)
	}
}

// StageEvent is one progress notification delivered over a channel. For
// terminal events either Result or Err is set.
type StageEvent struct {
	Stage  Stage
	Result *ScanResult
	Err    *PipelineError
}

// ChannelStageCallback delivers events over a channel and closes it after
// the terminal event. Intended for one job per callback instance.
type ChannelStageCallback struct {
	ch chan StageEvent
}

// NewChannelStageCallback creates a channel-backed callback. The channel is
// buffered so a slow consumer cannot stall the pipeline for the small fixed
// number of events a job produces.
func NewChannelStageCallback() *ChannelStageCallback {
	return &ChannelStageCallback{ch: make(chan StageEvent, 8)}
}

// Events returns the receive side of the event channel.
func (c *ChannelStageCallback) Events() <-chan StageEvent {
	return c.ch
}

func (c *ChannelStageCallback) OnStage(stage Stage) {
	c.ch <- StageEvent{Stage: stage}
}

func (c *ChannelStageCallback) OnSucceeded(result *ScanResult) {
	c.ch <- StageEvent{Stage: StageSucceeded, Result: result}
	close(c.ch)
}

func (c *ChannelStageCallback) OnFailed(err *PipelineError) {
	c.ch <- StageEvent{Stage: StageFailed, Err: err}
	close(c.ch)
}
