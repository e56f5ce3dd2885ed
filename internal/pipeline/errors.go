package pipeline

import "fmt"

// ErrorKind classifies terminal pipeline failures.
type ErrorKind int

const (
	// ErrorInput marks unusable input (nil or empty image).
	ErrorInput ErrorKind = iota
	// ErrorNormalization marks an unrecoverable normalization failure.
	ErrorNormalization
	// ErrorRecognition marks a recognition engine failure or empty output.
	ErrorRecognition
	// ErrorCanceled marks a context cancellation or deadline.
	ErrorCanceled
	// ErrorInternal marks an unexpected failure.
	ErrorInternal
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorInput:
		return "input"
	case ErrorNormalization:
		return "normalization"
	case ErrorRecognition:
		return "recognition"
	case ErrorCanceled:
		return "canceled"
	case ErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// MarshalText serializes the kind as its name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PipelineError is the terminal error of a failed scan. Transient marks
// failures where retrying the same input may succeed.
type PipelineError struct {
	Kind      ErrorKind
	Stage     Stage
	Transient bool
	Err       error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error in stage %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s error in stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
