package recognize

import (
	"context"
	"fmt"
	"image"
)

// Recognizer is the consumed interface to the text recognition engine.
// Implementations must be safe for concurrent use by independent jobs.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}

// RecognitionError reports an engine failure. Transient errors (engine busy,
// resource exhaustion) may succeed on resubmission; permanent errors
// (corrupt buffer, unsupported format) will not.
type RecognitionError struct {
	Reason    string
	Transient bool
	Err       error
}

func (e *RecognitionError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Err != nil {
		return fmt.Sprintf("recognition failed (%s): %s: %v", kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("recognition failed (%s): %s", kind, e.Reason)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
