package recommend

import (
	"time"

	"github.com/jonathan/job-similarity/internal/types"
)

// tracer records pipeline steps for debug responses. A disabled tracer records nothing.
type tracer struct {
	enabled bool
	start   time.Time
	steps   []types.TraceStep
}

func newTracer(start time.Time, enabled bool) *tracer {
	return &tracer{enabled: enabled, start: start}
}

func (t *tracer) step(name, detail string) {
	if !t.enabled {
		return
	}
	t.steps = append(t.steps, types.TraceStep{
		Step:      name,
		Detail:    detail,
		ElapsedMS: millis(time.Since(t.start)),
	})
}

func (t *tracer) fail(err *Error) *Error {
	if t.enabled {
		err.Trace = t.steps
	}
	return err
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
