package report

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// Aggregator holds the run-wide outcome counters. It is safe for use by
// concurrently running probes; the zero value is ready to use.
type Aggregator struct {
	success atomic.Int64
	timeout atomic.Int64
	errors  atomic.Int64
}

func New() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) RecordSuccess() { a.success.Add(1) }
func (a *Aggregator) RecordTimeout() { a.timeout.Add(1) }
func (a *Aggregator) RecordError()   { a.errors.Add(1) }

// Record increments the counter matching the outcome's kind.
func (a *Aggregator) Record(o domain.Outcome) {
	switch o.Kind {
	case domain.KindSuccess:
		a.RecordSuccess()
	case domain.KindTimeout:
		a.RecordTimeout()
	default:
		a.RecordError()
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Success int64 `json:"success"`
	Timeout int64 `json:"timeout"`
	Error   int64 `json:"error"`
}

func (s Snapshot) Total() int64 {
	return s.Success + s.Timeout + s.Error
}

func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		Success: a.success.Load(),
		Timeout: a.timeout.Load(),
		Error:   a.errors.Load(),
	}
}

// Text is the end-of-run block, also used as the notification body.
func (s Snapshot) Text() string {
	return fmt.Sprintf("Success: %d\nTimeout: %d\nError: %d", s.Success, s.Timeout, s.Error)
}

// Print writes the end-of-run report block.
func Print(w io.Writer, s Snapshot) {
	fmt.Fprintf(w, "\n--- Report ---\n%s\n---\n", s.Text())
}
