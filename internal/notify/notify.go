package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/hamed0406/pingsweep/internal/report"
)

// Notifier delivers a titled run summary to one destination.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a summary out to every configured destination. A failing
// destination does not stop the others; all failures are combined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}

// SendReport posts the end-of-run counters.
func SendReport(ctx context.Context, n Notifier, runID string, snap report.Snapshot) error {
	text := fmt.Sprintf("%s\nTotal: %d\nRun: %s", snap.Text(), snap.Total(), runID)
	return n.Send(ctx, "pingsweep report", text)
}
