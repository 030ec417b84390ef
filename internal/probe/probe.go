package probe

import (
	"context"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// Checker performs one probe against a target URL.
//
// Implementations never return an error: every failure path is folded into
// the returned Outcome, so a single bad target cannot stop a bunch.
type Checker interface {
	Check(ctx context.Context, target string) domain.Outcome
}
