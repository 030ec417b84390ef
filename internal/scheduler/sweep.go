package scheduler

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/pingsweep/internal/domain"
	"github.com/hamed0406/pingsweep/internal/probe"
	"github.com/hamed0406/pingsweep/internal/report"
)

// Runner drives a run: repeats in sequence, each repeat a sweep of bunches in
// sequence, each bunch a set of concurrent probes joined before the next one
// starts. Probe failures are counted, never propagated.
type Runner struct {
	Logger    *zap.Logger
	Checker   probe.Checker
	Report    *report.Aggregator
	BunchSize int
	Out       io.Writer
	RunID     string

	outMu sync.Mutex
	prog  progress
}

type progress struct {
	repeat     atomic.Int64
	repeats    atomic.Int64
	bunch      atomic.Int64
	bunches    atomic.Int64
	dispatched atomic.Int64
	settled    atomic.Int64
	planned    atomic.Int64
	started    atomic.Int64 // unix nanos
	finished   atomic.Bool
}

func NewRunner(
	logger *zap.Logger,
	checker probe.Checker,
	rep *report.Aggregator,
	bunchSize int,
	out io.Writer,
) *Runner {
	if bunchSize < 1 {
		bunchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rep == nil {
		rep = report.New()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		Logger:    logger,
		Checker:   checker,
		Report:    rep,
		BunchSize: bunchSize,
		Out:       out,
		RunID:     uuid.NewString(),
	}
}

// RunAll sweeps urls repeat times. Repeat k+1 never starts before every probe
// of repeat k has settled. With repeat <= 0 nothing is dispatched.
func (r *Runner) RunAll(ctx context.Context, urls []string, repeat int) report.Snapshot {
	if repeat < 0 {
		repeat = 0
	}
	r.prog.repeats.Store(int64(repeat))
	r.prog.bunches.Store(int64(bunchCount(len(urls), r.BunchSize)))
	r.prog.planned.Store(int64(len(urls)) * int64(repeat))
	r.prog.started.Store(time.Now().UnixNano())

	log := r.Logger.With(zap.String("run_id", r.RunID))
	log.Info("run_started",
		zap.Int("urls", len(urls)),
		zap.Int("repeat", repeat),
		zap.Int("bunch", r.BunchSize),
	)
	start := time.Now()

	for k := 0; k < repeat; k++ {
		r.prog.repeat.Store(int64(k))
		r.printf("Pinging urls, %d iteration(s) remaining after this one...\n", repeat-k-1)
		r.RunSweep(ctx, urls, k)
	}

	r.prog.finished.Store(true)
	snap := r.Report.Snapshot()
	log.Info("run_finished",
		zap.Int64("success", snap.Success),
		zap.Int64("timeout", snap.Timeout),
		zap.Int64("error", snap.Error),
		zap.Duration("took", time.Since(start)),
	)
	return snap
}

// RunSweep probes every url once, bunch by bunch.
func (r *Runner) RunSweep(ctx context.Context, urls []string, repeatIdx int) {
	remaining := len(urls)
	for i, b := range Bunches(urls, r.BunchSize) {
		remaining -= len(b)
		r.prog.bunch.Store(int64(i))
		if r.BunchSize != 1 {
			r.printf("Running %d concurrent pings (%d URLs remaining)...\n", len(b), remaining)
		}
		r.runBunch(ctx, b, repeatIdx, i)
	}
}

// runBunch is the only join point: it waits for exactly this bunch's probes.
func (r *Runner) runBunch(ctx context.Context, bunch []string, repeatIdx, bunchIdx int) {
	r.Logger.Debug("bunch_start",
		zap.String("run_id", r.RunID),
		zap.Int("repeat", repeatIdx),
		zap.Int("bunch", bunchIdx),
		zap.Int("size", len(bunch)),
	)

	var wg sync.WaitGroup
	for _, u := range bunch {
		wg.Add(1)
		r.prog.dispatched.Add(1)
		go func(target string) {
			defer wg.Done()
			r.probe(ctx, target, repeatIdx, bunchIdx)
		}(u)
	}
	wg.Wait()
}

// probe runs one check, records it exactly once and reports it.
func (r *Runner) probe(ctx context.Context, target string, repeatIdx, bunchIdx int) domain.Outcome {
	out := r.safeCheck(ctx, target)
	out.URL = target
	out.Repeat = repeatIdx
	out.Bunch = bunchIdx

	r.Report.Record(out)
	r.prog.settled.Add(1)

	r.printf("%s\n", out.Line())
	fields := []zap.Field{
		zap.String("run_id", r.RunID),
		zap.String("url", target),
		zap.String("outcome", out.Kind.String()),
		zap.Int("repeat", repeatIdx),
		zap.Int("bunch", bunchIdx),
	}
	switch out.Kind {
	case domain.KindSuccess:
		fields = append(fields, zap.Int("status", out.StatusCode), zap.Duration("elapsed", out.Elapsed))
	case domain.KindError:
		fields = append(fields, zap.Error(out.Cause))
	}
	r.Logger.Info("probe_settled", fields...)
	return out
}

// safeCheck turns a panicking checker into an Error outcome so the bunch
// barrier is always reached.
func (r *Runner) safeCheck(ctx context.Context, target string) (out domain.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			correlationID := uuid.NewString()
			r.Logger.Error("checker_panic",
				zap.String("run_id", r.RunID),
				zap.String("correlation_id", correlationID),
				zap.String("url", target),
				zap.String("panic", fmt.Sprintf("%v", p)),
				zap.ByteString("stack", debug.Stack()),
			)
			out = domain.Failure(target, fmt.Errorf("checker panic (correlation_id: %s)", correlationID))
		}
	}()
	return r.Checker.Check(ctx, target)
}

func (r *Runner) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.Out, format, args...)
}

// Bunches splits urls into consecutive groups of size; the last group may be
// shorter. The groups share urls' backing array.
func Bunches(urls []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	out := make([][]string, 0, bunchCount(len(urls), size))
	for i := 0; i < len(urls); i += size {
		end := min(i+size, len(urls))
		out = append(out, urls[i:end:end])
	}
	return out
}

func bunchCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	return (n + size - 1) / size
}
