package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/pingsweep/internal/config"
	"github.com/hamed0406/pingsweep/internal/httpapi"
	"github.com/hamed0406/pingsweep/internal/logging"
	"github.com/hamed0406/pingsweep/internal/notify"
	"github.com/hamed0406/pingsweep/internal/probe"
	"github.com/hamed0406/pingsweep/internal/report"
	"github.com/hamed0406/pingsweep/internal/scheduler"
	"github.com/hamed0406/pingsweep/internal/source"
)

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	logger, err := logging.NewLogger(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.LogLevel,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printConfiguration(out, cfg)

	// probes are never cancelled from above; each one carries its own timeout
	ctx := context.Background()

	fmt.Fprintln(out, "Reading file...")
	urls, err := source.Resolve(ctx, cfg.PathOrURL, cfg.SourceOptions())
	if err != nil {
		logger.Error("resolve_failed", zap.String("source", cfg.PathOrURL), zap.Error(err))
		return err
	}
	fmt.Fprintf(out, "Found %d URL(s)\n", len(urls))

	checker := newChecker(cfg)
	defer checker.Close()

	var chk probe.Checker = checker
	if cfg.DiagnoseDNS {
		chk = probe.NewDNSDiagnoser(checker)
	}

	runner := scheduler.NewRunner(logger, chk, report.New(), cfg.Bunch, out)

	if cfg.Listen != "" {
		api := httpapi.NewServer(logger, runner.Report, runner, cfg.APIKeys)
		addr, err := api.Start(cfg.Listen)
		if err != nil {
			return fmt.Errorf("report api: %w", err)
		}
		defer func() {
			if err := api.Shutdown(context.Background()); err != nil {
				logger.Warn("api_shutdown_error", zap.Error(err))
			}
		}()
		fmt.Fprintf(out, "Report API listening on http://%s/api/report\n", addr)
	}

	snap := runner.RunAll(ctx, urls, cfg.Repeat)
	report.Print(out, snap)

	if n := newNotifiers(cfg); len(n) > 0 {
		if err := notify.SendReport(ctx, n, runner.RunID, snap); err != nil {
			logger.Warn("notify_failed", zap.String("run_id", runner.RunID), zap.Error(err))
		}
	}
	return nil
}

// newNotifiers returns the configured summary destinations, empty when none.
func newNotifiers(cfg config.Config) notify.Multi {
	var n notify.Multi
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		n = append(n, slack)
	}
	return n
}

func newChecker(cfg config.Config) *probe.HTTPChecker {
	if cfg.HTTP3 {
		return probe.NewHTTP3Checker(cfg.TimeoutDuration())
	}
	return probe.NewHTTPChecker(cfg.TimeoutDuration())
}

func printConfiguration(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "--- Configuration ---")
	fmt.Fprintf(w, "File path: %s\n", cfg.PathOrURL)
	fmt.Fprintf(w, "Repeat: %d time(s)\n", cfg.Repeat)
	fmt.Fprintf(w, "Sitemap: %t\n", cfg.Sitemap)
	fmt.Fprintf(w, "Timeout: %g second(s)\n", cfg.Timeout)
	fmt.Fprintf(w, "Compressed: %t\n", cfg.Gzip)
	fmt.Fprintf(w, "Bunch: %d\n", cfg.Bunch)
	if cfg.HTTP3 {
		fmt.Fprintln(w, "Protocol: HTTP/3")
	}
	fmt.Fprint(w, "---\n\n")
}
