package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/pingsweep/internal/source"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flags] <file-path-or-url>",
		Short: "Check the configuration and the URL source without probing",
		Long: `Resolve the configuration and read, decompress and parse the URL source
exactly like a run would, then print a summary. No URL is probed.

Exit codes:
  0 - configuration and source are usable
  1 - configuration or source error (details on stderr)`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runValidate,
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ok := func(format string, a ...any) { fmt.Fprintf(out, "✔ "+format+"\n", a...) }
	warn := func(format string, a ...any) { fmt.Fprintf(out, "⚠ "+format+"\n", a...) }

	ok("configuration valid (bunch=%d repeat=%d timeout=%gs)", cfg.Bunch, cfg.Repeat, cfg.Timeout)

	urls, err := source.Resolve(context.Background(), cfg.PathOrURL, cfg.SourceOptions())
	if err != nil {
		return err
	}
	ok("source %s: %d URL(s)", cfg.PathOrURL, len(urls))

	if len(urls) == 0 {
		warn("source contains no URLs; the run will probe nothing")
	}
	if cfg.Repeat == 0 {
		warn("repeat is 0; no probes will be dispatched")
	}
	if len(urls) > 0 && cfg.Bunch > len(urls) {
		warn("bunch %d is larger than the URL count; every sweep is a single bunch", cfg.Bunch)
	}
	if cfg.Listen == "" && len(cfg.APIKeys) > 0 {
		warn("api keys are set but --listen is empty; the report API is disabled")
	}
	if cfg.Listen != "" && len(cfg.APIKeys) == 0 {
		warn("report API on %s accepts unauthenticated requests", cfg.Listen)
	}

	ok("planned probes: %d", len(urls)*cfg.Repeat)
	return nil
}
