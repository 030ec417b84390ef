// Command pingsweep probes every URL of a list or sitemap with HTTP GET,
// optionally in concurrent bunches and over several repeats, and prints a
// success/timeout/error report.
//
// Usage:
//
//	pingsweep [flags] <file-path-or-url>
//	pingsweep validate [flags] <file-path-or-url>
//	pingsweep version
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hamed0406/pingsweep/internal/config"
	"github.com/hamed0406/pingsweep/internal/source"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pingsweep [flags] <file-path-or-url>",
		Short: "Ping every URL of a list or sitemap and report reachability",
		Long: `pingsweep sends an HTTP GET to every URL read from a file or URL.

URLs are probed in bunches: all URLs of a bunch run concurrently and the next
bunch starts once every probe of the current one has settled. The whole sweep
can be repeated. Any HTTP status counts as a success; only timeouts and
transport errors count as failures.

Examples:
  pingsweep urls.txt
  pingsweep -b 10 -r 3 -t 2.5 urls.txt
  pingsweep -s -g https://example.com/sitemap.xml.gz`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runPing,
	}
	addRunFlags(root.Flags())

	root.AddCommand(newValidateCmd(), newVersionCmd())
	return root
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.IntP("bunch", "b", config.DefaultBunch, "group requests by bunches of <n> executed simultaneously")
	fs.IntP("repeat", "r", config.DefaultRepeat, "number of times URLs are pinged")
	fs.Float64P("timeout", "t", config.DefaultTimeout, "seconds before a request times out")
	fs.BoolP("sitemap", "s", false, "parse input as an XML sitemap")
	fs.BoolP("gzip", "g", false, "input is gzip (or zlib) compressed")
	fs.String("charset", "utf-8", "charset of a plain URL list: "+strings.Join(source.Charsets, ", "))
	fs.Bool("http3", false, "probe over HTTP/3 (QUIC)")
	fs.Bool("diagnose-dns", false, "add the DNS class of the host to error lines")
	fs.String("listen", "", "serve the live report API on this address, e.g. :8080")
	fs.StringSlice("api-key", nil, "key required by the report API (repeatable)")
	fs.String("slack-webhook", "", "post the final report to this Slack webhook")
	fs.String("log-dir", "", "write a rotating JSON log to this directory")
	fs.String("log-level", config.DefaultLogLevel, "stderr log level: debug, info, warn, error")
	fs.StringP("config", "c", "", "YAML file with default settings")
}

// loadConfig layers defaults, PINGSWEEP_* variables, the YAML file and the
// flags that were set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	fs := cmd.Flags()
	cfg := config.FromEnv()

	if path, _ := fs.GetString("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, path); err != nil {
			return cfg, err
		}
	}

	if fs.Changed("bunch") {
		cfg.Bunch, _ = fs.GetInt("bunch")
	}
	if fs.Changed("repeat") {
		cfg.Repeat, _ = fs.GetInt("repeat")
	}
	if fs.Changed("timeout") {
		cfg.Timeout, _ = fs.GetFloat64("timeout")
	}
	if fs.Changed("sitemap") {
		cfg.Sitemap, _ = fs.GetBool("sitemap")
	}
	if fs.Changed("gzip") {
		cfg.Gzip, _ = fs.GetBool("gzip")
	}
	if fs.Changed("charset") {
		cfg.Charset, _ = fs.GetString("charset")
	}
	if fs.Changed("http3") {
		cfg.HTTP3, _ = fs.GetBool("http3")
	}
	if fs.Changed("diagnose-dns") {
		cfg.DiagnoseDNS, _ = fs.GetBool("diagnose-dns")
	}
	if fs.Changed("listen") {
		cfg.Listen, _ = fs.GetString("listen")
	}
	if fs.Changed("api-key") {
		cfg.APIKeys, _ = fs.GetStringSlice("api-key")
	}
	if fs.Changed("slack-webhook") {
		cfg.SlackWebhook, _ = fs.GetString("slack-webhook")
	}
	if fs.Changed("log-dir") {
		cfg.LogDir, _ = fs.GetString("log-dir")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}

	if len(args) > 0 {
		cfg.PathOrURL = args[0]
	}
	return cfg, cfg.Validate()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pingsweep %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
