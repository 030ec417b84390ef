package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pingsweep/internal/domain"
	"github.com/hamed0406/pingsweep/internal/source"
)

const (
	DefaultTimeout  = 5.0 // seconds
	DefaultRepeat   = 1
	DefaultBunch    = 1
	DefaultLogLevel = "warn"
)

// maxTimeout is the largest timeout, in seconds, a time.Duration can hold.
var maxTimeout = float64(math.MaxInt64) / float64(time.Second)

type Config struct {
	PathOrURL string `yaml:"-"`

	Timeout float64 `yaml:"timeout"` // seconds per probe
	Repeat  int     `yaml:"repeat"`  // full sweeps
	Bunch   int     `yaml:"bunch"`   // probes in flight per bunch

	Gzip    bool   `yaml:"gzip"`
	Sitemap bool   `yaml:"sitemap"`
	Charset string `yaml:"charset"`

	HTTP3       bool `yaml:"http3"`
	DiagnoseDNS bool `yaml:"diagnose_dns"`

	Listen       string   `yaml:"listen"`        // report API address, empty disables it
	APIKeys      []string `yaml:"api_keys"`      // accepted by the report API
	SlackWebhook string   `yaml:"slack_webhook"` // end-of-run summary

	LogDir   string `yaml:"log_dir"` // rotating JSON log, empty disables it
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Timeout:  DefaultTimeout,
		Repeat:   DefaultRepeat,
		Bunch:    DefaultBunch,
		Charset:  "utf-8",
		LogLevel: DefaultLogLevel,
	}
}

// FromEnv starts from Default and applies PINGSWEEP_* variables. Values that
// do not parse are ignored.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("PINGSWEEP_TIMEOUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeout = f
		}
	}
	if v := os.Getenv("PINGSWEEP_REPEAT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Repeat = n
		}
	}
	if v := os.Getenv("PINGSWEEP_BUNCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bunch = n
		}
	}
	if v := os.Getenv("PINGSWEEP_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("PINGSWEEP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PINGSWEEP_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PINGSWEEP_API_KEYS"); v != "" {
		cfg.APIKeys = splitCSV(v)
	}
	if v := os.Getenv("PINGSWEEP_SLACK_WEBHOOK"); v != "" {
		cfg.SlackWebhook = v
	}
	return cfg
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current value.
func LoadFile(cfg Config, path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: failed to read %s: %v", domain.ErrConfiguration, path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrConfiguration, path, err)
	}
	return cfg, nil
}

// Validate reports every violation at once; the result wraps
// domain.ErrConfiguration.
func (c Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.PathOrURL) == "" {
		errs = multierr.Append(errs, fmt.Errorf("no path or url given"))
	}
	if c.Bunch < 1 {
		errs = multierr.Append(errs, fmt.Errorf("bunches must contain at least 1 request (got %d)", c.Bunch))
	}
	if c.Repeat < 0 {
		errs = multierr.Append(errs, fmt.Errorf("repeat must be >= 0 (got %d)", c.Repeat))
	}
	switch {
	case math.IsNaN(c.Timeout) || c.Timeout <= 0:
		errs = multierr.Append(errs, fmt.Errorf("timeout must be > 0 seconds (got %g)", c.Timeout))
	case c.Timeout >= maxTimeout:
		errs = multierr.Append(errs, fmt.Errorf("timeout must be < %.0f seconds (got %g)", maxTimeout, c.Timeout))
	}
	if !source.ValidCharset(c.Charset) {
		errs = multierr.Append(errs, fmt.Errorf("unsupported charset %q (want one of %s)", c.Charset, strings.Join(source.Charsets, ", ")))
	}
	if errs == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, errs)
}

func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

func (c Config) SourceOptions() source.Options {
	return source.Options{Gzip: c.Gzip, Sitemap: c.Sitemap, Charset: c.Charset}
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
