// Package config loads settings from defaults, an optional YAML file, an
// optional .env file and E2E_* environment variables, in increasing order of
// precedence. Command line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "e2e.yaml"
	DefaultEditURL    = "https://letcode.in/edit"
)

type Config struct {
	Engine   string         `yaml:"engine"`
	LogLevel string         `yaml:"log_level"`
	Browser  BrowserConfig  `yaml:"browser"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Run      RunConfig      `yaml:"run"`
	Reports  ReportConfig   `yaml:"reports"`
	Targets  TargetConfig   `yaml:"targets"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type BrowserConfig struct {
	// Name selects the playwright browser: chromium, firefox or webkit
	Name           string        `yaml:"name"`
	Headless       bool          `yaml:"headless"`
	SlowMo         time.Duration `yaml:"slow_mo"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	Path           string        `yaml:"path"`
	DriverPath     string        `yaml:"driver_path"`
	DriverPort     int           `yaml:"driver_port"`
}

type TimeoutConfig struct {
	Navigation time.Duration `yaml:"navigation"`
	Wait       time.Duration `yaml:"wait"`
	Expect     time.Duration `yaml:"expect"`
	Poll       time.Duration `yaml:"poll"`
	Procedure  time.Duration `yaml:"procedure"`
	HTTP       time.Duration `yaml:"http"`
}

type RunConfig struct {
	Parallel int `yaml:"parallel"`
	// Observe pauses procedures at their observation points
	Observe time.Duration `yaml:"observe"`
}

type ReportConfig struct {
	Dir     string `yaml:"dir"`
	Backend string `yaml:"backend"`
	Limit   int    `yaml:"limit"`
}

// TargetConfig holds the page URLs of the bundled procedures. An empty
// SampleURL serves the bundled sample pages locally.
type TargetConfig struct {
	Edit      string `yaml:"edit"`
	SampleURL string `yaml:"sample_url"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Engine:   "playwright",
		LogLevel: "info",
		Browser: BrowserConfig{
			Name:           "chromium",
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			DriverPort:     9515,
		},
		Timeouts: TimeoutConfig{
			Navigation: 30 * time.Second,
			Wait:       5 * time.Second,
			Expect:     5 * time.Second,
			Poll:       100 * time.Millisecond,
			HTTP:       30 * time.Second,
		},
		Run: RunConfig{Parallel: 1},
		Reports: ReportConfig{
			Dir:     ".e2e/reports",
			Backend: "json",
			Limit:   50,
		},
		Targets: TargetConfig{Edit: DefaultEditURL},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// E2E_CONFIG or e2e.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, ok := os.LookupEnv("E2E_CONFIG"); ok && p != "" {
			path, explicit = p, true
		} else {
			path = DefaultConfigFile
		}
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("E2E_ENGINE", &c.Engine)
	str("E2E_LOG_LEVEL", &c.LogLevel)

	str("E2E_BROWSER", &c.Browser.Name)
	boolean("E2E_HEADLESS", &c.Browser.Headless)
	duration("E2E_SLOW_MO", &c.Browser.SlowMo)
	if v, ok := lookup("E2E_VIEWPORT"); ok && v != "" {
		w, h, err := ParseViewport(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("E2E_VIEWPORT: %w", err))
		} else {
			c.Browser.ViewportWidth, c.Browser.ViewportHeight = w, h
		}
	}
	str("E2E_BROWSER_PATH", &c.Browser.Path)
	str("E2E_DRIVER_PATH", &c.Browser.DriverPath)
	integer("E2E_DRIVER_PORT", &c.Browser.DriverPort)

	duration("E2E_NAVIGATION_TIMEOUT", &c.Timeouts.Navigation)
	duration("E2E_WAIT_TIMEOUT", &c.Timeouts.Wait)
	duration("E2E_EXPECT_TIMEOUT", &c.Timeouts.Expect)
	duration("E2E_POLL_INTERVAL", &c.Timeouts.Poll)
	duration("E2E_PROCEDURE_TIMEOUT", &c.Timeouts.Procedure)
	duration("E2E_HTTP_TIMEOUT", &c.Timeouts.HTTP)

	integer("E2E_PARALLEL", &c.Run.Parallel)
	duration("E2E_OBSERVE", &c.Run.Observe)

	str("E2E_REPORT_DIR", &c.Reports.Dir)
	str("E2E_REPORT_BACKEND", &c.Reports.Backend)
	integer("E2E_REPORT_LIMIT", &c.Reports.Limit)

	str("E2E_EDIT_URL", &c.Targets.Edit)
	str("E2E_SAMPLE_URL", &c.Targets.SampleURL)
	str("E2E_SCHEDULE", &c.Schedule.Cron)

	return errors.Join(errs...)
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	var errs []error
	if c.Run.Parallel < 1 {
		errs = append(errs, fmt.Errorf("run.parallel must be at least 1, got %d", c.Run.Parallel))
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight))
	}
	for name, d := range map[string]time.Duration{
		"navigation": c.Timeouts.Navigation,
		"wait":       c.Timeouts.Wait,
		"expect":     c.Timeouts.Expect,
		"poll":       c.Timeouts.Poll,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timeouts.%s must be positive, got %s", name, d))
		}
	}
	switch c.Reports.Backend {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("reports.backend must be json or sqlite, got %q", c.Reports.Backend))
	}
	return errors.Join(errs...)
}

// ParseViewport parses "WIDTHxHEIGHT"
func ParseViewport(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("viewport %q is not WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("viewport width: %w", err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("viewport height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("viewport %q must be positive", s)
	}
	return width, height, nil
}
