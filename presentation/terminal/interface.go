// Package terminal is the e2e command line: it loads configuration, sets up
// logging and wires engines, runner, suites and report storage together.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"e2e_locators/application/facade"
	"e2e_locators/application/runner"
	"e2e_locators/domain/interfaces"
	"e2e_locators/infrastructure/browser"
	"e2e_locators/infrastructure/config"
	"e2e_locators/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrRunFailed is returned when at least one procedure did not pass
var ErrRunFailed = errors.New("run failed")

type factoryFunc func(name string, opts browser.Options, logger *logrus.Logger) (interfaces.EngineFactory, error)

// App holds what every command shares once the configuration is loaded
type App struct {
	cfg        *config.Config
	logger     *logrus.Logger
	out        io.Writer
	errOut     io.Writer
	newFactory factoryFunc

	configPath string
	engine     string
	browser    string
	logLevel   string
	headless   bool
	reportDir  string
	backend    string
}

// NewRootCommand builds the e2e command tree writing to out and errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &App{out: out, errOut: errOut, newFactory: browser.NewFactory}

	root := &cobra.Command{
		Use:           "e2e",
		Short:         "Run browser end-to-end procedures built on locators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default e2e.yaml when present)")
	flags.StringVar(&a.engine, "engine", "", "engine: "+fmt.Sprint(browser.EngineNames()))
	flags.StringVar(&a.browser, "browser", "", "playwright browser: chromium, firefox or webkit")
	flags.StringVar(&a.logLevel, "log-level", "", "log level")
	flags.BoolVar(&a.headless, "headless", true, "run the browser without a window")
	flags.StringVar(&a.reportDir, "report-dir", "", "directory holding run reports")
	flags.StringVar(&a.backend, "report-backend", "", "report storage: json or sqlite")

	root.AddCommand(
		a.runCommand(),
		a.listCommand(),
		a.locateCommand(),
		a.historyCommand(),
		a.scheduleCommand(),
	)
	return root
}

// Execute runs the command line until it finishes or an interrupt arrives
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = a.engine
	}
	if flags.Changed("browser") {
		cfg.Browser.Name = a.browser
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = a.headless
	}
	if flags.Changed("report-dir") {
		cfg.Reports.Dir = a.reportDir
	}
	if flags.Changed("report-backend") {
		cfg.Reports.Backend = a.backend
	}

	logger, err := newLogger(cfg.LogLevel, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger, nil
}

func (a *App) browserOptions() browser.Options {
	b := a.cfg.Browser
	return browser.Options{
		Browser:        b.Name,
		Headless:       b.Headless,
		SlowMo:         b.SlowMo,
		ViewportWidth:  b.ViewportWidth,
		ViewportHeight: b.ViewportHeight,
		BrowserPath:    b.Path,
		DriverPath:     b.DriverPath,
		DriverPort:     b.DriverPort,
		HTTPTimeout:    a.cfg.Timeouts.HTTP,
	}
}

func (a *App) pageOptions() facade.Options {
	t := a.cfg.Timeouts
	return facade.Options{
		NavigationTimeout: t.Navigation,
		WaitTimeout:       t.Wait,
		ExpectTimeout:     t.Expect,
		PollInterval:      t.Poll,
	}
}

func (a *App) runnerOptions() runner.Options {
	return runner.Options{
		Parallel: a.cfg.Run.Parallel,
		Timeout:  a.cfg.Timeouts.Procedure,
		Observe:  a.cfg.Run.Observe,
		Page:     a.pageOptions(),
	}
}

func (a *App) openFactory() (interfaces.EngineFactory, func(), error) {
	factory, err := a.newFactory(a.cfg.Engine, a.browserOptions(), a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s engine: %w", a.cfg.Engine, err)
	}
	closeFn := func() {
		if err := factory.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close engine factory")
		}
	}
	return factory, closeFn, nil
}

func (a *App) openStore() (interfaces.ReportStore, error) {
	r := a.cfg.Reports
	store, err := storage.Open(r.Backend, r.Dir, r.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}
	return store, nil
}
