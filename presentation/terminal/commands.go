package terminal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"e2e_locators/application/facade"
	"e2e_locators/application/runner"
	"e2e_locators/application/suites"
	"e2e_locators/domain/entities"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type targetFlags struct {
	fixtures  bool
	editURL   string
	sampleURL string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.fixtures, "fixtures", false, "point every procedure at the bundled sample pages")
	cmd.Flags().StringVar(&f.editURL, "edit-url", "", "page used by the input field procedure")
	cmd.Flags().StringVar(&f.sampleURL, "sample-url", "", "base URL serving the sample pages (served locally when empty)")
}

func (f *targetFlags) apply(cmd *cobra.Command, a *App) {
	if cmd.Flags().Changed("edit-url") {
		a.cfg.Targets.Edit = f.editURL
	}
	if cmd.Flags().Changed("sample-url") {
		a.cfg.Targets.SampleURL = f.sampleURL
	}
}

func (a *App) runCommand() *cobra.Command {
	var (
		targets  targetFlags
		parallel int
		timeout  time.Duration
		observe  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run [procedure...]",
		Short: "Run procedures, all of them when none is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets.apply(cmd, a)
			if cmd.Flags().Changed("parallel") {
				a.cfg.Run.Parallel = parallel
			}
			if cmd.Flags().Changed("timeout") {
				a.cfg.Timeouts.Procedure = timeout
			}
			if cmd.Flags().Changed("observe") {
				a.cfg.Run.Observe = observe
			}

			report, err := a.runOnce(cmd.Context(), args, targets.fixtures)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderReport(report))
			if !report.Passed() {
				return ErrRunFailed
			}
			return nil
		},
	}
	targets.register(cmd)
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "procedures running at once")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound on a single procedure")
	cmd.Flags().DurationVar(&observe, "observe", 0, "pause at observation points")
	return cmd
}

// runOnce executes the selected procedures and stores the report
func (a *App) runOnce(ctx context.Context, names []string, fixtures bool) (*entities.RunReport, error) {
	targets, stop, err := a.targets(fixtures)
	if err != nil {
		return nil, err
	}
	defer stop()

	procs, err := runner.Select(suites.Catalog(targets), names)
	if err != nil {
		return nil, err
	}

	factory, closeFactory, err := a.openFactory()
	if err != nil {
		return nil, err
	}
	defer closeFactory()

	report := runner.NewRunner(factory, a.runnerOptions(), a.logger).Run(ctx, procs)

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if err := store.SaveReport(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

// targets resolves the page URLs, serving the bundled pages when no sample
// URL is configured.
func (a *App) targets(fixtures bool) (suites.Targets, func(), error) {
	cfg := a.cfg.Targets
	if cfg.SampleURL != "" && !fixtures {
		t := suites.FixtureTargets(cfg.SampleURL)
		t.Edit = cfg.Edit
		return t, func() {}, nil
	}

	base, stop, err := serveFixtures(a.logger)
	if err != nil {
		return suites.Targets{}, nil, err
	}
	t := suites.FixtureTargets(base)
	if !fixtures {
		t.Edit = cfg.Edit
	}
	return t, stop, nil
}

func serveFixtures(logger *logrus.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to serve sample pages: %w", err)
	}
	srv := &http.Server{
		Handler:           suites.FixtureHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("sample page server stopped")
		}
	}()

	base := "http://" + ln.Addr().String()
	logger.WithField("url", base).Debug("serving sample pages")
	return base, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func (a *App) listCommand() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available procedures",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := procedureMarkdown(suites.Catalog(suites.DefaultTargets()))
			if plain {
				fmt.Fprint(a.out, doc)
				return nil
			}
			rendered, err := renderMarkdown(doc)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without styling")
	return cmd
}

func (a *App) locateCommand() *cobra.Command {
	var url, selector, within string
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve a selector on a page and describe every match",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := entities.ParseSelector(selector)
			if err != nil {
				return err
			}
			var parent entities.Selector
			if within != "" {
				if parent, err = entities.ParseSelector(within); err != nil {
					return err
				}
			}

			infos, err := a.locate(cmd.Context(), url, parent, sel)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderMatches(infos))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "page to open")
	cmd.Flags().StringVarP(&selector, "selector", "s", "", `selector, e.g. '#id', '//input', 'text=Sign in' or 'role=button[name="Submit"]'`)
	cmd.Flags().StringVar(&within, "within", "", "resolve the selector inside the matches of this one")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("selector")
	return cmd
}

func (a *App) locate(ctx context.Context, url string, parent, sel entities.Selector) ([]entities.ElementInfo, error) {
	factory, closeFactory, err := a.openFactory()
	if err != nil {
		return nil, err
	}
	defer closeFactory()

	engine, err := factory.NewEngine(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", factory.Name(), err)
	}
	defer engine.Close()

	page := facade.NewPage(engine, a.pageOptions(), a.logger)
	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	loc := page.Locator(sel)
	if parent != nil {
		loc = page.Locator(parent).Locator(sel)
	}
	return loc.Describe(ctx)
}

func (a *App) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.LoadHistory()
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			if len(reports) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No runs recorded"))
				return nil
			}
			if limit > 0 && len(reports) > limit {
				reports = reports[len(reports)-limit:]
			}
			fmt.Fprintln(a.out, renderHistory(reports))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "runs to show, 0 for all")
	return cmd
}

func (a *App) scheduleCommand() *cobra.Command {
	var (
		targets targetFlags
		spec    string
	)
	cmd := &cobra.Command{
		Use:   "schedule [procedure...]",
		Short: "Run procedures on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets.apply(cmd, a)
			if !cmd.Flags().Changed("cron") {
				spec = a.cfg.Schedule.Cron
			}
			if spec == "" {
				return errors.New("no cron schedule given")
			}
			if _, err := runner.Select(suites.Catalog(suites.DefaultTargets()), args); err != nil {
				return err
			}
			return a.schedule(cmd.Context(), spec, args, targets.fixtures)
		},
	}
	targets.register(cmd)
	cmd.Flags().StringVar(&spec, "cron", "", `standard cron spec, e.g. "*/30 * * * *" or "@hourly"`)
	return cmd
}

func (a *App) schedule(ctx context.Context, spec string, names []string, fixtures bool) error {
	logger := cronLogger{entry: a.logger.WithField("component", "scheduler")}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(spec, func() {
		report, err := a.runOnce(ctx, names, fixtures)
		if err != nil {
			logger.entry.WithError(err).Error("scheduled run failed")
			return
		}
		logger.entry.WithFields(logrus.Fields{
			"report": report.ID,
			"passed": report.Passed(),
		}).Info("scheduled run finished")
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c.Start()
	logger.entry.WithField("cron", spec).Info("scheduler started")
	<-ctx.Done()
	<-c.Stop().Done()
	logger.entry.Info("scheduler stopped")
	return nil
}

// cronLogger routes the scheduler's own logging through logrus
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(kvFields(keysAndValues)).Error(msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
