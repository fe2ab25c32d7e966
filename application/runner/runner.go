// Package runner executes named test procedures, each against its own
// engine, and aggregates their outcomes into a run report.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"e2e_locators/application/facade"
	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Session is what a procedure gets to work with
type Session struct {
	Page   *facade.Page
	Logger *logrus.Entry

	observe time.Duration
}

// Observe pauses for the configured observation delay, letting a human
// watch a headed browser between steps. It is a no-op by default.
func (s *Session) Observe(ctx context.Context) error {
	return s.Page.Pause(ctx, s.observe)
}

// Procedure is a linear test: it returns on the first failure
type Procedure struct {
	Name        string
	Description string
	Run         func(ctx context.Context, s *Session) error
}

// Options configures a run
type Options struct {
	// Parallel bounds how many procedures run at once; values below 1 mean 1
	Parallel int
	// Timeout bounds a single procedure; zero means no bound
	Timeout time.Duration
	// Observe is the pause Session.Observe waits for
	Observe time.Duration
	Page    facade.Options
}

type Runner struct {
	factory interfaces.EngineFactory
	opts    Options
	logger  *logrus.Logger
	now     func() time.Time
}

// NewRunner - creates new runner instance
func NewRunner(factory interfaces.EngineFactory, opts Options, logger *logrus.Logger) *Runner {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{
		factory: factory,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes procs and reports every outcome. A failing or panicking
// procedure does not stop the others; once ctx is done the procedures not
// yet started are skipped.
func (r *Runner) Run(ctx context.Context, procs []Procedure) *entities.RunReport {
	started := r.now()
	report := &entities.RunReport{
		ID:        started.UTC().Format("20060102T150405.000Z"),
		Engine:    r.factory.Name(),
		StartedAt: started,
		Results:   make([]entities.ProcedureResult, len(procs)),
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Parallel)
	for i, proc := range procs {
		report.Results[i] = entities.ProcedureResult{Name: proc.Name, Status: entities.ResultPending}
		g.Go(func() error {
			report.Results[i] = r.runOne(ctx, proc)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = r.now()
	r.logger.WithFields(logrus.Fields{
		"passed":  report.Count(entities.ResultPassed),
		"failed":  report.Count(entities.ResultFailed),
		"skipped": report.Count(entities.ResultSkipped),
	}).Info("run finished")
	return report
}

func (r *Runner) runOne(ctx context.Context, proc Procedure) (result entities.ProcedureResult) {
	logger := r.logger.WithField("procedure", proc.Name)
	result = entities.ProcedureResult{Name: proc.Name, StartedAt: r.now()}

	if err := ctx.Err(); err != nil {
		result.Status = entities.ResultSkipped
		result.Error = err.Error()
		return result
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	err := r.execute(ctx, proc, logger)
	result.Duration = r.now().Sub(result.StartedAt)
	if err != nil {
		result.Status = entities.ResultFailed
		result.Error = err.Error()
		logger.WithError(err).Error("procedure failed")
		return result
	}
	result.Status = entities.ResultPassed
	logger.WithField("duration", result.Duration).Info("procedure passed")
	return result
}

// execute runs proc on a fresh engine and turns a panic into an error
func (r *Runner) execute(ctx context.Context, proc Procedure, logger *logrus.Entry) (err error) {
	if proc.Run == nil {
		return fmt.Errorf("procedure %q has no body", proc.Name)
	}

	engine, err := r.factory.NewEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s engine: %w", r.factory.Name(), err)
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close engine")
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			logger.WithField("stack", string(debug.Stack())).Debug("procedure panicked")
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	logger.Info("procedure started")
	session := &Session{
		Page:    facade.NewPage(engine, r.opts.Page, r.logger),
		Logger:  logger,
		observe: r.opts.Observe,
	}
	return proc.Run(ctx, session)
}

// Select returns the procedures named in names, in the order given. An
// empty names selects every procedure.
func Select(procs []Procedure, names []string) ([]Procedure, error) {
	if len(names) == 0 {
		return procs, nil
	}
	byName := make(map[string]Procedure, len(procs))
	for _, p := range procs {
		byName[p.Name] = p
	}
	selected := make([]Procedure, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown procedure %q", name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
