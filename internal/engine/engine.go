// Package engine runs one cleanup pass: scan every location, classify files
// by age, then either write a plan (dry-run) or gate and delete (live).
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fenilsonani/stalesweep/internal/audit"
	"github.com/fenilsonani/stalesweep/internal/classifier"
	"github.com/fenilsonani/stalesweep/internal/cleaner"
	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/logging"
	"github.com/fenilsonani/stalesweep/internal/plan"
	"github.com/fenilsonani/stalesweep/internal/platform"
	"github.com/fenilsonani/stalesweep/internal/progress"
	"github.com/fenilsonani/stalesweep/internal/scanner"
	"github.com/fenilsonani/stalesweep/internal/security"
	"github.com/fenilsonani/stalesweep/internal/summary"
)

var (
	// ErrNegativeDaysOld is returned before any filesystem access
	ErrNegativeDaysOld = classifier.ErrNegativeDaysOld

	// ErrConflictingModes is returned when dry-run is combined with
	// pre-approved deletion
	ErrConflictingModes = errors.New("dry-run cannot be combined with pre-approved deletion")

	// ErrNoExecutionContext is returned when Options.Exec is nil
	ErrNoExecutionContext = errors.New("execution context is required")
)

// AuditOptions configures the live-mode audit log file
type AuditOptions struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Options configures a single run
type Options struct {
	DaysOld int
	DryRun  bool
	// WhatIf simulates a live run: every candidate is skipped
	WhatIf bool
	// AssumeYes approves every candidate without asking
	AssumeYes bool
	// Confirm is consulted per candidate unless AssumeYes is set.
	// nil declines everything.
	Confirm cleaner.ConfirmFunc

	Locations *location.Registry
	Exec      *platform.ExecutionContext

	PlanFile   string
	PlanFormat string
	Audit      AuditOptions

	// Parallelism > 1 scans that many locations at once
	Parallelism int

	// Remover overrides the filesystem remover, mainly for tests
	Remover cleaner.Remover
	// SystemPaths and ProtectedPaths are refused by the default remover
	SystemPaths    []string
	ProtectedPaths []string

	Logger   *zap.Logger
	Progress *progress.Reporter
	Now      func() time.Time
}

// Validate checks the fatal preconditions of a run
func (o *Options) Validate() error {
	if o.DaysOld < 0 {
		return fmt.Errorf("%w (got %d)", ErrNegativeDaysOld, o.DaysOld)
	}
	if o.DryRun && o.AssumeYes {
		return ErrConflictingModes
	}
	if o.Exec == nil {
		return ErrNoExecutionContext
	}
	return nil
}

// Mode returns the summary mode the options select
func (o *Options) Mode() summary.Mode {
	if o.DryRun {
		return summary.ModeDryRun
	}
	return summary.ModeLive
}

// Run executes a cleanup pass. The returned error is non-nil only when a
// precondition fails; everything else is reported in the summary.
func Run(ctx context.Context, opts Options) (summary.RunSummary, error) {
	if err := opts.Validate(); err != nil {
		return summary.RunSummary{}, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	startedAt := now()
	cutoff, err := classifier.Cutoff(startedAt, opts.DaysOld)
	if err != nil {
		return summary.RunSummary{}, err
	}

	r := &run{
		opts:     opts,
		now:      now,
		cutoff:   cutoff,
		agg:      summary.NewAggregator(uuid.NewString(), opts.Mode(), startedAt),
		progress: opts.Progress,
	}
	r.logger = logging.OrNop(opts.Logger).With(
		zap.String("run_id", r.agg.Snapshot().RunID),
		zap.String("mode", string(opts.Mode())))

	return r.execute(ctx), nil
}

type run struct {
	opts     Options
	now      func() time.Time
	cutoff   time.Time
	agg      *summary.Aggregator
	logger   *zap.Logger
	progress *progress.Reporter
	journal  *audit.Logger
}

func (r *run) execute(ctx context.Context) summary.RunSummary {
	startTime := r.now()

	r.logger.Info("cleanup started",
		zap.Int("days_old", r.opts.DaysOld),
		zap.Time("cutoff", r.cutoff),
		zap.Int("locations", r.opts.Locations.Len()),
		zap.Bool("elevated", r.opts.Exec.Elevated))

	if r.opts.DryRun {
		r.journal = audit.Observer(r.logger, r.now)
	} else {
		r.journal = audit.Open(audit.Options{
			Dir:        r.opts.Exec.LogDir,
			File:       r.opts.Audit.File,
			MaxSizeMB:  r.opts.Audit.MaxSizeMB,
			MaxBackups: r.opts.Audit.MaxBackups,
			Logger:     r.logger,
			Errors:     r.agg,
			Now:        r.now,
		})
	}

	candidates, scanErr := r.scanAndClassify(ctx, startTime)
	if scanErr != nil {
		if !r.opts.DryRun {
			r.newExecutor().SkipRemaining(candidates, r.agg)
		}
		return r.abort(scanErr, 0, len(candidates), startTime)
	}

	if r.opts.DryRun {
		r.writePlan(candidates, startTime)
	} else if err := r.deleteCandidates(ctx, candidates, startTime); err != nil {
		snap := r.agg.Snapshot()
		processed := snap.ItemsDeleted + snap.ItemsSkipped
		return r.abort(err, processed, len(candidates), startTime)
	}

	r.closeJournal()

	s := r.agg.Finish(r.now())
	r.progress.Publish(progress.Event{
		Phase:      progress.PhaseComplete,
		Scanned:    s.ItemsScanned,
		Identified: s.ItemsIdentified,
		Processed:  s.ItemsDeleted + s.ItemsSkipped,
		Deleted:    s.ItemsDeleted,
		BytesFreed: s.BytesFreed,
		StartTime:  startTime,
	})
	r.logger.Info("cleanup finished",
		zap.Int("scanned", s.ItemsScanned),
		zap.Int("identified", s.ItemsIdentified),
		zap.Int("deleted", s.ItemsDeleted),
		zap.Int("skipped", s.ItemsSkipped),
		zap.Int("errors", len(s.Errors)))

	return s
}

// scanOutcome is one location's scan, kept in registry order
type scanOutcome struct {
	result *scanner.Result
	err    error
}

// scanAndClassify scans every location and returns the candidates in
// registry order, then filesystem order. A non-nil error means the run was
// cancelled.
func (r *run) scanAndClassify(ctx context.Context, startTime time.Time) ([]classifier.Candidate, error) {
	locs := r.opts.Locations.All()
	s := scanner.New(r.opts.Exec, !r.opts.DryRun, r.logger)
	outcomes := r.scanLocations(ctx, s, locs, startTime)

	candidates := make([]classifier.Candidate, 0)
	for i, out := range outcomes {
		loc := locs[i]

		if out.err != nil {
			if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
				return candidates, out.err
			}
			r.recordLocationError(loc, out.err)
		}
		if out.result == nil {
			continue
		}

		r.agg.AddScanned(out.result.Scanned)

		found := classifier.Classify(out.result.Files, loc.Description, r.cutoff)
		for _, c := range found {
			r.agg.AddIdentified(c.SizeBytes)
		}
		candidates = append(candidates, found...)

		r.progress.Publish(progress.Event{
			Phase:      progress.PhaseClassifying,
			Location:   loc.Description,
			Scanned:    r.agg.Snapshot().ItemsScanned,
			Identified: len(candidates),
			StartTime:  startTime,
		})
	}

	// A cancellation that landed after the last entry was walked
	if err := ctx.Err(); err != nil {
		return candidates, err
	}

	return candidates, nil
}

// scanLocations runs the scanner over locs, at most Parallelism at a time
func (r *run) scanLocations(ctx context.Context, s *scanner.Scanner, locs []location.Location, startTime time.Time) []scanOutcome {
	outcomes := make([]scanOutcome, len(locs))

	workers := r.opts.Parallelism
	if workers <= 1 {
		for i, loc := range locs {
			if err := ctx.Err(); err != nil {
				outcomes[i] = scanOutcome{err: err}
				continue
			}
			r.publishScanning(loc, startTime)
			res, err := s.Scan(ctx, loc)
			outcomes[i] = scanOutcome{result: res, err: err}
		}
		return outcomes
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, loc := range locs {
		wg.Add(1)
		go func(i int, loc location.Location) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				outcomes[i] = scanOutcome{err: err}
				return
			}
			r.publishScanning(loc, startTime)
			res, err := s.Scan(ctx, loc)
			outcomes[i] = scanOutcome{result: res, err: err}
		}(i, loc)
	}
	wg.Wait()

	return outcomes
}

func (r *run) publishScanning(loc location.Location, startTime time.Time) {
	r.progress.Publish(progress.Event{
		Phase:     progress.PhaseScanning,
		Location:  loc.Description,
		Scanned:   r.agg.Snapshot().ItemsScanned,
		StartTime: startTime,
	})
}

func (r *run) recordLocationError(loc location.Location, err error) {
	category := summary.CategoryLocation
	if errors.Is(err, scanner.ErrPrivilegeRequired) {
		category = summary.CategoryPrivilege
	}

	msg := err.Error()
	var locErr *scanner.LocationError
	if !errors.As(err, &locErr) {
		msg = fmt.Sprintf("Location not found or inaccessible: %s (%v)", loc.Path, err)
	}

	if r.agg.RecordError(category, loc.Path, msg) {
		r.logger.Warn("location skipped",
			zap.String("location", loc.Description),
			zap.String("path", loc.Path),
			zap.Error(err))
	}
}

func (r *run) writePlan(candidates []classifier.Candidate, startTime time.Time) {
	r.progress.Publish(progress.Event{
		Phase:      progress.PhasePlanning,
		Identified: len(candidates),
		StartTime:  startTime,
	})

	for _, c := range candidates {
		r.journal.Record(audit.IdentifiedMessage(c.FullPath, c.LastWriteTime))
	}

	w := &plan.Writer{
		Dir:      r.opts.Exec.WorkDir,
		FileName: r.opts.PlanFile,
		Format:   r.opts.PlanFormat,
	}

	path, err := w.Write(candidates)
	if err != nil {
		r.agg.RecordError(summary.CategoryPlan, w.Path(),
			fmt.Sprintf("Unable to write plan file '%s': %v", w.Path(), err))
		r.logger.Warn("plan not written", zap.String("path", w.Path()), zap.Error(err))
		return
	}

	r.agg.SetPlanPath(path)
	r.logger.Info("plan written", zap.String("path", path), zap.Int("items", len(candidates)))
}

func (r *run) deleteCandidates(ctx context.Context, candidates []classifier.Candidate, startTime time.Time) error {
	r.progress.Publish(progress.Event{
		Phase:      progress.PhaseDeleting,
		Identified: len(candidates),
		StartTime:  startTime,
	})

	return r.newExecutor().Process(ctx, candidates, r.agg)
}

func (r *run) newExecutor() *cleaner.Executor {
	confirm := r.opts.Confirm
	if r.opts.AssumeYes {
		confirm = cleaner.AlwaysApprove
	}

	remover := r.opts.Remover
	if remover == nil {
		validator := security.NewPathValidator(r.opts.ProtectedPaths...)
		for _, p := range r.opts.SystemPaths {
			validator.AddSystemPath(p)
		}
		remover = cleaner.NewOSRemover(validator)
	}

	exec := cleaner.New(cleaner.Gate{Confirm: confirm, WhatIf: r.opts.WhatIf}, remover, r.journal, r.logger)
	exec.SetProgressReporter(r.progress)
	return exec
}

// closeJournal closes the audit sink and reports its path if it stayed healthy
func (r *run) closeJournal() {
	if err := r.journal.Close(); err != nil {
		r.agg.RecordError(summary.CategoryLogWrite, r.journal.Path(),
			fmt.Sprintf("Unable to close audit log '%s': %v", r.journal.Path(), err))
	}
	if !r.opts.DryRun {
		r.agg.SetLogPath(r.journal.Path())
	}
}

func (r *run) abort(cause error, processed, identified int, startTime time.Time) summary.RunSummary {
	r.agg.MarkAborted()
	r.agg.RecordError(summary.CategoryCancelled, "",
		fmt.Sprintf("Run cancelled before completion: %v", cause))
	r.closeJournal()

	r.progress.Publish(progress.Event{
		Phase:      progress.PhaseAborted,
		Identified: identified,
		Processed:  processed,
		StartTime:  startTime,
	})
	r.logger.Warn("cleanup aborted", zap.Error(cause))

	return r.agg.Finish(r.now())
}
