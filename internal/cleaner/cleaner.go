package cleaner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fenilsonani/stalesweep/internal/audit"
	"github.com/fenilsonani/stalesweep/internal/classifier"
	"github.com/fenilsonani/stalesweep/internal/logging"
	"github.com/fenilsonani/stalesweep/internal/progress"
	"github.com/fenilsonani/stalesweep/internal/summary"
)

// Journal receives audit messages. *audit.Logger implements it.
type Journal interface {
	Record(msg string)
}

// Executor gates and deletes candidates one at a time
type Executor struct {
	gate             Gate
	remover          Remover
	journal          Journal
	logger           *zap.Logger
	progressReporter *progress.Reporter
}

// New creates a new Executor
func New(gate Gate, remover Remover, journal Journal, logger *zap.Logger) *Executor {
	if remover == nil {
		remover = NewOSRemover(nil)
	}
	return &Executor{
		gate:    gate,
		remover: remover,
		journal: journal,
		logger:  logging.OrNop(logger),
	}
}

// SetProgressReporter sets a progress reporter
func (e *Executor) SetProgressReporter(pr *progress.Reporter) {
	e.progressReporter = pr
}

// Process runs every candidate through the gate and deletes the approved
// ones. A failed deletion is recorded and counted as skipped; the loop goes
// on. When ctx is cancelled the in-flight candidate finishes, the rest are
// skipped as cancelled and ctx.Err() is returned.
func (e *Executor) Process(ctx context.Context, candidates []classifier.Candidate, agg *summary.Aggregator) error {
	startTime := time.Now()
	var deleted int
	var freed uint64

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			e.logger.Info("deletion interrupted",
				zap.Int("processed", i),
				zap.Int("remaining", len(candidates)-i))
			e.SkipRemaining(candidates[i:], agg)
			return err
		}

		e.record(audit.IdentifiedMessage(c.FullPath, c.LastWriteTime))

		if proceed, reason := e.gate.Decide(c); !proceed {
			e.record(audit.SkippedMessage(c.FullPath, reason))
			agg.AddSkipped()
		} else if err := e.remover.Remove(c.FullPath); err != nil {
			delErr := CategorizeError(c.FullPath, err)
			msg := audit.DeleteErrorMessage(c.FullPath, delErr.Cause())
			e.record(msg)
			agg.AddSkipped()
			agg.RecordError(summary.CategoryDelete, c.FullPath, msg)
			e.logger.Warn("deletion failed",
				zap.String("path", c.FullPath),
				zap.String("reason", delErr.Reason.String()),
				zap.Error(delErr.Original))
		} else {
			e.record(audit.DeletedMessage(c.FullPath))
			agg.AddDeleted(c.SizeBytes)
			deleted++
			freed += c.SizeBytes
		}

		e.progressReporter.Publish(progress.Event{
			Phase:       progress.PhaseDeleting,
			Location:    c.SourceLocationDescription,
			CurrentPath: c.FullPath,
			Identified:  len(candidates),
			Processed:   i + 1,
			Deleted:     deleted,
			BytesFreed:  freed,
			StartTime:   startTime,
		})
	}

	return nil
}

// SkipRemaining records candidates that will not be processed because the
// run was cancelled
func (e *Executor) SkipRemaining(candidates []classifier.Candidate, agg *summary.Aggregator) {
	for _, c := range candidates {
		e.record(audit.IdentifiedMessage(c.FullPath, c.LastWriteTime))
		e.record(audit.SkippedMessage(c.FullPath, ReasonCancelled))
		agg.AddSkipped()
	}
}

func (e *Executor) record(msg string) {
	if e.journal != nil {
		e.journal.Record(msg)
	}
}
