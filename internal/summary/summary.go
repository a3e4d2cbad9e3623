// Package summary accumulates the outcome of a cleanup run.
package summary

import (
	"fmt"
	"sync"
	"time"
)

// Mode is the execution mode of a run.
type Mode string

const (
	ModeDryRun Mode = "DryRun"
	ModeLive   Mode = "Live"
)

// RunSummary is the result of a run.
type RunSummary struct {
	RunID           string    `json:"run_id" yaml:"run_id"`
	Mode            Mode      `json:"mode" yaml:"mode"`
	ItemsScanned    int       `json:"items_scanned" yaml:"items_scanned"`
	ItemsIdentified int       `json:"items_identified" yaml:"items_identified"`
	ItemsDeleted    int       `json:"items_deleted" yaml:"items_deleted"`
	ItemsSkipped    int       `json:"items_skipped" yaml:"items_skipped"`
	BytesIdentified uint64    `json:"bytes_identified" yaml:"bytes_identified"`
	BytesFreed      uint64    `json:"bytes_freed" yaml:"bytes_freed"`
	LogFilePath     string    `json:"log_file_path,omitempty" yaml:"log_file_path,omitempty"`
	PlanFilePath    string    `json:"plan_file_path,omitempty" yaml:"plan_file_path,omitempty"`
	Errors          []string  `json:"errors" yaml:"errors"`
	Aborted         bool      `json:"aborted" yaml:"aborted"`
	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt      time.Time `json:"finished_at" yaml:"finished_at"`
}

// Validate checks the counter invariants of a finished summary.
func (s RunSummary) Validate() error {
	if s.ItemsScanned < 0 || s.ItemsIdentified < 0 || s.ItemsDeleted < 0 || s.ItemsSkipped < 0 {
		return fmt.Errorf("negative counter in summary")
	}

	switch s.Mode {
	case ModeDryRun:
		if s.ItemsDeleted != 0 {
			return fmt.Errorf("dry-run reported %d deletions", s.ItemsDeleted)
		}
	case ModeLive:
		if s.ItemsIdentified != s.ItemsDeleted+s.ItemsSkipped {
			return fmt.Errorf("identified (%d) != deleted (%d) + skipped (%d)",
				s.ItemsIdentified, s.ItemsDeleted, s.ItemsSkipped)
		}
	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}

	return nil
}

// HasErrors reports whether any non-fatal error was recorded.
func (s RunSummary) HasErrors() bool {
	return len(s.Errors) > 0
}

// Aggregator is the single owner of a run's counters and error list.
// It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	summary RunSummary
	errors  *ErrorSet
}

// NewAggregator starts a summary for a run.
func NewAggregator(runID string, mode Mode, startedAt time.Time) *Aggregator {
	return &Aggregator{
		summary: RunSummary{
			RunID:     runID,
			Mode:      mode,
			StartedAt: startedAt,
		},
		errors: NewErrorSet(),
	}
}

// AddScanned adds n enumerated files.
func (a *Aggregator) AddScanned(n int) {
	if n <= 0 {
		return
	}
	a.mu.Lock()
	a.summary.ItemsScanned += n
	a.mu.Unlock()
}

// AddIdentified records one cleanup candidate of the given size.
func (a *Aggregator) AddIdentified(size uint64) {
	a.mu.Lock()
	a.summary.ItemsIdentified++
	a.summary.BytesIdentified += size
	a.mu.Unlock()
}

// AddDeleted records a successful deletion.
func (a *Aggregator) AddDeleted(size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary.Mode == ModeDryRun {
		return
	}
	a.summary.ItemsDeleted++
	a.summary.BytesFreed += size
}

// AddSkipped records a candidate that was not deleted.
func (a *Aggregator) AddSkipped() {
	a.mu.Lock()
	a.summary.ItemsSkipped++
	a.mu.Unlock()
}

// RecordError appends msg unless the (category, target) pair was seen.
func (a *Aggregator) RecordError(category Category, target, msg string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errors.Add(category, target, msg)
}

// SetPlanPath records where the plan artifact was written.
func (a *Aggregator) SetPlanPath(path string) {
	a.mu.Lock()
	a.summary.PlanFilePath = path
	a.mu.Unlock()
}

// SetLogPath records where the audit log was written.
func (a *Aggregator) SetLogPath(path string) {
	a.mu.Lock()
	a.summary.LogFilePath = path
	a.mu.Unlock()
}

// MarkAborted flags the run as cancelled.
func (a *Aggregator) MarkAborted() {
	a.mu.Lock()
	a.summary.Aborted = true
	a.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.summary
	s.Errors = a.errors.Messages()
	return s
}

// Finish stamps the finish time and returns the final summary.
func (a *Aggregator) Finish(finishedAt time.Time) RunSummary {
	a.mu.Lock()
	a.summary.FinishedAt = finishedAt
	a.mu.Unlock()
	return a.Snapshot()
}
