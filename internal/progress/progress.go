package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/stalesweep/pkg/utils"
)

// Phase represents the current phase of a run
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseScanning    Phase = "scanning"
	PhaseClassifying Phase = "classifying"
	PhasePlanning    Phase = "planning"
	PhaseDeleting    Phase = "deleting"
	PhaseComplete    Phase = "complete"
	PhaseAborted     Phase = "aborted"
)

// Event is a snapshot of run progress
type Event struct {
	Phase       Phase
	Location    string
	CurrentPath string
	Scanned     int
	Identified  int
	Processed   int
	Deleted     int
	BytesFreed  uint64
	StartTime   time.Time
}

// Reporter provides thread-safe progress reporting
type Reporter struct {
	mu        sync.Mutex
	listeners []chan Event
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		listeners: make([]chan Event, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (r *Reporter) Subscribe() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, 10)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (r *Reporter) Unsubscribe(ch <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Publish notifies listeners. Safe on a nil Reporter.
func (r *Reporter) Publish(update Event) {
	if r == nil {
		return
	}

	// Held while sending so Unsubscribe cannot close a channel mid-send
	r.mu.Lock()
	defer r.mu.Unlock()

	// Notify all listeners (non-blocking)
	for _, listener := range r.listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// Format returns a human-readable progress line
func Format(e Event) string {
	elapsed := time.Since(e.StartTime)

	switch e.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning %s... %d files so far [%s]",
			e.Location, e.Scanned, utils.FormatDuration(elapsed))
	case PhaseClassifying:
		return fmt.Sprintf("Classifying %d files... %d identified", e.Scanned, e.Identified)
	case PhasePlanning:
		return fmt.Sprintf("Writing plan for %d files", e.Identified)
	case PhaseDeleting:
		percentage := 0
		if e.Identified > 0 {
			percentage = (e.Processed * 100) / e.Identified
		}
		return fmt.Sprintf("Processing %d/%d files (%d%%) - %s freed",
			e.Processed, e.Identified, percentage, utils.FormatBytes(e.BytesFreed))
	case PhaseComplete:
		return fmt.Sprintf("Complete: %d scanned, %d identified, %d deleted in %s",
			e.Scanned, e.Identified, e.Deleted, utils.FormatDuration(elapsed))
	case PhaseAborted:
		return fmt.Sprintf("Aborted after %d of %d files", e.Processed, e.Identified)
	default:
		return "Preparing..."
	}
}
