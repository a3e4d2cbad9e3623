package progress

import (
	"strings"
	"testing"
	"time"
)

func TestReporterPublishAndSubscribe(t *testing.T) {
	r := NewReporter()
	ch := r.Subscribe()

	r.Publish(Event{Phase: PhaseScanning, Location: "Temp", Scanned: 3})

	select {
	case e := <-ch:
		if e.Phase != PhaseScanning || e.Scanned != 3 {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	r.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestReporterDoesNotBlockOnFullListener(t *testing.T) {
	r := NewReporter()
	r.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Publish(Event{Phase: PhaseDeleting, Processed: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full listener")
	}
}

func TestNilReporterPublish(t *testing.T) {
	var r *Reporter
	r.Publish(Event{Phase: PhaseComplete})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Phase: PhaseScanning, Location: "Temp", StartTime: time.Now()}, "Scanning Temp..."},
		{Event{Phase: PhaseDeleting, Processed: 1, Identified: 4}, "(25%)"},
		{Event{Phase: PhasePlanning, Identified: 2}, "Writing plan for 2 files"},
		{Event{Phase: PhaseAborted, Processed: 1, Identified: 3}, "Aborted after 1 of 3"},
		{Event{}, "Preparing..."},
	}

	for _, tt := range tests {
		if got := Format(tt.event); !strings.Contains(got, tt.want) {
			t.Errorf("Format(%s) = %q, want it to contain %q", tt.event.Phase, got, tt.want)
		}
	}
}
