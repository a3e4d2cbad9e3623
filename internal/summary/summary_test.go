package summary

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSet_DeduplicatesByCategoryAndTarget(t *testing.T) {
	s := NewErrorSet()

	assert.True(t, s.Add(CategoryLogWrite, "/logs/cleanup.log", "write failed: disk full"))
	assert.False(t, s.Add(CategoryLogWrite, "/logs/cleanup.log", "write failed again"))
	assert.True(t, s.Add(CategoryDelete, "/logs/cleanup.log", "different category, same target"))
	assert.True(t, s.Add(CategoryDelete, "/tmp/a", "delete a"))

	assert.Equal(t, []string{
		"write failed: disk full",
		"different category, same target",
		"delete a",
	}, s.Messages())
	assert.True(t, s.Has(CategoryDelete, "/tmp/a"))
	assert.False(t, s.Has(CategoryPlan, "/tmp/a"))
}

func TestErrorSet_MessagesIsACopy(t *testing.T) {
	s := NewErrorSet()
	s.Add(CategoryPlan, "plan", "boom")

	msgs := s.Messages()
	msgs[0] = "changed"
	assert.Equal(t, "boom", s.Messages()[0])
}

func TestAggregator_LiveCounters(t *testing.T) {
	agg := NewAggregator("run-1", ModeLive, time.Now())

	agg.AddScanned(5)
	agg.AddScanned(0)
	agg.AddIdentified(100)
	agg.AddIdentified(50)
	agg.AddDeleted(100)
	agg.AddSkipped()
	agg.RecordError(CategoryDelete, "/x", "ERROR deleting '/x': busy")

	s := agg.Finish(time.Now())
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, ModeLive, s.Mode)
	assert.Equal(t, 5, s.ItemsScanned)
	assert.Equal(t, 2, s.ItemsIdentified)
	assert.Equal(t, 1, s.ItemsDeleted)
	assert.Equal(t, 1, s.ItemsSkipped)
	assert.Equal(t, uint64(150), s.BytesIdentified)
	assert.Equal(t, uint64(100), s.BytesFreed)
	assert.Equal(t, []string{"ERROR deleting '/x': busy"}, s.Errors)
	assert.False(t, s.FinishedAt.IsZero())
	assert.True(t, s.HasErrors())
	require.NoError(t, s.Validate())
}

func TestAggregator_DryRunNeverCountsDeletions(t *testing.T) {
	agg := NewAggregator("run-2", ModeDryRun, time.Now())
	agg.AddIdentified(10)
	agg.AddDeleted(10)

	s := agg.Finish(time.Now())
	assert.Equal(t, 0, s.ItemsDeleted)
	assert.Equal(t, uint64(0), s.BytesFreed)
	require.NoError(t, s.Validate())
}

func TestAggregator_FinishReturnsIndependentCopy(t *testing.T) {
	agg := NewAggregator("run-3", ModeLive, time.Now())
	agg.RecordError(CategoryPlan, "p", "first")

	s := agg.Finish(time.Now())
	agg.RecordError(CategoryPlan, "q", "second")
	agg.AddScanned(3)

	assert.Equal(t, []string{"first"}, s.Errors)
	assert.Equal(t, 0, s.ItemsScanned)
}

func TestAggregator_ConcurrentIncrements(t *testing.T) {
	agg := NewAggregator("run-4", ModeLive, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.AddScanned(2)
			agg.AddIdentified(1)
			agg.AddSkipped()
		}()
	}
	wg.Wait()

	s := agg.Snapshot()
	assert.Equal(t, 100, s.ItemsScanned)
	assert.Equal(t, 50, s.ItemsIdentified)
	assert.Equal(t, 50, s.ItemsSkipped)
}

func TestRunSummary_Validate(t *testing.T) {
	tests := []struct {
		name    string
		summary RunSummary
		wantErr bool
	}{
		{"balanced live", RunSummary{Mode: ModeLive, ItemsIdentified: 3, ItemsDeleted: 2, ItemsSkipped: 1}, false},
		{"unbalanced live", RunSummary{Mode: ModeLive, ItemsIdentified: 3, ItemsDeleted: 1}, true},
		{"aborted live must still balance", RunSummary{Mode: ModeLive, ItemsIdentified: 3, ItemsDeleted: 1, Aborted: true}, true},
		{"aborted live balanced", RunSummary{Mode: ModeLive, ItemsIdentified: 3, ItemsDeleted: 1, ItemsSkipped: 2, Aborted: true}, false},
		{"dry run with deletions", RunSummary{Mode: ModeDryRun, ItemsDeleted: 1}, true},
		{"dry run", RunSummary{Mode: ModeDryRun, ItemsIdentified: 4}, false},
		{"negative", RunSummary{Mode: ModeDryRun, ItemsScanned: -1}, true},
		{"unknown mode", RunSummary{Mode: "Other"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.summary.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
