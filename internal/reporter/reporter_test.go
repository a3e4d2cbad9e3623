package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/plan"
	"github.com/fenilsonani/stalesweep/internal/platform"
	"github.com/fenilsonani/stalesweep/internal/summary"
)

func sampleSummary() summary.RunSummary {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return summary.RunSummary{
		RunID:           "run-1",
		Mode:            summary.ModeLive,
		ItemsScanned:    10,
		ItemsIdentified: 3,
		ItemsDeleted:    2,
		ItemsSkipped:    1,
		BytesIdentified: 3 * 1024,
		BytesFreed:      2 * 1024,
		LogFilePath:     "/var/log/stalesweep/cleanup.log",
		Errors:          []string{"Location not found or inaccessible: /missing"},
		StartedAt:       start,
		FinishedAt:      start.Add(2 * time.Second),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestReportSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatText)
	r.SetVolume(&platform.VolumeUsage{Total: 100 << 30, Free: 40 << 30, UsedPercent: 60})
	r.SetPrivilege((&platform.ExecutionContext{Elevated: true}).PrivilegeLabel())

	require.NoError(t, r.ReportSummary(sampleSummary()))
	out := buf.String()

	assert.Contains(t, out, "Cleanup Summary (Live)")
	assert.Contains(t, out, "10 files")
	assert.Contains(t, out, "3 files (3.00 KB)")
	assert.Contains(t, out, "2 files (2.00 KB freed, 67% of identified)")
	assert.Contains(t, out, "elevated (root)")
	assert.Contains(t, out, "/var/log/stalesweep/cleanup.log")
	assert.Contains(t, out, "60.0% used")
	assert.Contains(t, out, "Errors: 1")
	assert.Contains(t, out, "Location not found or inaccessible: /missing")
	assert.NotContains(t, out, "Completed without errors")
}

func TestReportSummary_TextDryRunHidesDeletionCounters(t *testing.T) {
	s := sampleSummary()
	s.Mode = summary.ModeDryRun
	s.ItemsDeleted, s.ItemsSkipped, s.BytesFreed = 0, 0, 0
	s.LogFilePath = ""
	s.PlanFilePath = "/work/cleanup-plan.json"
	s.Errors = nil

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).ReportSummary(s))
	out := buf.String()

	assert.NotContains(t, out, "Deleted:")
	assert.Contains(t, out, "/work/cleanup-plan.json")
	assert.Contains(t, out, "Completed without errors")
}

func TestReportSummary_Aborted(t *testing.T) {
	s := sampleSummary()
	s.Aborted = true

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).ReportSummary(s))
	assert.Contains(t, buf.String(), "aborted")
}

func TestReportSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).ReportSummary(sampleSummary()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Live", got["mode"])
	assert.EqualValues(t, 2, got["items_deleted"])
	assert.EqualValues(t, 2048, got["bytes_freed"])
}

func TestReportSummary_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatYAML).ReportSummary(sampleSummary()))

	var got summary.RunSummary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.ItemsIdentified)
	assert.Equal(t, []string{"Location not found or inaccessible: /missing"}, got.Errors)
}

func TestReportSummary_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := New(&buf, OutputFormat("xml")).ReportSummary(sampleSummary())
	assert.Error(t, err)
}

func TestReportPlan_Text(t *testing.T) {
	doc := &plan.Document{
		Version: plan.Version,
		Items: []plan.Item{
			{Path: "/tmp/a.log", SizeBytes: 2048, SizeMB: 0, LastWriteTime: "2026-01-01T00:00:00Z", SourceLocation: "Temp"},
			{Path: "/" + strings.Repeat("d", 80) + "/b.log", SizeBytes: 10, LastWriteTime: "2026-01-02T00:00:00Z", SourceLocation: "Temp"},
		},
		TotalItems: 2,
		TotalBytes: 2058,
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).ReportPlan(doc))
	out := buf.String()

	assert.Contains(t, out, "/tmp/a.log")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "Total: 2 files")
}

func TestReportLocations(t *testing.T) {
	rows := []LocationStatus{
		{Location: location.Location{Path: "/tmp", Description: "Temp"}, Exists: true,
			Volume: &platform.VolumeUsage{Total: 1 << 30, Free: 1 << 29}},
		{Location: location.Location{Path: "/nope", Description: "Gone", RequiresElevatedPrivilege: true}},
	}

	var text bytes.Buffer
	require.NoError(t, New(&text, FormatText).ReportLocations(rows))
	assert.Contains(t, text.String(), "Temp")
	assert.Contains(t, text.String(), "elevated")
	assert.Contains(t, text.String(), "missing")

	var js bytes.Buffer
	require.NoError(t, New(&js, FormatJSON).ReportLocations(rows))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "/tmp", got[0]["path"])
	assert.Equal(t, true, got[1]["requires_elevated_privilege"])
	assert.NotContains(t, got[1], "volume")
}
