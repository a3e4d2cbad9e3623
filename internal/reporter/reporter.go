package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/plan"
	"github.com/fenilsonani/stalesweep/internal/platform"
	"github.com/fenilsonani/stalesweep/internal/summary"
	"github.com/fenilsonani/stalesweep/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// LocationStatus is one row of the locations report
type LocationStatus struct {
	location.Location `yaml:",inline"`
	Exists            bool                  `json:"exists" yaml:"exists"`
	Volume            *platform.VolumeUsage `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// Reporter handles report generation
type Reporter struct {
	writer    io.Writer
	format    OutputFormat
	volume    *platform.VolumeUsage
	privilege string
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// SetVolume adds free-space information to the text summary
func (r *Reporter) SetVolume(v *platform.VolumeUsage) {
	r.volume = v
}

// SetPrivilege adds the process privilege level to the text summary
func (r *Reporter) SetPrivilege(label string) {
	r.privilege = label
}

// ReportSummary prints a run summary
func (r *Reporter) ReportSummary(s summary.RunSummary) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(s)
	case FormatYAML:
		return r.encodeYAML(s)
	case FormatText, "":
		return r.summaryText(s)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) summaryText(s summary.RunSummary) error {
	w := r.writer

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("=== Cleanup Summary (%s) ===", s.Mode)))
	r.line("Run ID", s.RunID)
	if r.privilege != "" {
		r.line("Privilege", r.privilege)
	}
	r.line("Scanned", fmt.Sprintf("%d files", s.ItemsScanned))
	r.line("Identified", fmt.Sprintf("%d files (%s)", s.ItemsIdentified,
		FileSizeStyle.Render(utils.FormatBytes(s.BytesIdentified))))

	if s.Mode == summary.ModeLive {
		r.line("Deleted", fmt.Sprintf("%d files (%s freed, %.0f%% of identified)", s.ItemsDeleted,
			FileSizeStyle.Render(utils.FormatBytes(s.BytesFreed)),
			utils.Percent(s.BytesFreed, s.BytesIdentified)))
		r.line("Skipped", fmt.Sprintf("%d files", s.ItemsSkipped))
	}

	if s.PlanFilePath != "" {
		r.line("Plan file", FilePathStyle.Render(s.PlanFilePath))
	}
	if s.LogFilePath != "" {
		r.line("Log file", FilePathStyle.Render(s.LogFilePath))
	}
	if r.volume != nil {
		r.line("Free space", fmt.Sprintf("%s of %s (%.1f%% used)",
			utils.FormatBytes(r.volume.Free),
			utils.FormatBytes(r.volume.Total),
			r.volume.UsedPercent))
	}
	if !s.FinishedAt.IsZero() && !s.StartedAt.IsZero() {
		r.line("Duration", utils.FormatDuration(s.FinishedAt.Sub(s.StartedAt)))
	}

	if s.Aborted {
		fmt.Fprintln(w, ErrorStyle.Render("Run aborted before completion"))
	}

	if len(s.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("Errors: %d", len(s.Errors))))
		for _, msg := range s.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	} else if !s.Aborted {
		fmt.Fprintln(w, SuccessStyle.Render("Completed without errors"))
	}

	return nil
}

func (r *Reporter) line(label, value string) {
	fmt.Fprintf(r.writer, "%s %s\n", LabelStyle.Render(label+":"), value)
}

// ReportPlan prints a plan document
func (r *Reporter) ReportPlan(doc *plan.Document) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(doc)
	case FormatYAML:
		return r.encodeYAML(doc)
	case FormatText, "":
		return r.planTable(doc)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) planTable(doc *plan.Document) error {
	w := r.writer

	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("%-60s | %-10s | %-20s | %s", "Path", "Size", "Last Write", "Location")))

	for _, item := range doc.Items {
		path := item.Path
		if len(path) > 60 {
			path = "..." + path[len(path)-57:]
		}

		fmt.Fprintf(w, "%s | %s | %-20s | %s\n",
			FilePathStyle.Render(fmt.Sprintf("%-60s", path)),
			FileSizeStyle.Render(fmt.Sprintf("%-10s", utils.FormatBytes(item.SizeBytes))),
			item.LastWriteTime,
			CategoryStyle.Render(item.SourceLocation))
	}

	fmt.Fprintf(w, "\nTotal: %d files, %s\n", doc.TotalItems, utils.FormatBytes(doc.TotalBytes))
	return nil
}

// ReportLocations prints the location registry
func (r *Reporter) ReportLocations(rows []LocationStatus) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(rows)
	case FormatYAML:
		return r.encodeYAML(rows)
	case FormatText, "":
		return r.locationsTable(rows)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) locationsTable(rows []LocationStatus) error {
	w := r.writer

	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("%-28s | %-40s | %-10s | %s", "Description", "Path", "Privilege", "Volume")))

	for _, row := range rows {
		privilege := "user"
		if row.RequiresElevatedPrivilege {
			privilege = "elevated"
		}

		volume := ErrorStyle.Render("missing")
		if row.Exists {
			volume = "-"
			if row.Volume != nil {
				volume = fmt.Sprintf("%s free of %s", utils.FormatBytes(row.Volume.Free), utils.FormatBytes(row.Volume.Total))
			}
		}

		fmt.Fprintf(w, "%-28s | %s | %-10s | %s\n",
			row.Description,
			FilePathStyle.Render(fmt.Sprintf("%-40s", row.Path)),
			privilege,
			volume)
	}

	return nil
}

// Encode writes v as JSON when the format is json, and as YAML otherwise
func (r *Reporter) Encode(v any) error {
	if r.format == FormatJSON {
		return r.encodeJSON(v)
	}
	return r.encodeYAML(v)
}

func (r *Reporter) encodeJSON(v any) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v any) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}
