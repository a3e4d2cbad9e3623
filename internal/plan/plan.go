// Package plan writes the dry-run cleanup plan artifact.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stalesweep/internal/classifier"
)

// Version is the plan document format version
const Version = 1

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for formats other than json and yaml
var ErrUnsupportedFormat = errors.New("unsupported plan format")

// Item is one candidate in the plan document
type Item struct {
	Path           string  `json:"path" yaml:"path"`
	SizeBytes      uint64  `json:"size_bytes" yaml:"size_bytes"`
	SizeMB         float64 `json:"size_mb" yaml:"size_mb"`
	LastWriteTime  string  `json:"last_write_time" yaml:"last_write_time"`
	SourceLocation string  `json:"source_location" yaml:"source_location"`
}

// Document is the serialized plan. It carries no wall-clock or run data so
// the same tree always produces the same bytes.
type Document struct {
	Version    int    `json:"version" yaml:"version"`
	Items      []Item `json:"items" yaml:"items"`
	TotalItems int    `json:"total_items" yaml:"total_items"`
	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`
}

// NewDocument builds a plan document from candidates, keeping their order
func NewDocument(candidates []classifier.Candidate) *Document {
	doc := &Document{
		Version: Version,
		Items:   make([]Item, 0, len(candidates)),
	}
	for _, c := range candidates {
		doc.Items = append(doc.Items, Item{
			Path:           c.FullPath,
			SizeBytes:      c.SizeBytes,
			SizeMB:         c.SizeMB(),
			LastWriteTime:  c.LastWriteTime.UTC().Format(time.RFC3339Nano),
			SourceLocation: c.SourceLocationDescription,
		})
	}
	doc.TotalItems = len(doc.Items)
	doc.TotalBytes = classifier.TotalSize(candidates)
	return doc
}

// Writer serializes plans into Dir
type Writer struct {
	Dir      string
	FileName string // defaults to cleanup-plan.<format>
	Format   string // json (default) or yaml
}

// Path returns where the plan will be written
func (w *Writer) Path() string {
	name := w.FileName
	if name == "" {
		name = "cleanup-plan." + w.format()
	}
	return filepath.Join(w.Dir, name)
}

func (w *Writer) format() string {
	if w.Format == "" {
		return FormatJSON
	}
	return strings.ToLower(w.Format)
}

// Write replaces the plan file with the given candidates and returns its
// absolute path. The old plan stays intact if writing fails.
func (w *Writer) Write(candidates []classifier.Candidate) (string, error) {
	data, err := Encode(NewDocument(candidates), w.format())
	if err != nil {
		return "", err
	}

	path, err := filepath.Abs(w.Path())
	if err != nil {
		return "", fmt.Errorf("failed to resolve plan path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cleanup-plan-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create plan file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set plan file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to replace plan file: %w", err)
	}

	return path, nil
}

// Encode serializes doc in the given format
func Encode(doc *Document, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Read loads a plan file, choosing the decoder from its extension
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	doc := &Document{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, doc)
	default:
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}

	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported plan version %d", doc.Version)
	}
	return doc, nil
}
