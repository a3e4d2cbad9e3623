package scanner

import (
	"errors"
	"fmt"
	"time"

	"github.com/fenilsonani/stalesweep/internal/location"
)

var (
	// ErrLocationInaccessible means the location root is missing or unreadable
	ErrLocationInaccessible = errors.New("location not found or inaccessible")

	// ErrPrivilegeRequired means a privilege-gated location was skipped
	ErrPrivilegeRequired = errors.New("location requires elevated privilege")
)

// ScannedFile represents a regular file found during scanning
type ScannedFile struct {
	FullPath      string    `json:"path" yaml:"path"`
	SizeBytes     uint64    `json:"size_bytes" yaml:"size_bytes"`
	LastWriteTime time.Time `json:"last_write_time" yaml:"last_write_time"`
}

// Result represents the outcome of scanning one location
type Result struct {
	Location location.Location
	Files    []ScannedFile
	// Scanned counts every regular file whose enumeration was attempted
	Scanned int
	// Unreadable counts entries skipped because they could not be read
	Unreadable int
}

// TotalSize returns the combined size of the scanned files
func (r *Result) TotalSize() uint64 {
	var total uint64
	for _, f := range r.Files {
		total += f.SizeBytes
	}
	return total
}

// LocationError reports why a whole location contributed nothing
type LocationError struct {
	Path  string
	Kind  error // ErrLocationInaccessible or ErrPrivilegeRequired
	Cause error
}

// Error implements the error interface
func (e *LocationError) Error() string {
	switch e.Kind {
	case ErrPrivilegeRequired:
		return fmt.Sprintf("Location requires elevated privilege, skipped: %s", e.Path)
	default:
		return fmt.Sprintf("Location not found or inaccessible: %s", e.Path)
	}
}

// Unwrap exposes the sentinel kind to errors.Is
func (e *LocationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
