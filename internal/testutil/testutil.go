// Package testutil provides test helpers and fixtures for stalesweep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/platform"
)

// Day is a convenience duration for age-based fixtures
const Day = 24 * time.Hour

// TestFixture holds paths to test directories and files
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	// WorkDir receives plan artifacts
	WorkDir string
	// LogDir receives the audit log
	LogDir string
}

// NewFixture creates a new test fixture with work and log directories
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:       t,
		RootDir: root,
		WorkDir: filepath.Join(root, "work"),
		LogDir:  filepath.Join(root, "audit"),
	}

	if err := os.MkdirAll(f.WorkDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", f.WorkDir, err)
	}

	return f
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	f.SetModTime(fullPath, time.Now().Add(-age))

	return fullPath
}

// CreateFileAt creates a file whose modification time is exactly mtime
func (f *TestFixture) CreateFileAt(relPath string, content []byte, mtime time.Time) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	f.SetModTime(fullPath, mtime)

	return fullPath
}

// SetModTime changes access and modification time of path
func (f *TestFixture) SetModTime(path string, mtime time.Time) {
	f.T.Helper()

	if err := os.Chtimes(path, mtime, mtime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", path, err)
	}
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateUnreadableDir creates a directory with mode 000 holding one file.
// Permissions are restored on cleanup so TempDir removal works.
func (f *TestFixture) CreateUnreadableDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateFileWithAge(filepath.Join(relPath, "hidden.log"), []byte("hidden"), 60*Day)

	if err := os.Chmod(dirPath, 0000); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// CreateReadOnlyDir creates a read-only directory (files inside can't be deleted)
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// =============================================================================
// Domain Helpers
// =============================================================================

// Location returns a Location rooted at relPath inside the fixture
func (f *TestFixture) Location(relPath, description string, privileged bool) location.Location {
	return location.Location{
		Path:                      filepath.Join(f.RootDir, relPath),
		Description:               description,
		RequiresElevatedPrivilege: privileged,
	}
}

// ExecContext returns an ExecutionContext pointing at the fixture dirs
func (f *TestFixture) ExecContext(elevated bool) *platform.ExecutionContext {
	return &platform.ExecutionContext{
		Elevated: elevated,
		WorkDir:  f.WorkDir,
		LogDir:   f.LogDir,
		Username: "tester",
	}
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// =============================================================================
// Utility Functions
// =============================================================================

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}
