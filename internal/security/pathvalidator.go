package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrProtectedPath is returned when a deletion targets a system path
var ErrProtectedPath = errors.New("refusing to delete protected path")

// PathValidator handles secure path validation for file operations
type PathValidator struct {
	protectedPaths []string
	// customPaths protect their whole subtree
	customPaths []string
}

// NewPathValidator creates a new PathValidator with default protected paths
// plus any custom ones
func NewPathValidator(custom ...string) *PathValidator {
	pv := &PathValidator{
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/home",
			"/lib",
			"/lib64",
			"/proc",
			"/root",
			"/sbin",
			"/sys",
			"/tmp",
			"/usr",
			"/var",
			"/var/log",
			"/var/tmp",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library",
			"/Users",
		},
	}
	for _, p := range custom {
		pv.AddProtectedPath(p)
	}
	return pv
}

// ValidatePathForDeletion performs validation on a file path before deletion.
// Files nested in a protected tree are allowed; the protected directories and
// their direct entries are not.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	// Step 1: Path must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	// Step 2: Reject paths that are not already clean (../ segments etc.)
	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a null byte: %q", path)
	}

	// Step 3: Resolve symlinks in the parent directories
	// SECURITY: a swapped-in directory symlink must not redirect us into /etc
	resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		resolvedDir = filepath.Dir(path)
	}
	resolved := filepath.Join(resolvedDir, filepath.Base(path))

	// Step 4: Check both the given and resolved path
	if err := pv.checkProtectedPaths(path); err != nil {
		return err
	}
	if resolved != path {
		if err := pv.checkProtectedPaths(resolved); err != nil {
			return err
		}
	}

	return nil
}

// checkProtectedPaths validates that a path is not a protected directory or
// directly inside one
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		// Exact match
		if cleanPath == protected {
			return fmt.Errorf("%w: %s", ErrProtectedPath, cleanPath)
		}

		// Root only protects itself; everything is under it
		if protected == "/" {
			continue
		}

		// Directly under a protected directory: /etc/passwd but not /var/tmp/app/x.log
		if filepath.Dir(cleanPath) == protected && isSystemRoot(protected) {
			return fmt.Errorf("%w: %s", ErrProtectedPath, cleanPath)
		}
	}

	for _, protected := range pv.customPaths {
		if cleanPath == protected || strings.HasPrefix(cleanPath, protected+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrProtectedPath, cleanPath)
		}
	}

	return nil
}

// isSystemRoot reports whether direct children of dir are system files.
// Temp and log roots hold ordinary cleanup targets as direct children.
func isSystemRoot(dir string) bool {
	switch dir {
	case "/tmp", "/var/tmp", "/var/log", "/home", "/Users", "/Library":
		return false
	}
	return true
}

// AddSystemPath protects dir and its direct entries
func (pv *PathValidator) AddSystemPath(dir string) {
	cleanPath := filepath.Clean(dir)
	for _, p := range pv.protectedPaths {
		if p == cleanPath {
			return
		}
	}
	pv.protectedPaths = append(pv.protectedPaths, cleanPath)
}

// AddProtectedPath adds a custom protected path. Everything below it is
// protected too.
func (pv *PathValidator) AddProtectedPath(path string) {
	cleanPath := filepath.Clean(path)
	for _, p := range pv.customPaths {
		if p == cleanPath {
			return
		}
	}
	pv.customPaths = append(pv.customPaths, cleanPath)
}
