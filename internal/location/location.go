// Package location defines the cleanup targets a run visits.
package location

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/stalesweep/internal/config"
	"github.com/fenilsonani/stalesweep/internal/platform"
)

// Location is a directory eligible for cleanup.
type Location struct {
	// Path is the root directory that is scanned recursively.
	Path string `json:"path" yaml:"path"`

	// Description is the human-readable label carried into plans and logs.
	Description string `json:"description" yaml:"description"`

	// RequiresElevatedPrivilege gates live-mode cleanup behind root.
	RequiresElevatedPrivilege bool `json:"requires_elevated_privilege" yaml:"requires_elevated_privilege"`
}

// Registry is an ordered, read-only list of locations.
type Registry struct {
	locations []Location
}

// New creates a Registry. The slice is copied.
func New(locs ...Location) *Registry {
	copied := make([]Location, len(locs))
	copy(copied, locs)
	return &Registry{locations: copied}
}

// All returns the locations in registry order.
func (r *Registry) All() []Location {
	if r == nil {
		return nil
	}
	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// Len returns the number of locations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.locations)
}

// FromConfig builds a Registry from configured locations, expanding ~ and
// environment variables in paths.
func FromConfig(cfgs []config.LocationConfig, homeDir string) *Registry {
	locs := make([]Location, 0, len(cfgs))
	for _, c := range cfgs {
		path := ExpandPath(c.Path, homeDir)
		desc := c.Description
		if desc == "" {
			desc = path
		}
		locs = append(locs, Location{
			Path:                      path,
			Description:               desc,
			RequiresElevatedPrivilege: c.RequiresElevatedPrivilege,
		})
	}
	return New(locs...)
}

// Defaults returns the built-in cleanup targets for a platform.
func Defaults(info *platform.Info) *Registry {
	var locs []Location

	for _, dir := range info.UserTempDirs {
		locs = append(locs, Location{Path: dir, Description: "User trash"})
	}
	if info.UserCacheDir != "" {
		locs = append(locs, Location{Path: info.UserCacheDir, Description: "User cache files"})
	}
	for _, dir := range info.UserLogDirs {
		locs = append(locs, Location{Path: dir, Description: "User log files"})
	}
	for _, dir := range info.SystemTempDirs {
		locs = append(locs, Location{
			Path:                      dir,
			Description:               "System temporary files",
			RequiresElevatedPrivilege: true,
		})
	}
	for _, dir := range info.SystemLogDirs {
		locs = append(locs, Location{
			Path:                      dir,
			Description:               "System log files",
			RequiresElevatedPrivilege: true,
		})
	}

	return New(locs...)
}

// ParseOverride parses a command-line location of the form
// "path" or "path=description".
func ParseOverride(spec string, privileged bool, homeDir string) (Location, error) {
	path, desc, _ := strings.Cut(spec, "=")
	path = strings.TrimSpace(path)
	desc = strings.TrimSpace(desc)

	if path == "" {
		return Location{}, fmt.Errorf("invalid location %q: empty path", spec)
	}

	path = ExpandPath(path, homeDir)
	if desc == "" {
		desc = path
	}

	return Location{
		Path:                      path,
		Description:               desc,
		RequiresElevatedPrivilege: privileged,
	}, nil
}

// ExpandPath expands ~ and environment variables and returns an absolute,
// clean path. Relative paths are resolved against the working directory.
func ExpandPath(path, homeDir string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	} else if path == "~" {
		path = homeDir
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
