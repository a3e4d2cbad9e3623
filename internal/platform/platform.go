package platform

import (
	"os/user"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// Info contains the platform-specific directories the default cleanup
// locations are built from.
type Info struct {
	OS             Platform
	HomeDir        string
	Username       string
	UserTempDirs   []string
	SystemTempDirs []string
	UserCacheDir   string
	UserLogDirs    []string
	SystemLogDirs  []string
	AuditLogDir    string
	ProtectedPaths []string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information
func GetInfo() (*Info, error) {
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	return InfoFor(Detect(), currentUser.HomeDir, currentUser.Username)
}

// InfoFor builds the Info for a given platform and home directory.
func InfoFor(p Platform, homeDir, username string) (*Info, error) {
	switch p {
	case MacOS:
		return getMacOSInfo(homeDir, username), nil
	case Linux:
		return getLinuxInfo(homeDir, username), nil
	default:
		return nil, ErrUnsupportedPlatform
	}
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
