package platform

import (
	"os"
	"path/filepath"
)

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	return &Info{
		OS:       Linux,
		HomeDir:  homeDir,
		Username: username,
		UserTempDirs: []string{
			filepath.Join(homeDir, ".local/share/Trash/files"),
		},
		SystemTempDirs: []string{
			"/tmp",
			"/var/tmp",
		},
		UserCacheDir: xdgCacheDir(homeDir),
		UserLogDirs: []string{
			filepath.Join(homeDir, ".local/state"),
		},
		SystemLogDirs: []string{
			"/var/log",
		},
		AuditLogDir: "/var/log/stalesweep",
		ProtectedPaths: []string{
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/home",
			"/lib",
			"/lib64",
			"/opt",
			"/proc",
			"/root",
			"/run",
			"/sbin",
			"/srv",
			"/sys",
			"/usr",
			"/var/lib",
			"/var/db",
		},
	}
}

// xdgCacheDir honours XDG_CACHE_HOME, falling back to ~/.cache
func xdgCacheDir(homeDir string) string {
	if cacheDir := os.Getenv("XDG_CACHE_HOME"); cacheDir != "" {
		return cacheDir
	}
	return filepath.Join(homeDir, ".cache")
}
