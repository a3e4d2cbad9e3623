package platform

import "path/filepath"

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir, username string) *Info {
	return &Info{
		OS:       MacOS,
		HomeDir:  homeDir,
		Username: username,
		UserTempDirs: []string{
			filepath.Join(homeDir, ".Trash"),
		},
		SystemTempDirs: []string{
			"/private/tmp",
			"/private/var/tmp",
		},
		UserCacheDir: filepath.Join(homeDir, "Library/Caches"),
		UserLogDirs: []string{
			filepath.Join(homeDir, "Library/Logs"),
		},
		SystemLogDirs: []string{
			"/Library/Logs",
			"/private/var/log",
		},
		AuditLogDir: "/Library/Logs/stalesweep",
		ProtectedPaths: []string{
			"/",
			"/System",
			"/Applications",
			"/Library/System",
			"/bin",
			"/sbin",
			"/usr",
			"/etc",
			"/var",
			"/dev",
			"/private/etc",
			"/private/var/db",
			filepath.Join(homeDir, "Library/Application Support"),
			filepath.Join(homeDir, "Library/Preferences"),
			filepath.Join(homeDir, "Documents"),
			filepath.Join(homeDir, "Desktop"),
			filepath.Join(homeDir, "Pictures"),
			filepath.Join(homeDir, "Music"),
			filepath.Join(homeDir, "Movies"),
		},
	}
}
