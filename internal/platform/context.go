package platform

import (
	"fmt"
	"os"
	"os/user"
)

// ExecutionContext carries the process identity and base paths a run
// depends on. The engine never consults the ambient environment directly,
// so tests can hand it a fabricated context.
type ExecutionContext struct {
	// Elevated reports whether the process runs with root privileges.
	Elevated bool

	// WorkDir is where the plan artifact is written.
	WorkDir string

	// LogDir is the base directory of the audit log.
	LogDir string

	// Username is informational only.
	Username string
}

// DetectContext builds an ExecutionContext from the running process.
// logDir may be empty, in which case the platform default is used.
func DetectContext(logDir string) (*ExecutionContext, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	ctx := &ExecutionContext{
		Elevated: os.Geteuid() == 0,
		WorkDir:  wd,
		LogDir:   logDir,
	}

	if currentUser, err := user.Current(); err == nil {
		ctx.Username = currentUser.Username
		if ctx.LogDir == "" {
			if info, err := InfoFor(Detect(), currentUser.HomeDir, currentUser.Username); err == nil {
				ctx.LogDir = info.AuditLogDir
			}
		}
	}

	return ctx, nil
}

// PrivilegeLabel returns a short description of the privilege level.
func (c *ExecutionContext) PrivilegeLabel() string {
	if c.Elevated {
		return "elevated (root)"
	}
	return "standard user"
}
