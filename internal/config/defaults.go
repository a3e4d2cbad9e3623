package config

const (
	// DefaultDaysOld is the age threshold used when none is configured
	DefaultDaysOld = 14

	// DefaultPlanFile is the plan artifact name in the working directory
	DefaultPlanFile = "cleanup-plan.json"

	// DefaultAuditFile is the audit log name inside the audit directory
	DefaultAuditFile = "cleanup.log"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		DaysOld:     DefaultDaysOld,
		DryRun:      false,
		WhatIf:      false,
		Verbose:     false,
		LogFormat:   "console",
		Parallelism: 1, // Sequential, deterministic scanning
		Audit: AuditConfig{
			Dir:       "", // Platform default, see platform.Info.AuditLogDir
			File:      DefaultAuditFile,
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Plan: PlanConfig{
			File:   DefaultPlanFile,
			Format: "json",
		},
		// Empty means the built-in platform locations
		Locations:      []LocationConfig{},
		ProtectedPaths: []string{},
	}
}
