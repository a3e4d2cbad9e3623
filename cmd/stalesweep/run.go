package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fenilsonani/stalesweep/internal/cleaner"
	"github.com/fenilsonani/stalesweep/internal/config"
	"github.com/fenilsonani/stalesweep/internal/engine"
	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/platform"
	"github.com/fenilsonani/stalesweep/internal/progress"
	"github.com/fenilsonani/stalesweep/internal/reporter"
)

var (
	daysOld        int
	dryRun         bool
	whatIf         bool
	assumeYes      bool
	locationSpecs  []string
	privilegedLocs []string
	parallelism    int
	planFormat     string
	logDir         string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find and remove stale files",
	Long: `Scans every location for files older than --days. With --dry-run the
candidates are written to a plan file and nothing is deleted. Otherwise
each candidate is confirmed interactively (or approved with --yes) and
every decision is written to the audit log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyRunFlags(cmd, cfg)

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		// Only the platform defaults depend on a supported OS
		info, infoErr := platform.GetInfo()
		registry, err := buildRegistry(cfg, info, infoErr, locationSpecs, privilegedLocs)
		if err != nil {
			return err
		}

		var systemPaths []string
		if info != nil {
			systemPaths = info.ProtectedPaths
		}

		auditDir := cfg.Audit.Dir
		if auditDir != "" {
			auditDir = location.ExpandPath(auditDir, homeDirFor(info))
		}
		execCtx, err := platform.DetectContext(auditDir)
		if err != nil {
			return err
		}

		logger := newLogger(cfg)
		defer logger.Sync()

		if infoErr != nil {
			logger.Debug("platform defaults unavailable", zap.Error(infoErr))
		}

		opts := engine.Options{
			DaysOld:     cfg.DaysOld,
			DryRun:      cfg.DryRun,
			WhatIf:      cfg.WhatIf,
			AssumeYes:   assumeYes,
			Locations:   registry,
			Exec:        execCtx,
			PlanFile:    planFileName(cfg),
			PlanFormat:  cfg.Plan.Format,
			Parallelism: cfg.Parallelism,
			Audit: engine.AuditOptions{
				File:       cfg.Audit.File,
				MaxSizeMB:  cfg.Audit.MaxSizeMB,
				MaxBackups: cfg.Audit.MaxFiles,
			},
			SystemPaths:    systemPaths,
			ProtectedPaths: cfg.ProtectedPaths,
			Logger:         logger,
		}

		if !opts.DryRun && !opts.AssumeYes && !opts.WhatIf {
			if isTerminal(os.Stdin) {
				opts.Confirm = cleaner.NewPrompter(os.Stdin, os.Stderr).Confirm
			} else {
				fmt.Fprintln(os.Stderr, "stdin is not a terminal; every file will be skipped unless --yes is given")
			}
		}

		if verbose || cfg.Verbose {
			opts.Progress = progress.NewReporter()
			updates, done := watchProgress(opts.Progress, os.Stderr)
			defer func() {
				opts.Progress.Unsubscribe(updates)
				<-done
			}()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := engine.Run(ctx, opts)
		if err != nil {
			return err
		}

		rptr := reporter.New(cmd.OutOrStdout(), format)
		rptr.SetPrivilege(execCtx.PrivilegeLabel())
		if usage, err := platform.GetVolumeUsage(execCtx.WorkDir); err == nil {
			rptr.SetVolume(usage)
		}
		if err := rptr.ReportSummary(result); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if result.HasErrors() {
			return errRunHadErrors
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&daysOld, "days", config.DefaultDaysOld, "delete files not written for this many days")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "write a plan file instead of deleting")
	runCmd.Flags().BoolVar(&whatIf, "what-if", false, "go through the live flow but skip every deletion")
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "approve every deletion without asking")
	runCmd.Flags().StringArrayVar(&locationSpecs, "location", nil, "scan this directory instead of the defaults (path[=description], repeatable)")
	runCmd.Flags().StringArrayVar(&privilegedLocs, "privileged-location", nil, "like --location, but only cleaned when running as root")
	runCmd.Flags().IntVar(&parallelism, "parallel", 1, "number of locations scanned at once")
	runCmd.Flags().StringVar(&planFormat, "plan-format", "", "plan file format (json, yaml)")
	runCmd.Flags().StringVar(&logDir, "log-dir", "", "audit log directory")
}

// applyRunFlags overrides config values with flags the user set explicitly
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.DaysOld = daysOld
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if flags.Changed("what-if") {
		cfg.WhatIf = whatIf
	}
	if flags.Changed("parallel") {
		cfg.Parallelism = parallelism
	}
	if flags.Changed("plan-format") {
		cfg.Plan.Format = planFormat
	}
	if flags.Changed("log-dir") {
		cfg.Audit.Dir = logDir
	}
}

func watchProgress(r *progress.Reporter, w io.Writer) (<-chan progress.Event, <-chan struct{}) {
	updates := r.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range updates {
			fmt.Fprintln(w, progress.Format(e))
		}
	}()

	return updates, done
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
