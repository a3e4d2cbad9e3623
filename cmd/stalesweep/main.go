package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fenilsonani/stalesweep/internal/config"
	"github.com/fenilsonani/stalesweep/internal/location"
	"github.com/fenilsonani/stalesweep/internal/logging"
	"github.com/fenilsonani/stalesweep/internal/plan"
	"github.com/fenilsonani/stalesweep/internal/platform"
	"github.com/fenilsonani/stalesweep/internal/reporter"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const (
	exitOK           = 0
	exitPrecondition = 1
	exitRunErrors    = 2
)

var (
	configPath string
	verbose    bool
	logFormat  string
	outputFmt  string
)

// errRunHadErrors makes main exit with exitRunErrors after the summary
// has been printed
var errRunHadErrors = errors.New("run completed with errors")

func main() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errRunHadErrors):
		return exitRunErrors
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitPrecondition
	}
}

var rootCmd = &cobra.Command{
	Use:   "stalesweep",
	Short: "Remove stale files from temp and log directories",
	Long: `stalesweep finds files in well-known temp, cache and log directories that
have not been written for a number of days. A dry run writes a plan file;
a live run asks before deleting each file and keeps an audit log.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect dry-run plan files",
}

var planShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the items of a plan file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPlanFile
		if len(args) == 1 {
			path = args[0]
		} else if cfg, err := loadConfig(); err == nil {
			w := plan.Writer{FileName: planFileName(cfg), Format: cfg.Plan.Format}
			path = w.Path()
		}

		doc, err := plan.Read(path)
		if err != nil {
			return err
		}

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}
		return reporter.New(cmd.OutOrStdout(), format).ReportPlan(doc)
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the locations a run would visit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		info, infoErr := platform.GetInfo()
		registry, err := buildRegistry(cfg, info, infoErr, nil, nil)
		if err != nil {
			return err
		}

		rows := make([]reporter.LocationStatus, 0, registry.Len())
		for _, loc := range registry.All() {
			row := reporter.LocationStatus{Location: loc}
			if fi, err := os.Stat(loc.Path); err == nil && fi.IsDir() {
				row.Exists = true
				if usage, err := platform.GetVolumeUsage(loc.Path); err == nil {
					row.Volume = usage
				}
			}
			rows = append(rows, row)
		}

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}
		return reporter.New(cmd.OutOrStdout(), format).ReportLocations(rows)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := configPath
		if cfgPath == "" {
			var err error
			if cfgPath, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", cfgPath)

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Fprintln(out, "Config file does not exist. Using default configuration.")
			fmt.Fprintln(out, "Run 'stalesweep config init' to create one.")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		return reporter.New(out, format).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureConfigExists()
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "diagnostic log format (console, json)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, yaml)")

	planCmd.AddCommand(planShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}

func newLogger(cfg *config.Config) *zap.Logger {
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}

	logger, err := logging.New(logging.Options{
		Verbose: verbose || cfg.Verbose,
		Format:  format,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
		return zap.NewNop()
	}
	return logger
}

// buildRegistry picks the locations of a run: command-line overrides win,
// then configured locations, then the platform defaults. infoErr only
// matters when the platform defaults are needed.
func buildRegistry(cfg *config.Config, info *platform.Info, infoErr error, overrides, privileged []string) (*location.Registry, error) {
	homeDir := homeDirFor(info)

	if len(overrides) > 0 || len(privileged) > 0 {
		locs := make([]location.Location, 0, len(overrides)+len(privileged))
		for _, spec := range overrides {
			loc, err := location.ParseOverride(spec, false, homeDir)
			if err != nil {
				return nil, err
			}
			locs = append(locs, loc)
		}
		for _, spec := range privileged {
			loc, err := location.ParseOverride(spec, true, homeDir)
			if err != nil {
				return nil, err
			}
			locs = append(locs, loc)
		}
		return location.New(locs...), nil
	}

	if len(cfg.Locations) > 0 {
		return location.FromConfig(cfg.Locations, homeDir), nil
	}

	if infoErr != nil {
		return nil, fmt.Errorf("no locations given and platform defaults unavailable: %w", infoErr)
	}
	return location.Defaults(info), nil
}

// homeDirFor returns the home directory used to expand ~ in locations
func homeDirFor(info *platform.Info) string {
	if info != nil && info.HomeDir != "" {
		return info.HomeDir
	}
	home, _ := os.UserHomeDir()
	return home
}

// planFileName returns the configured plan file name, or "" to let the
// plan writer derive one from the format.
func planFileName(cfg *config.Config) string {
	if cfg.Plan.File == config.DefaultPlanFile && cfg.Plan.Format != "" && cfg.Plan.Format != plan.FormatJSON {
		return ""
	}
	return cfg.Plan.File
}
