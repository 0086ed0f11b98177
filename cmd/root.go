package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vuln-sim/vuln-sim/sim/scenario"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

var (
	configPath   string  // Scenario YAML file; empty runs the built-in default scenario
	seed         int64   // Seed for every random stream
	horizon      float64 // Simulation horizon (in days)
	logLevel     string  // Log verbosity level
	traceLevel   string  // Journal detail level
	traceOutput  string  // Path of the YAML journal export
	outputFormat string  // Report format on stdout
	resultsPath  string  // Path of the JSON report export
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "vuln-sim",
	Short: "Discrete-event simulator for vulnerability management on a network",
}

// runCmd executes a scenario using the config file and CLI overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a vulnerability scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting simulation with seed=%d, horizon=%.2f days, %d vulnerabilities",
			cfg.Seed, *cfg.Horizon, cfg.Vulnerabilities)

		s, err := scenario.Build(cfg)
		if err != nil {
			logrus.Fatalf("Building scenario: %v", err)
		}
		report, err := s.Run()
		if err != nil {
			logrus.Fatalf("Running scenario: %v", err)
		}
		if err := writeReport(os.Stdout, report, outputFormat); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		if resultsPath != "" {
			if err := saveReport(resultsPath, report); err != nil {
				logrus.Fatalf("Saving report: %v", err)
			}
		}
		if traceOutput != "" {
			if s.Journal == nil {
				logrus.Warnf("--trace-output set but trace level is %q; nothing written", cfg.Trace)
			} else if err := s.Journal.WriteYAML(traceOutput); err != nil {
				logrus.Fatalf("Writing trace: %v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks a scenario file without running it
var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Validate a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scenario.LoadConfig(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d vulnerabilities, %d sensors, horizon %.2f days)\n",
			args[0], cfg.Vulnerabilities, len(cfg.Sensors), *cfg.Horizon)
		return nil
	},
}

// resolveConfig loads the scenario and applies only the flags the user set,
// so file values are not clobbered by flag defaults.
func resolveConfig(cmd *cobra.Command) (*scenario.Config, error) {
	if !validReportFormats[outputFormat] {
		return nil, fmt.Errorf("unknown output format %q; valid: text, json", outputFormat)
	}
	cfg := scenario.DefaultConfig()
	if configPath != "" {
		loaded, err := scenario.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		h := horizon
		cfg.Horizon = &h
	}
	if flags.Changed("trace-level") {
		cfg.Trace = traceLevel
	}
	if traceOutput != "" && cfg.Trace == string(trace.TraceLevelNone) {
		cfg.Trace = string(trace.TraceLevelEvents)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var validReportFormats = map[string]bool{"text": true, "json": true}

func writeReport(w io.Writer, report *scenario.Report, format string) error {
	switch format {
	case "text":
		report.Print(w)
		return nil
	case "json":
		return report.WriteJSON(w)
	default:
		return fmt.Errorf("unknown output format %q; valid: text, json", format)
	}
}

func saveReport(path string, report *scenario.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags to their package variables, resetting
// each variable to its default.
func registerRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configPath, "config", "", "Scenario YAML file (default: built-in scenario)")
	fs.Int64Var(&seed, "seed", 42, "Seed for every random stream")
	fs.Float64Var(&horizon, "horizon", scenario.DefaultHorizon, "Simulation horizon (in days)")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&traceLevel, "trace-level", "none", "Journal detail level (none, events)")
	fs.StringVar(&traceOutput, "trace-output", "", "Write the event journal as YAML to this path")
	fs.StringVar(&outputFormat, "format", "text", "Report format on stdout (text, json)")
	fs.StringVar(&resultsPath, "results-path", "", "Also save the JSON report to this path")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultConfigCmd)
}
