// =============================================================================
// Expense Intake - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (expense-intake)
//   ├── validateCmd (expense-intake validate)
//   ├── submitCmd   (expense-intake submit)
//   ├── serveCmd    (expense-intake serve)
//   └── versionCmd  (expense-intake version)
//
// CONFIGURATION:
//   Commands that need configuration call setup(), which:
//   1. Loads config.yaml (or the --config file)
//   2. Builds the logger and stores it in the command context
//   3. Loads the category and department reference data
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/expense-intake/internal/config"
	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/refdata"
	"github.com/ginjaninja78/expense-intake/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when --config is not given.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// environment is what setup() builds for a command run.
type environment struct {
	cfg *config.Config
	ref *refdata.Provider
	log zerolog.Logger
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "expense-intake",
	Short: "Expense Intake - validate expense uploads and issue reports",
	Long: `Expense Intake reads expense spreadsheets (.csv or .xlsx), checks every row
against the expense rules, and turns fully valid batches into reports.

Example Usage:
  expense-intake validate march.csv              # Validate one upload
  expense-intake validate ./uploads --format json
  expense-intake submit march.csv --out report.json
  expense-intake serve --addr :9000              # Run the HTTP API`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// setup loads the configuration, logger and reference data for cmd.
//
// A missing config.yaml falls back to the defaults, unless --config was set
// explicitly. The logger is stored in the command context.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format, cmd.ErrOrStderr())
	cmd.SetContext(logger.WithContext(cmd.Context(), log))

	ref, err := refdata.Load(cfg.ReferenceData.CategoriesFile, cfg.ReferenceData.DepartmentsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	log.Debug().
		Int("categories", len(ref.Categories())).
		Int("departments", len(ref.Departments())).
		Msg("reference data loaded")

	return &environment{cfg: cfg, ref: ref, log: log}, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	if !explicit && !utils.FileExists(cfgFile) {
		return config.Default(), nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
