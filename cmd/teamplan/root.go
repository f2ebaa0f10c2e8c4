package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/config"
	"github.com/ShayCichocki/teamplan/internal/logging"
	"github.com/ShayCichocki/teamplan/internal/runlog"
	"github.com/ShayCichocki/teamplan/internal/state"
)

var (
	configPath string
	logLevel   string
	verbose    bool
)

// appEnv is what every subcommand needs after flags and config are read.
type appEnv struct {
	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

var env *appEnv

var rootCmd = &cobra.Command{
	Use:   "teamplan",
	Short: "Plan team assignments into scheduled subtasks",
	Long: `teamplan breaks an assignment into subtasks, assigns them to team
members and places them on a working calendar before the due date.

Subtasks come from Claude when an API key (or AWS Bedrock) is configured,
and from built-in templates otherwise. Plans can be saved, listed again
later and exported as iCalendar files.

Examples:
  teamplan init                         # write .teamplan.yaml and request.yaml
  teamplan plan request.yaml            # plan and print
  teamplan plan request.yaml --save     # plan and store
  teamplan plan request.yaml --tui      # browse the plan interactively
  teamplan history                      # list stored plans
  teamplan export <id> -o plan.ics      # export a stored plan`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = setupEnv()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if env != nil && env.closer != nil {
			env.closer.Close()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user and project config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupEnv() (*appEnv, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, closer, err := logging.New(logging.Options{
		Level:      level,
		Console:    cfg.Logging.Console || verbose,
		ConsoleOut: os.Stderr,
		FilePath:   cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, logger: logger, closer: closer}, nil
}

func dbPath(cfg *config.Config) string {
	if cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath
	}
	return state.DefaultDBPath()
}

func runlogPath(cfg *config.Config) string {
	if cfg.Storage.RunlogPath != "" {
		return cfg.Storage.RunlogPath
	}
	return filepath.Join(filepath.Dir(state.DefaultDBPath()), "runs.db")
}

// openStore opens and migrates the plan database.
func openStore(cfg *config.Config) (*state.DB, error) {
	db, err := state.Open(dbPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func openRunlog(cfg *config.Config) (*runlog.Store, error) {
	return runlog.Open(runlogPath(cfg))
}
