package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutorstack/tutorcore/cmd/tutorcore/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tutorcore",
	Short: "Session core for the math tutoring platform",
	Long: `tutorcore - session orchestration for browser-based math tutoring.

It manages the realtime voice channel, converts spoken math phrasing to
LaTeX, and maintains the live transcript board.

Configuration is stored in ~/.tutorcore/config.yaml.

Examples:
  # Run an interactive text session
  tutorcore run --student s1 --topic Algebra

  # Convert a spoken phrase to markup
  tutorcore math "x squared plus y squared"

  # List a student's archived sessions
  tutorcore sessions list --student s1`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.tutorcore/config.yaml)")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Commands that need config get a clear error via GetConfig();
		// commands like 'tutorcore version' still work.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
