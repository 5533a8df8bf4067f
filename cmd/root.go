package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/history"
	"github.com/huangsam/minigraph/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "minigraph",
	Short:              "Chart entity state history as sparkline geometry.",
	Long:               `Minigraph buckets the state history of an entity, aggregates each bucket and projects it into chart geometry.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in ENV variables and sets defaults.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("MINIGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("lookback", contract.DefaultLookback)
	viper.SetDefault("buckets-per-hour", contract.DefaultBucketsPerHour)
	viper.SetDefault("chart", schema.LineChart)
	viper.SetDefault("aggregate", schema.AggAvg)
	viper.SetDefault("window", schema.RollingWindow)
	viper.SetDefault("source", schema.StoreSource)
	viper.SetDefault("history-backend", schema.SQLiteBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("emoji", "no")
	viper.SetDefault("color", "yes")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".minigraph") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// loadInput merges config file, env and flags into input and validates them into cfg.
// The entity is taken from the first positional argument when present.
func loadInput(args []string, requireEntity bool) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.Entity = ""
	if len(args) > 0 {
		input.Entity = args[0]
	}

	// 4. Run all validation and complex parsing.
	if requireEntity {
		return contract.ProcessAndValidate(cfg, input)
	}
	return contract.ProcessShared(cfg, input)
}

// sharedSetup unmarshals config, runs validation and opens the history store when it is the source.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := loadInput(args, true); err != nil {
		return err
	}
	if cfg.Source != schema.StoreSource {
		return nil
	}
	if err := history.Manager.Init(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// historySource returns where the configured render reads its history from.
func historySource() contract.HistorySource {
	if cfg.Source != schema.StoreSource {
		return history.NewFileSource(cfg.Source, cfg.SourceFile)
	}
	if store := history.Manager.GetStore(); store != nil {
		return store
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Close releases the resources opened by the last command.
func Close() {
	history.Manager.Close()
}
