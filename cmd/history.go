package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/minigraph/core"
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/internal/history"
	"github.com/huangsam/minigraph/internal/outwriter"
	"github.com/huangsam/minigraph/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNoStore is returned when a history command runs against the none backend.
var errNoStore = errors.New("history store is disabled (history-backend is none)")

// historySetup loads the shared configuration and opens the history store.
// Positional arguments of history commands are never the render entity.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadInput(nil, false); err != nil {
		return err
	}
	if err := history.Manager.Init(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// historyMigrateSetup loads the shared configuration without opening the store.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	return loadInput(nil, false)
}

// requireStore returns the managed store, or errNoStore when history is disabled.
func requireStore() (contract.HistoryStore, error) {
	store := history.Manager.GetStore()
	if store == nil || cfg.HistoryBackend == schema.NoneBackend {
		return nil, errNoStore
	}
	return store, nil
}

// historyCmd is the parent of the commands that manage recorded history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the recorded state history.",
	Long:  `The history subcommands import, export, inspect and migrate the database that render reads from.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// historyImportCmd loads a history file into the store.
var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import samples from a CSV, JSON or Parquet file.",
	Long: `Append the samples of a history file to the store. Samples already recorded
for the same entity and timestamp are replaced.

CSV files need an entity, timestamp and state header. Timestamps are RFC3339
or Unix seconds.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, args []string) {
		store, err := requireStore()
		if err != nil {
			contract.LogFatal("Cannot import history", err)
		}
		kind, err := importKind(args[0], viper.GetString("format"))
		if err != nil {
			contract.LogFatal("Cannot import history", err)
		}
		records, err := history.LoadRecords(kind, args[0])
		if err != nil {
			contract.LogFatal("Cannot read history file", err)
		}
		n, err := history.Import(rootCtx, store, records)
		if err != nil {
			contract.LogFatal("Cannot import history", err)
		}
		fmt.Printf("Imported %d samples from %s\n", n, args[0])
	},
}

// importKind resolves the file format from the flag or the file extension.
func importKind(path, format string) (schema.SourceKind, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	kind := schema.SourceKind(strings.ToLower(format))
	if _, ok := schema.ValidSourceKinds[kind]; !ok || kind == schema.StoreSource {
		return "", fmt.Errorf("unknown import format '%s'. must be csv, json, parquet", format)
	}
	return kind, nil
}

// historyExportCmd writes stored samples in an importable layout.
var historyExportCmd = &cobra.Command{
	Use:   "export [entity,...]",
	Short: "Export stored samples as CSV, JSON or Parquet.",
	Long: `Write the stored samples of the given entities, or of every entity when none
are given. Entities may be separated by spaces or commas. The text output mode
writes CSV.`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, args []string) {
		store, err := requireStore()
		if err != nil {
			contract.LogFatal("Cannot export history", err)
		}
		var entities []string
		for _, arg := range args {
			entities = append(entities, contract.SplitList(arg)...)
		}
		records, err := history.Export(rootCtx, store, entities)
		if err != nil {
			contract.LogFatal("Cannot export history", err)
		}
		if err := outwriter.WriteSampleRecords(records, cfg); err != nil {
			contract.LogFatal("Cannot write history", err)
		}
	},
}

// historyEntitiesCmd lists the recorded entities.
var historyEntitiesCmd = &cobra.Command{
	Use:     "entities",
	Short:   "List recorded entities with their sample counts.",
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := requireStore()
		if err != nil {
			contract.LogFatal("Cannot list entities", err)
		}
		if err := core.ExecuteListEntities(rootCtx, cfg, store, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot list entities", err)
		}
	},
}

// historyStatusCmd shows the state of the history backend.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the status of the history backend.",
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status := schema.HistoryStatus{Backend: string(cfg.HistoryBackend)}
		if store := history.Manager.GetStore(); store != nil {
			var err error
			if status, err = store.GetStatus(); err != nil {
				contract.LogFatal("Cannot read history status", err)
			}
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd deletes stored samples.
var historyClearCmd = &cobra.Command{
	Use:     "clear [entity]",
	Short:   "Delete the stored samples of an entity, or of every entity.",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, args []string) {
		store, err := requireStore()
		if err != nil {
			contract.LogFatal("Cannot clear history", err)
		}
		entity := ""
		if len(args) > 0 {
			entity = args[0]
		}
		n, err := store.Clear(rootCtx, entity)
		if err != nil {
			contract.LogFatal("Cannot clear history", err)
		}
		if entity == "" {
			fmt.Printf("Cleared %d samples\n", n)
			return
		}
		fmt.Printf("Cleared %d samples of %s\n", n, entity)
	},
}

// historyMigrateCmd runs the schema migrations of the history database.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the history database schema.",
	Long: `Apply the embedded schema migrations to the configured history database.

Examples:
  # Migrate to the latest version
  minigraph history migrate

  # Roll back every migration
  minigraph history migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := history.Migrate(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Cannot migrate history database", err)
		}
		if !result.Changed {
			fmt.Printf("History database already at version %d\n", result.To)
			return
		}
		fmt.Printf("Migrated history database from version %d to %d\n", result.From, result.To)
	},
}
