// Package cli implements the agent-store admin commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwhitby/agent-store/internal/store"
)

var (
	dbPath      string
	postgresURL string
	verboseFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "agent-store",
	Short: "Persistence adapter for AI agents",
	Long:  "Admin CLI for the agent persistence store. Runs against an embedded SQLite file or a PostgreSQL server.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $AGENT_STORE_DB or ~/.agent-store/store.db)")
	RootCmd.PersistentFlags().StringVar(&postgresURL, "postgres", "", "PostgreSQL connection URL (default: $AGENT_STORE_POSTGRES_URL); overrides --db")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log connection and migration events")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("AGENT_STORE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agent-store", "store.db")
}

func getPostgresURL() string {
	if postgresURL != "" {
		return postgresURL
	}
	return os.Getenv("AGENT_STORE_POSTGRES_URL")
}

func openDB(ctx context.Context) (*store.DB, error) {
	cfg := store.Config{Driver: store.DriverSQLite, Path: getDBPath()}
	if url := getPostgresURL(); url != "" {
		cfg = store.Config{Driver: store.DriverPostgres, URL: url}
	}
	if verboseFlag {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
	}
	return store.Open(ctx, cfg)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
