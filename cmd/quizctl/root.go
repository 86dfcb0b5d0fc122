package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-trainer/internal/config"
	"github.com/mind-engage/mindengage-trainer/internal/db"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

var rootCmd = &cobra.Command{
	Use:          "quizctl",
	Short:        "Offline tooling for the trainer",
	Long:         "quizctl generates and scores question sets locally and migrates legacy question records.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "sqlite or postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("db", "", "database DSN (overrides DB_DSN)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(importLegacyCmd)
	rootCmd.AddCommand(exportLegacyCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(eventsCmd)
}

// openDB opens the configured database, flags taking priority over env.
func openDB(cmd *cobra.Command) (*sql.DB, string, error) {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBDSN = v
	}
	dbh, err := db.Open(context.Background(), db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return dbh, cfg.DBDriver, nil
}

func openStore(cmd *cobra.Command) (quiz.Store, func() error, error) {
	dbh, driver, err := openDB(cmd)
	if err != nil {
		return nil, nil, err
	}
	return quiz.NewSQLStore(dbh, driver), dbh.Close, nil
}

// readInput reads a file argument, or stdin for "-" and "".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
