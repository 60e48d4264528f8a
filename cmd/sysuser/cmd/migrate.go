package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sysuser/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and the sys_user table, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDatabase(gdb)

		logger.Info("migration complete", "schema", cfg.Database.Schema)
		return nil
	},
}

func openDatabase(ctx context.Context) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx, gdb, cfg.Database.Schema); err != nil {
		closeDatabase(gdb)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		closeDatabase(gdb)
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return gdb, nil
}

func closeDatabase(gdb *gorm.DB) {
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}
}
