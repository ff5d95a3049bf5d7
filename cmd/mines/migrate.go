package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/database"
	"github.com/vancomm/minesweeper-board/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Manage the round record schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			return runMigrate(configPath, action)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	return cmd
}

func runMigrate(configPath, action string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Setup(c, os.Stderr, log); err != nil {
		return err
	}
	if !c.Database.Enabled() {
		return config.ErrNoDatabase
	}

	migrator, err := database.NewMigrator(c.Database.URL, database.Migrations)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch action {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("database has no migrations applied")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check migration version: %w", err)
	}
	log.WithFields(logrus.Fields{
		"action":  action,
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
	return nil
}
