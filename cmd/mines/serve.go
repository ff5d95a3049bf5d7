package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-board/internal/app"
	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/logging"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM,
			)
			defer stop()
			return serve(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	c, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Error("unable to load config")
		return err
	}
	if err := logging.Setup(c, os.Stderr, log, mines.Log, session.Log); err != nil {
		log.WithError(err).Error("unable to set up logging")
		return err
	}

	log.Info("starting up, mode = ", c.Mode)
	log.WithFields(c.Fields()).Debug("config")

	a, err := app.New(log, c)
	if err != nil {
		log.WithError(err).Error("unable to create app")
		return err
	}
	if err := a.Start(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("exit reason")
		return err
	}
	return nil
}
