package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/database"
	"github.com/vancomm/minesweeper-board/internal/repository"
	"github.com/vancomm/minesweeper-board/internal/session"
)

const (
	shutdownTimeout = 30 * time.Second
	recordTimeout   = 5 * time.Second
)

type App struct {
	log      *logrus.Logger
	config   *config.Config
	router   *http.ServeMux
	registry *session.Registry
	recorder repository.Recorder
	jwt      *config.JWT
	db       *pgxpool.Pool
}

func New(log *logrus.Logger, c *config.Config) (*App, error) {
	secret := c.Sessions.Secret
	if secret == "" {
		log.Warn("no session secret configured, tokens will not survive a restart")
		secret = uuid.NewString()
	}
	jwt, err := config.NewJWT(secret, c.Sessions.TokenLifetime.Duration)
	if err != nil {
		return nil, err
	}

	app := &App{
		log:      log,
		config:   c,
		router:   http.NewServeMux(),
		registry: session.NewRegistry(c.Sessions.TTL.Duration, nil,
			session.WithMaxCells(c.Sessions.MaxCells),
		),
		recorder: repository.Nop{},
		jwt:      jwt,
	}
	app.registry.OnRoundEnd(app.recordRound)
	app.loadRoutes()

	return app, nil
}

func (a *App) recordRound(id uuid.UUID, round session.Round) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := a.recorder.Record(ctx, id, round); err != nil {
		a.log.WithError(err).WithField("session_id", id).Error("unable to record round")
	}
}

// connect swaps the no-op recorder for the database backed one when a
// database is configured.
func (a *App) connect(ctx context.Context) error {
	if !a.config.Database.Enabled() {
		a.log.Info("no database configured, rounds will not be recorded")
		return nil
	}
	db, err := database.ConnectAndMigrate(ctx, a.config.Database, a.log)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	a.recorder = repository.NewStore(db, a.log)
	return nil
}

// Start serves the API until ctx is done.
func (a *App) Start(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}

	listener, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", a.config.Addr, err)
	}

	server := &http.Server{
		Handler: a.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	a.log.WithFields(logrus.Fields{
		"addr": listener.Addr().String(),
	}).Info("ready to serve")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	})
	g.Go(func() error {
		return a.registry.Run(gCtx, a.config.Sessions.ReapInterval.Duration)
	})

	return g.Wait()
}
