package app

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-board/internal/handlers"
	"github.com/vancomm/minesweeper-board/internal/middleware"
	"github.com/vancomm/minesweeper-board/internal/repository"
	"github.com/vancomm/minesweeper-board/internal/session"
)

// recorderProxy defers to whatever recorder the app holds at request time,
// so routes can be built before the database is connected.
type recorderProxy struct{ app *App }

func (p recorderProxy) Record(ctx context.Context, id uuid.UUID, round session.Round) error {
	return p.app.recorder.Record(ctx, id, round)
}

func (p recorderProxy) Highscores(
	ctx context.Context, filter repository.HighscoreFilter,
) ([]repository.Highscore, error) {
	return p.app.recorder.Highscores(ctx, filter)
}

func (a *App) loadRoutes() {
	sessions := handlers.NewSessions(
		a.log, a.registry, a.jwt, a.config.Upgrader(), a.config.Game,
	)
	records := handlers.NewRecords(a.log, recorderProxy{app: a})

	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireSession(a.log, a.jwt, h)
	}

	a.router.HandleFunc("POST /sessions", sessions.Create)
	a.router.HandleFunc("GET /sessions/{id}", auth(sessions.Fetch))
	a.router.HandleFunc("DELETE /sessions/{id}", auth(sessions.Close))
	a.router.HandleFunc("POST /sessions/{id}/reveal", auth(sessions.Reveal))
	a.router.HandleFunc("POST /sessions/{id}/flag", auth(sessions.Flag))
	a.router.HandleFunc("POST /sessions/{id}/reset", auth(sessions.Reset))
	a.router.HandleFunc("POST /sessions/{id}/start", auth(sessions.Start))
	a.router.HandleFunc("GET /sessions/{id}/connect", auth(sessions.Connect))

	a.router.HandleFunc("GET /records", records.Highscores)
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Recover(a.log),
		middleware.Logging(a.log),
		middleware.Cors(a.config.AllowedOrigins...),
	)
}
