package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
	"github.com/vancomm/minesweeper-board/internal/session"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	c := config.Default()
	c.Mode = "development"
	c.Addr = "127.0.0.1:0"

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	a, err := New(log, &c)
	require.NoError(t, err)
	return a
}

type countingRecorder struct {
	repository.Nop
	rounds chan session.Round
}

func (r countingRecorder) Record(_ context.Context, _ uuid.UUID, round session.Round) error {
	r.rounds <- round
	return nil
}

func TestHandler(t *testing.T) {
	a := newTestApp(t)
	h := a.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions?rows=3&cols=3&mines=1", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		SessionId string `json:"session_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	r := httptest.NewRequest(http.MethodGet, "/sessions/"+created.SessionId, nil)
	r.Header.Set("Authorization", "Bearer "+created.Token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/records", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFinishedRoundsAreRecorded(t *testing.T) {
	a := newTestApp(t)
	rec := countingRecorder{rounds: make(chan session.Round, 1)}
	a.recorder = rec

	id, s, err := a.registry.Create(session.Config{
		Params: mines.Params{Rows: 1, Cols: 2, Mines: 0},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.registry.Remove(id) })

	outcome, err := s.Reveal(0, 0)
	require.NoError(t, err)
	require.Equal(t, mines.Won, outcome)

	select {
	case round := <-rec.rounds:
		assert.Equal(t, mines.Won, round.Outcome)
		assert.Equal(t, 2, round.Config.Cols)
	case <-time.After(time.Second):
		t.Fatal("round was not recorded")
	}
}

func TestStartStopsWithContext(t *testing.T) {
	a := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestStartFailsOnBadAddr(t *testing.T) {
	a := newTestApp(t)
	a.config.Addr = "256.0.0.1:-1"
	assert.Error(t, a.Start(context.Background()))
}
