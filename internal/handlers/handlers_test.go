package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/middleware"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
	"github.com/vancomm/minesweeper-board/internal/session"
)

type sessionResponse struct {
	SessionId string `json:"session_id"`
	Token     string `json:"token"`
	State     string `json:"state"`
	Time      int    `json:"time"`
	FirstPlay bool   `json:"first_play"`
	Config    struct {
		Rows, Cols, Mines, Timer int
	} `json:"config"`
	Board struct {
		Outcome   string `json:"outcome"`
		MinesLeft int    `json:"mines_left"`
		Remaining int    `json:"remaining"`
	} `json:"board"`
}

type fakeRecorder struct {
	filter repository.HighscoreFilter
	err    error
}

func (f *fakeRecorder) Record(context.Context, uuid.UUID, session.Round) error {
	return nil
}

func (f *fakeRecorder) Highscores(_ context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []repository.Highscore{{SessionId: "abc", RowCount: 9, ColCount: 9, MineCount: 10, ElapsedS: 42}}, nil
}

type fixture struct {
	t        *testing.T
	server   *httptest.Server
	registry *session.Registry
	recorder *fakeRecorder
}

// newFixture serves sessions whose boards all use layout.
func newFixture(t *testing.T, layout ...string) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	registry := session.NewRegistry(time.Hour, nil,
		session.WithBoardBuilder(func(mines.Params, *rand.Rand) (*mines.Board, error) {
			return mines.FromLayout(layout...)
		}),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		registry.Run(ctx, time.Hour)
	})

	j, err := config.NewJWT("test", time.Hour)
	require.NoError(t, err)

	c := config.Default()
	c.Mode = "development"
	sessions := NewSessions(log, registry, j, c.Upgrader(), session.DefaultConfig)
	recorder := &fakeRecorder{}
	records := NewRecords(log, recorder)

	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireSession(log, j, h)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("GET /sessions/{id}", auth(sessions.Fetch))
	mux.HandleFunc("DELETE /sessions/{id}", auth(sessions.Close))
	mux.HandleFunc("POST /sessions/{id}/reveal", auth(sessions.Reveal))
	mux.HandleFunc("POST /sessions/{id}/flag", auth(sessions.Flag))
	mux.HandleFunc("POST /sessions/{id}/reset", auth(sessions.Reset))
	mux.HandleFunc("POST /sessions/{id}/start", auth(sessions.Start))
	mux.HandleFunc("GET /sessions/{id}/connect", auth(sessions.Connect))
	mux.HandleFunc("GET /records", records.Highscores)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &fixture{t: t, server: server, registry: registry, recorder: recorder}
}

func (f *fixture) do(method, path, token string) *http.Response {
	f.t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, nil)
	require.NoError(f.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func (f *fixture) create(query string) sessionResponse {
	f.t.Helper()
	res := f.do(http.MethodPost, "/sessions?"+query, "")
	require.Equal(f.t, http.StatusCreated, res.StatusCode)
	return decode[sessionResponse](f.t, res)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, "*.", "..")

	created := f.create("rows=2&cols=2&mines=1&timer=30")
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "idle", created.State)
	assert.True(t, created.FirstPlay)
	assert.Equal(t, 30, created.Time)
	assert.Equal(t, 2, created.Config.Rows)
	assert.Equal(t, 30, created.Config.Timer)
	assert.Equal(t, "start", created.Board.Outcome)
	assert.Equal(t, 3, created.Board.Remaining)
	assert.Equal(t, 1, f.registry.Len())
}

func TestCreateSessionDefaults(t *testing.T) {
	f := newFixture(t)

	created := f.create("")
	assert.Equal(t, session.DefaultConfig.Rows, created.Config.Rows)
	assert.Equal(t, session.DefaultConfig.Cols, created.Config.Cols)
	assert.Equal(t, session.DefaultConfig.Mines, created.Config.Mines)
}

func TestCreateSessionRejectsBadConfig(t *testing.T) {
	f := newFixture(t)

	for _, query := range []string{
		"rows=2&cols=2&mines=4",
		"rows=0",
		"timer=1000",
		"rows=abc",
		"rows=50000&cols=50000&mines=1",
		"rows=4611686018427387905&cols=4&mines=0",
	} {
		res := f.do(http.MethodPost, "/sessions?"+query, "")
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, query)
	}
	assert.Equal(t, 0, f.registry.Len())
}

func TestPlayThroughHTTP(t *testing.T) {
	f := newFixture(t,
		"*..",
		"...",
	)
	created := f.create("rows=2&cols=3&mines=1")
	base := "/sessions/" + created.SessionId

	res := f.do(http.MethodPost, base+"/reveal?row=0&col=2", created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[sessionResponse](t, res)
	assert.Equal(t, "ongoing", got.Board.Outcome)
	assert.False(t, got.FirstPlay)
	assert.Equal(t, 1, got.Board.Remaining)

	res = f.do(http.MethodPost, base+"/flag?row=0&col=0", created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got = decode[sessionResponse](t, res)
	assert.Equal(t, 0, got.Board.MinesLeft)

	res = f.do(http.MethodPost, base+"/reveal?row=1&col=0", created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got = decode[sessionResponse](t, res)
	assert.Equal(t, "won", got.Board.Outcome)
	assert.Equal(t, "won", got.State)

	res = f.do(http.MethodGet, base, created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "won", decode[sessionResponse](t, res).Board.Outcome)

	res = f.do(http.MethodPost, base+"/reset", created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got = decode[sessionResponse](t, res)
	assert.Equal(t, "start", got.Board.Outcome)
	assert.True(t, got.FirstPlay)
}

func TestRevealMineLoses(t *testing.T) {
	f := newFixture(t,
		"*..",
		"...",
	)
	created := f.create("rows=2&cols=3&mines=1")
	base := "/sessions/" + created.SessionId

	f.do(http.MethodPost, base+"/reveal?row=1&col=2", created.Token)
	res := f.do(http.MethodPost, base+"/reveal?row=0&col=0", created.Token)
	got := decode[sessionResponse](t, res)
	assert.Equal(t, "lost", got.Board.Outcome)
	assert.Equal(t, "lost", got.State)
}

func TestPositionValidation(t *testing.T) {
	f := newFixture(t, "*.", "..")
	created := f.create("rows=2&cols=2&mines=1")
	base := "/sessions/" + created.SessionId

	tests := []struct {
		path string
		code int
	}{
		{"/reveal", http.StatusBadRequest},
		{"/reveal?row=1", http.StatusBadRequest},
		{"/reveal?row=2&col=0", http.StatusBadRequest},
		{"/flag?row=0&col=-1", http.StatusBadRequest},
		{"/flag?row=x&col=0", http.StatusBadRequest},
		{"/flag?row=0&col=0", http.StatusOK},
	}
	for _, tt := range tests {
		res := f.do(http.MethodPost, base+tt.path, created.Token)
		assert.Equal(t, tt.code, res.StatusCode, tt.path)
	}
}

func TestStartChangesConfiguration(t *testing.T) {
	f := newFixture(t, "*.", "..")
	created := f.create("rows=2&cols=2&mines=1")
	base := "/sessions/" + created.SessionId

	res := f.do(http.MethodPost, base+"/start?timer=999", created.Token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[sessionResponse](t, res)
	assert.Equal(t, 999, got.Config.Timer)
	assert.Equal(t, 2, got.Config.Rows)
	assert.Equal(t, 0, got.Time)

	res = f.do(http.MethodPost, base+"/start?mines=9", created.Token)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(http.MethodPost, base+"/start?rows=50000&cols=50000", created.Token)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSessionAuth(t *testing.T) {
	f := newFixture(t, "*.", "..")
	a := f.create("rows=2&cols=2&mines=1")
	b := f.create("rows=2&cols=2&mines=1")

	assert.Equal(t, http.StatusUnauthorized,
		f.do(http.MethodGet, "/sessions/"+a.SessionId, "").StatusCode)
	assert.Equal(t, http.StatusForbidden,
		f.do(http.MethodGet, "/sessions/"+a.SessionId, b.Token).StatusCode)
	assert.Equal(t, http.StatusOK,
		f.do(http.MethodGet, "/sessions/"+b.SessionId, b.Token).StatusCode)
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, "*.", "..")
	created := f.create("rows=2&cols=2&mines=1")
	base := "/sessions/" + created.SessionId

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, base, created.Token).StatusCode)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, base, created.Token).StatusCode)
	assert.Equal(t, 0, f.registry.Len())
}

func TestHighscores(t *testing.T) {
	f := newFixture(t)

	res := f.do(http.MethodGet, "/records?rows=9&cols=9&mines=10&timer=0&limit=5", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	scores := decode[[]map[string]any](t, res)
	require.Len(t, scores, 1)
	assert.EqualValues(t, 42, scores[0]["elapsed_s"])

	require.NotNil(t, f.recorder.filter.Params)
	assert.Equal(t, mines.Params{Rows: 9, Cols: 9, Mines: 10}, *f.recorder.filter.Params)
	require.NotNil(t, f.recorder.filter.Timer)
	assert.Equal(t, 0, *f.recorder.filter.Timer)
	assert.Equal(t, 5, f.recorder.filter.Limit)

	res = f.do(http.MethodGet, "/records?rows=9", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	f.recorder.err = errors.New("db down")
	res = f.do(http.MethodGet, "/records", "")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

type wsMessage struct {
	Event *struct {
		Kind    string `json:"kind"`
		Outcome string `json:"outcome"`
	} `json:"event"`
	Session *sessionResponse `json:"session"`
	Error   string           `json:"error"`
}

func dial(t *testing.T, f *fixture, created sessionResponse) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/sessions/" + created.SessionId + "/connect"
	u.RawQuery = url.Values{"token": {created.Token}}.Encode()

	c, res, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	res.Body.Close()
	t.Cleanup(func() { c.Close() })
	return c
}

// await reads messages until one satisfies ok.
func await(t *testing.T, c *websocket.Conn, ok func(wsMessage) bool) wsMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m wsMessage
		require.NoError(t, c.ReadJSON(&m))
		if ok(m) {
			return m
		}
	}
}

func TestConnect(t *testing.T) {
	f := newFixture(t,
		"*..",
		"...",
	)
	created := f.create("rows=2&cols=3&mines=1")
	c := dial(t, f, created)

	first := await(t, c, func(m wsMessage) bool { return m.Session != nil })
	assert.Equal(t, "start", first.Session.Board.Outcome)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("o 0 2\nf 0 0")))
	reply := await(t, c, func(m wsMessage) bool {
		return m.Event == nil && m.Session != nil && m.Session.Board.MinesLeft == 0
	})
	assert.Empty(t, reply.Error)
	assert.Equal(t, "ongoing", reply.Session.Board.Outcome)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("bogus")))
	failed := await(t, c, func(m wsMessage) bool { return m.Error != "" })
	assert.True(t, strings.Contains(failed.Error, "unknown command"), failed.Error)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("o 1 0")))
	won := await(t, c, func(m wsMessage) bool {
		return m.Event != nil && m.Event.Kind == "outcome" && m.Event.Outcome == "won"
	})
	require.NotNil(t, won.Session)
	assert.Equal(t, "won", won.Session.State)
}

func TestConnectClosesWithSession(t *testing.T) {
	f := newFixture(t, "*.", "..")
	created := f.create("rows=2&cols=2&mines=1")
	c := dial(t, f, created)
	await(t, c, func(m wsMessage) bool { return m.Session != nil })

	id, err := uuid.Parse(created.SessionId)
	require.NoError(t, err)
	require.True(t, f.registry.Remove(id))

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
			break
		}
	}
}
