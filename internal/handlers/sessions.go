package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/session"
)

var ErrOutOfBounds = errors.New("cell position out of bounds")

type Sessions struct {
	log      *logrus.Logger
	registry *session.Registry
	jwt      *config.JWT
	upgrader *websocket.Upgrader
	defaults session.Config
}

func NewSessions(
	log *logrus.Logger,
	registry *session.Registry,
	jwt *config.JWT,
	upgrader *websocket.Upgrader,
	defaults session.Config,
) *Sessions {
	return &Sessions{
		log:      log,
		registry: registry,
		jwt:      jwt,
		upgrader: upgrader,
		defaults: defaults,
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, mines.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotConfigured):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (h Sessions) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.WithError(err).Error("session request failed")
	}
	sendErrorOrLog(w, h.log, code, err)
}

func (h Sessions) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, *session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return uuid.Nil, nil, false
	}
	s, ok := h.registry.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return uuid.Nil, nil, false
	}
	return id, s, true
}

func (h Sessions) respond(w http.ResponseWriter, id uuid.UUID, s *session.Session) {
	view, err := s.Snapshot()
	if err != nil {
		h.fail(w, err)
		return
	}
	sendJSONOrLog(w, h.log, SessionDTO{SessionId: id, View: view})
}

func (h Sessions) Create(w http.ResponseWriter, r *http.Request) {
	game, err := ParseGameConfig(r.URL.Query(), h.defaults)
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}

	id, s, err := h.registry.Create(game)
	if err != nil {
		h.fail(w, err)
		return
	}

	token, err := h.jwt.Sign(id)
	if err != nil {
		h.registry.Remove(id)
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to sign session token")
		return
	}

	view, err := s.Snapshot()
	if err != nil {
		h.fail(w, err)
		return
	}
	sendStatusJSONOrLog(w, h.log, http.StatusCreated, SessionDTO{
		SessionId: id,
		Token:     token,
		View:      view,
	})
}

func (h Sessions) Fetch(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respond(w, id, s)
}

// position reads the cell position from the query and checks it against
// the session's board.
func (h Sessions) position(w http.ResponseWriter, r *http.Request, s *session.Session) (PositionDTO, bool) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return pos, false
	}
	game, ok := s.Config()
	if !ok {
		h.fail(w, session.ErrNotConfigured)
		return pos, false
	}
	if !game.InBounds(pos.Row, pos.Col) {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, ErrOutOfBounds)
		return pos, false
	}
	return pos, true
}

func (h Sessions) Reveal(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	pos, ok := h.position(w, r, s)
	if !ok {
		return
	}
	if _, err := s.Reveal(pos.Row, pos.Col); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, id, s)
}

func (h Sessions) Flag(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	pos, ok := h.position(w, r, s)
	if !ok {
		return
	}
	if _, err := s.ToggleFlag(pos.Row, pos.Col); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, id, s)
}

func (h Sessions) Reset(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, id, s)
}

// Start begins a new game in the session; parameters missing from the
// query keep their current values.
func (h Sessions) Start(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	current, ok := s.Config()
	if !ok {
		current = h.defaults
	}
	game, err := ParseGameConfig(r.URL.Query(), current)
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}
	if err := s.Start(game); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, id, s)
}

func (h Sessions) Close(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.registry.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}
