package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-board/internal/commands"
	"github.com/vancomm/minesweeper-board/internal/session"
)

const writeWait = 10 * time.Second

// Message is sent to websocket clients: the current session after every
// command batch and outcome change, bare events for ticks and state
// changes, and an error when a command fails.
type Message struct {
	Event   *session.Event `json:"event,omitempty"`
	Session *SessionDTO    `json:"session,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Connect streams session events over a websocket and executes the text
// commands the client sends.
func (h Sessions) Connect(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade")
		return
	}
	defer c.Close()

	log := h.log.WithField("session_id", id)
	log.Debug("websocket connected")

	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	replies := make(chan Message)
	quit := make(chan struct{})
	done := make(chan struct{})
	defer close(quit)

	go readCommands(c, s, log, replies, quit, done)

	current := func() Message {
		view, err := s.Snapshot()
		if err != nil {
			return Message{Error: err.Error()}
		}
		return Message{Session: &SessionDTO{SessionId: id, View: view}}
	}

	send := func(m Message) bool {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(m); err != nil {
			log.WithError(err).Debug("write")
			return false
		}
		return true
	}

	if !send(current()) {
		return
	}
	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				c.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(writeWait),
				)
				return
			}
			m := Message{Event: &e}
			if e.Kind == session.EventOutcome {
				m.Session = current().Session
			}
			if !send(m) {
				return
			}
		case m := <-replies:
			m.Session = current().Session
			if !send(m) {
				return
			}
		}
	}
}

func readCommands(
	c *websocket.Conn,
	s *session.Session,
	log *logrus.Entry,
	replies chan<- Message,
	quit <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read")
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		var reply Message
		if _, err := commands.Run(s, string(message)); err != nil {
			log.WithError(err).Debug("command")
			reply.Error = err.Error()
		}
		select {
		case replies <- reply:
		case <-quit:
			return
		}
	}
}
