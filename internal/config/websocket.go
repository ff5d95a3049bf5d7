package config

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader accepts any origin in development and falls back to the
// same-origin check otherwise.
func (c Config) Upgrader() *websocket.Upgrader {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if c.Development() {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
	return upgrader
}
