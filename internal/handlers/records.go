package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

type Records struct {
	log      *logrus.Logger
	recorder repository.Recorder
}

func NewRecords(log *logrus.Logger, recorder repository.Recorder) *Records {
	return &Records{log: log, recorder: recorder}
}

func (h Records) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}
	scores, err := h.recorder.Highscores(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to fetch highscores")
		return
	}
	sendJSONOrLog(w, h.log, scores)
}
