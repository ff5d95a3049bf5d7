// Package handlers serves the game sessions and the round records over
// HTTP.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log *logrus.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

func sendStatusJSONOrLog(w http.ResponseWriter, log *logrus.Logger, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.WithError(err).WithField("response", v).Error("unable to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		log.WithError(err).Warn("unable to send response")
	}
}

func sendErrorOrLog(w http.ResponseWriter, log *logrus.Logger, code int, err error) {
	sendStatusJSONOrLog(w, log, code, wrapError(err))
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
