package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-board/internal/config"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
)

// Token reads the session token from the Authorization header, falling
// back to the token query parameter browsers use for websockets.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func Claims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*config.SessionClaims)
	return claims, ok
}

// RequireSession only lets requests through whose token was issued for the
// session named by the {id} path value.
func RequireSession(log *logrus.Logger, j *config.JWT, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		token := Token(r)
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		claims, err := j.Parse(token)
		if err != nil {
			log.WithError(err).Debug("rejected session token")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if claims.SessionId != id {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
		next(w, r.WithContext(ctx))
	}
}
