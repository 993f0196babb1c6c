package httpapi

import (
	"context"
	"net/http"
)

type ctxKey string

const ctxSubjectID ctxKey = "subject_id"

// authMiddleware resolves the auth cookie and rejects anonymous
// requests. Unlike the websocket handshake, the HTTP write surface is
// strict: producers act on behalf of a known user.
func (s server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subjectID := s.resolver.Resolve(r)
		if subjectID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		ctx := context.WithValue(r.Context(), ctxSubjectID, subjectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subjectFromContext(ctx context.Context) string {
	subjectID, _ := ctx.Value(ctxSubjectID).(string)
	return subjectID
}
