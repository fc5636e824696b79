package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crmlite/contact-api/internal/logging"
)

const traceIDHeader = "X-Request-ID"

// Tracing assigns each request a correlation id, honoring one supplied by the
// caller, and echoes it back in the response headers.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		w.Header().Set(traceIDHeader, traceID)
		ctx := logging.WithRequestID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
