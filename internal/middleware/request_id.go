package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mnogodumalon/schichtplan/internal/requestctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation id. A client-supplied
// X-Request-ID is kept so ids stay stable across proxies; otherwise a
// fresh uuid is generated. The id is echoed in the response header and
// stored in the context for handlers and the response envelope.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

// GetRequestID reads the correlation id set by RequestID.
func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
