package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"dojoledger/pkg/requestcontext"
)

// RequestID assigns each request a UUID (or adopts the caller's X-Request-ID)
// and echoes it back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime pins a single observation of the clock to the request context so
// every layer sees the same "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), requestcontext.Now(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
