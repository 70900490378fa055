package httpmiddleware

import (
	"net/http"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/google/uuid"
)

// CorrelationID puts a correlation id on the request context and echoes it in the
// response header. A client-supplied X-Correlation-ID is kept only if it is a UUID.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			candidate := r.Header.Get(logger.CorrelationIDHeader)
			if _, err := uuid.Parse(candidate); err != nil {
				candidate = ""
			}

			ctx, correlationID := logger.EnsureCorrelationID(r.Context(), candidate)
			r.Header.Set(logger.CorrelationIDHeader, correlationID)
			w.Header().Set(logger.CorrelationIDHeader, correlationID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
