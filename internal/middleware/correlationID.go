package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type correlateContextKey string

const correlationIDKey correlateContextKey = "X-Correlation-ID"

// CorrelationIDFrom reads the request correlation ID off the context.
func CorrelationIDFrom(ctx context.Context) string {
	if cid, ok := ctx.Value(correlationIDKey).(string); ok {
		return cid
	}
	return ""
}

// AddCorrelationID tags every request with a correlation ID so a quote can be
// traced across the provider and estimation legs. The ID is echoed back to the
// caller for support tickets.
func AddCorrelationID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(string(correlationIDKey))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		w.Header().Set(string(correlationIDKey), correlationID)
		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}
