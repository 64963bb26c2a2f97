package middleware

import (
	"net/http"
)

func AddHeaders(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		correlationID := CorrelationIDFrom(r.Context())
		headers := map[string]string{
			"Connection":       "Keep-Alive",
			"Cache-Control":    "no-store",
			"Content-Type":     "application/json",
			"X-Correlation-ID": correlationID,
		}
		for key, value := range headers {
			w.Header().Set(key, value)
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
