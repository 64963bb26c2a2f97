package handlers

import (
	"encoding/json"
	"net/http"

	"ratehub/internal/exceptions"
	"ratehub/internal/middleware"
	"ratehub/internal/quote"
	"ratehub/internal/schema"
)

type QuoteService struct {
	resolver *quote.Resolver
}

func NewQuoteService(resolver *quote.Resolver) *QuoteService {
	return &QuoteService{resolver: resolver}
}

// QuoteHandler resolves a validated quote request into canonical quotes.
// Recoverable provider failures never reach this writer; only fatal
// classifications surface as typed errors.
func QuoteHandler(s *QuoteService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		quoteRequest, ok := r.Context().Value(middleware.QuoteRequestKey).(schema.QuoteRequest)
		if !ok {
			exceptions.RequestErrorHandler(w, errMissingRequest)
			return
		}

		resolution, err := s.resolver.Resolve(r.Context(), &quoteRequest)
		if err != nil {
			exceptions.ClassifiedErrorHandler(w, err)
			return
		}

		response := schema.NewQuoteResponse(resolution.Quotes, resolution.QuotaNotice)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			exceptions.InternalErrorHandler(w, err)
		}
	})
}
