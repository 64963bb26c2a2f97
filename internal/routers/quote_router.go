package routers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"ratehub/internal/dependencies"
	"ratehub/internal/handlers"
	"ratehub/internal/middleware"
)

func QuoteRouter() http.Handler {
	deps, err := dependencies.NewDependencies()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize dependencies")
		return nil
	}

	middlewareStackForQuotes := middleware.CreateStack(
		middleware.Recovery,
		middleware.CheckCORS,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
		middleware.Logging,
		middleware.QuoteRequestValidation,
	)
	middlewareStackForBreakdown := middleware.CreateStack(
		middleware.Recovery,
		middleware.CheckCORS,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
		middleware.Logging,
		middleware.BreakdownQueryValidation,
	)
	middlewareStackForhc := middleware.CreateStack(
		middleware.Recovery,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
		middleware.Logging,
	)

	quoteService := handlers.NewQuoteService(deps.Resolver)
	breakdownService := handlers.NewBreakdownService(deps.Calculator)

	quoteRouter := http.NewServeMux()
	quoteRouter.Handle("POST /quotes", middlewareStackForQuotes(handlers.QuoteHandler(quoteService)))
	quoteRouter.Handle("GET /fees/breakdown", middlewareStackForBreakdown(handlers.BreakdownHandler(breakdownService)))
	quoteRouter.Handle("GET /health", middlewareStackForhc(handlers.HealthCheckHandler()))
	quoteRouter.Handle("GET /metrics", promhttp.Handler())
	return quoteRouter
}
