package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ratehub/internal/exceptions"
	"ratehub/internal/schema"
)

func HealthCheckHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responseJSON, err := json.Marshal(schema.HealthCheck{Status: "ok"})
		if err != nil {
			failedCheck := fmt.Errorf("health check failed in json marshal %s", err)
			exceptions.InternalErrorHandler(w, failedCheck)
			return
		}
		_, _ = w.Write(responseJSON)
	})
}
