package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ratehub/internal/exceptions"
	"ratehub/internal/fees"
	"ratehub/internal/middleware"
	"ratehub/internal/schema"
)

var errMissingRequest = errors.New("validated request missing from context")

const dateLayout = "2006-01-02"

type BreakdownService struct {
	calculator *fees.Calculator
}

func NewBreakdownService(calculator *fees.Calculator) *BreakdownService {
	return &BreakdownService{calculator: calculator}
}

// BreakdownHandler computes a standalone port fee / demurrage breakdown.
func BreakdownHandler(s *BreakdownService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, ok := r.Context().Value(middleware.BreakdownQueryKey).(schema.QueryParamsForBreakdown)
		if !ok {
			exceptions.RequestErrorHandler(w, errMissingRequest)
			return
		}

		var arrivalDate, pickupDate *time.Time
		if params.ArrivalDate != "" && params.PickupDate != "" {
			arrival, errArrival := time.Parse(dateLayout, params.ArrivalDate)
			pickup, errPickup := time.Parse(dateLayout, params.PickupDate)
			if errArrival == nil && errPickup == nil {
				arrivalDate, pickupDate = &arrival, &pickup
			}
		}

		breakdown := s.calculator.BreakdownFor(params.OceanFreight, params.Origin, params.Destination,
			params.ContainerType, params.Quantity, arrivalDate, pickupDate)

		if err := json.NewEncoder(w).Encode(breakdown); err != nil {
			exceptions.InternalErrorHandler(w, err)
		}
	})
}
