package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"ratehub/internal/exceptions"
	"ratehub/internal/schema"
)

type requestContextKey string

const (
	QuoteRequestKey   requestContextKey = "quoteRequest"
	BreakdownQueryKey requestContextKey = "breakdownQuery"
)

// allowedParams creates a map of valid JSON field tags for a given struct.
func allowedParams(schemaStruct interface{}) map[string]struct{} {
	val := reflect.ValueOf(schemaStruct)
	jsonTags := make(map[string]struct{}, val.Type().NumField())
	for i := 0; i < val.Type().NumField(); i++ {
		if tag := val.Type().Field(i).Tag.Get("json"); tag != "" {
			jsonTags[tag] = struct{}{}
		}
	}
	return jsonTags
}

// validateQueryParams checks if query parameters are allowed for a given schema.
func validateQueryParams(w http.ResponseWriter, query map[string][]string, schemaStruct interface{}) bool {
	allowed := allowedParams(schemaStruct)
	for param := range query {
		if _, ok := allowed[param]; !ok {
			err := fmt.Errorf("invalid parameter: %s", param)
			log.Error(err)
			exceptions.RequestErrorHandler(w, err)
			return false
		}
	}
	return true
}

// validateStruct validates a struct and returns formatted error if validation fails.
func validateStruct(w http.ResponseWriter, params interface{}) bool {
	if err := schema.RequestValidate.Struct(params); err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			invalidField := fmt.Errorf("invalid field value in '%s': %v", e.Field(), e.Value())
			exceptions.RequestErrorHandler(w, invalidField)
			return false
		}
	}
	return true
}

// QuoteRequestValidation decodes and validates the quote request body.
func QuoteRequestValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var quoteRequest schema.QuoteRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&quoteRequest); err != nil {
			log.Error(err)
			exceptions.RequestErrorHandler(w, fmt.Errorf("invalid request body: %w", err))
			return
		}

		if !validateStruct(w, quoteRequest) {
			return
		}

		ctx := context.WithValue(r.Context(), QuoteRequestKey, quoteRequest)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BreakdownQueryValidation validates query parameters for the fee breakdown endpoint.
func BreakdownQueryValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if !validateQueryParams(w, query, schema.QueryParamsForBreakdown{}) {
			return
		}

		quantity, _ := strconv.Atoi(query.Get("quantity"))
		oceanFreight, _ := strconv.ParseFloat(query.Get("oceanFreight"), 64)
		requestParams := schema.QueryParamsForBreakdown{
			Origin:        query.Get("origin"),
			Destination:   query.Get("destination"),
			ContainerType: query.Get("containerType"),
			Quantity:      quantity,
			OceanFreight:  oceanFreight,
			ArrivalDate:   query.Get("arrivalDate"),
			PickupDate:    query.Get("pickupDate"),
		}

		if !validateStruct(w, requestParams) {
			return
		}

		ctx := context.WithValue(r.Context(), BreakdownQueryKey, requestParams)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
