package external

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"ratehub/internal/exceptions"
	httpclient "ratehub/internal/http"
	"ratehub/internal/metrics"
	"ratehub/internal/schema"
	env "ratehub/internal/secret"
)

// estimationTimeout is shorter than the provider window; the estimate is the
// terminal fallback and the user is already waiting.
const estimationTimeout = 30 * time.Second

// MarkupConfig maps service categories to sell-price markups. Injected into
// the estimator rather than read from a package-level table.
type MarkupConfig map[schema.ServiceType]float64

// DefaultMarkupConfig mirrors the marketplace's standard category margins.
func DefaultMarkupConfig() MarkupConfig {
	return MarkupConfig{
		schema.FCL:    0.18,
		schema.LCL:    0.22,
		schema.Air:    0.15,
		schema.Rail:   0.20,
		schema.Road:   0.20,
		schema.Parcel: 0.25,
	}
}

const fallbackMarkup = 0.20

type estimationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type estimationResponse struct {
	Text string `json:"text"`
}

// Estimator asks the generative estimation service for a base cost when the
// live provider cannot serve. No cache, no quota: this is the last layer.
type Estimator struct {
	client *httpclient.HttpClient
	url    string
	model  string
	token  string
	markup MarkupConfig
}

func NewEstimator(client *httpclient.HttpClient, e *env.Manager, markup MarkupConfig) *Estimator {
	if markup == nil {
		markup = DefaultMarkupConfig()
	}
	return &Estimator{
		client: client,
		url:    *e.EstimatorURL,
		model:  *e.EstimatorModel,
		token:  *e.EstimatorToken,
		markup: markup,
	}
}

// Estimate returns the sell price for the requested lane: generated base cost
// times (1 + category markup). A response that cannot be parsed as a number
// is fatal; nothing sits below this layer.
func (e *Estimator) Estimate(ctx context.Context, request *schema.QuoteRequest) (float64, error) {
	headers := map[string]string{}
	if e.token != "" {
		headers["Authorization"] = "Bearer " + e.token
	}

	body, statusCode, err := e.client.PostJSON(ctx, e.url, estimationRequest{
		Model:  e.model,
		Prompt: buildPrompt(request),
	}, headers, estimationTimeout)
	if err != nil {
		metrics.EstimationsTotal.WithLabelValues("error").Inc()
		return 0, exceptions.Classified(exceptions.EstimationFailure, "estimation service not reachable", err)
	}
	if statusCode != 200 {
		metrics.EstimationsTotal.WithLabelValues("error").Inc()
		return 0, exceptions.Classified(exceptions.EstimationFailure,
			fmt.Sprintf("estimation service returned status %d", statusCode), nil)
	}

	baseCost, err := parseNumericReply(body)
	if err != nil {
		metrics.EstimationsTotal.WithLabelValues("unparseable").Inc()
		return 0, exceptions.Classified(exceptions.EstimationFailure, "estimation reply is not numeric", err)
	}

	markup, ok := e.markup[request.ServiceType]
	if !ok {
		markup = fallbackMarkup
	}
	sellPrice := math.Round(baseCost*(1+markup)*100) / 100
	log.Infof("Estimated %s %s -> %s at %.2f %s (markup %.0f%%)",
		request.ServiceType, request.Origin, request.Destination, sellPrice, request.Currency, markup*100)
	metrics.EstimationsTotal.WithLabelValues("ok").Inc()
	return sellPrice, nil
}

func buildPrompt(request *schema.QuoteRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Estimate the current market base cost in %s for a %s freight shipment from %s to %s.",
		request.Currency, strings.ToUpper(string(request.ServiceType)), request.Origin, request.Destination)
	if request.Cargo.WeightKg > 0 {
		fmt.Fprintf(&sb, " Cargo weight: %.0f kg.", request.Cargo.WeightKg)
	}
	if request.Cargo.VolumeM3 > 0 {
		fmt.Fprintf(&sb, " Cargo volume: %.1f m3.", request.Cargo.VolumeM3)
	}
	for _, line := range request.Cargo.Containers {
		fmt.Fprintf(&sb, " Containers: %dx%s.", line.Quantity, line.Type)
	}
	if request.Cargo.HSCode != "" {
		fmt.Fprintf(&sb, " HS code: %s.", request.Cargo.HSCode)
	}
	sb.WriteString(" Respond with a single number only, no currency symbol, no explanation.")
	return sb.String()
}

// parseNumericReply is deliberately defensive: the service should return a
// bare number but may wrap it in JSON or decorate it with symbols.
func parseNumericReply(body []byte) (float64, error) {
	text := strings.TrimSpace(string(body))
	var wrapped estimationResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Text != "" {
		text = strings.TrimSpace(wrapped.Text)
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, text)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number: %w", text, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, fmt.Errorf("estimate %q is not a usable cost", text)
	}
	return value, nil
}
