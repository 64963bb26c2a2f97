package quote

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"ratehub/external"
	"ratehub/internal/exceptions"
	"ratehub/internal/fees"
	"ratehub/internal/metrics"
	"ratehub/internal/schema"
)

// RateSearchEndpoint is the provider endpoint for multi-mode rate search.
const RateSearchEndpoint = "rates/search"

// Gateway is what the resolver needs from the provider adapter.
type Gateway interface {
	Call(ctx context.Context, endpoint string, params map[string]any, timeout time.Duration) (external.CallResult, error)
}

// PriceEstimator is the terminal fallback below the live provider.
type PriceEstimator interface {
	Estimate(ctx context.Context, request *schema.QuoteRequest) (float64, error)
}

// Resolution is what a completed request hands back to the caller.
type Resolution struct {
	Quotes      []*schema.Quote
	QuotaNotice string
}

type ResolverFuncOption func(*Resolver)

// Resolver walks one request through cache, live provider and estimation
// fallback. Transitions are one-way; the live provider is never retried
// within a single request.
type Resolver struct {
	gateway     Gateway
	estimator   PriceEstimator
	calculator  *fees.Calculator
	callTimeout time.Duration
}

func NewResolver(gateway Gateway, estimator PriceEstimator, calculator *fees.Calculator, opts ...ResolverFuncOption) *Resolver {
	r := &Resolver{
		gateway:     gateway,
		estimator:   estimator,
		calculator:  calculator,
		callTimeout: external.DefaultCallTimeout,
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

func WithCallTimeout(timeout time.Duration) ResolverFuncOption {
	return func(r *Resolver) {
		r.callTimeout = timeout
	}
}

// Resolve turns a validated request into canonical quotes or a classified
// error. Recoverable provider failures silently continue to the estimation
// fallback; only fatal classifications surface.
func (r *Resolver) Resolve(ctx context.Context, request *schema.QuoteRequest) (*Resolution, error) {
	start := time.Now()

	// CacheCheck / LiveCall: the gateway folds both legs together.
	result, err := r.gateway.Call(ctx, RateSearchEndpoint, endpointParams(request), r.callTimeout)
	if err != nil {
		classified := exceptions.AsClassified(err)
		if !classified.Recoverable() {
			return nil, classified
		}
		// Recoverable -> Fallback. Logged and counted, never surfaced.
		log.Warnf("Provider leg failed (%s), continuing to estimation fallback", classified.Kind)
		metrics.RecoverableErrorsTotal.WithLabelValues(string(classified.Kind)).Inc()
		return r.fallback(ctx, request, start)
	}

	// Normalize: a payload with no usable price is fatal for this leg.
	quotes, err := Normalize(result.Payload, request, result.Provenance)
	if err != nil {
		return nil, exceptions.AsClassified(err)
	}

	r.enrich(quotes, request)

	resolution := &Resolution{Quotes: quotes}
	if result.Quota.Warned {
		resolution.QuotaNotice = result.Quota.Message()
	}
	metrics.ResolutionDurationSeconds.WithLabelValues(string(result.Provenance)).Observe(time.Since(start).Seconds())
	return resolution, nil
}

// fallback is the terminal leg. An estimation failure surfaces as-is: nothing
// sits below this layer.
func (r *Resolver) fallback(ctx context.Context, request *schema.QuoteRequest, start time.Time) (*Resolution, error) {
	sellPrice, err := r.estimator.Estimate(ctx, request)
	if err != nil {
		return nil, exceptions.AsClassified(err)
	}

	quote := &schema.Quote{
		Carrier:     "Marketplace Estimate",
		CarrierType: "estimate",
		ServiceType: request.ServiceType,
		TotalCost:   sellPrice,
		Currency:    request.Currency,
		Provenance:  schema.ProvenanceEstimated,
	}
	quotes := []*schema.Quote{quote}
	r.enrich(quotes, request)

	metrics.ResolutionDurationSeconds.WithLabelValues(string(schema.ProvenanceEstimated)).Observe(time.Since(start).Seconds())
	return &Resolution{Quotes: quotes}, nil
}

// enrich attaches a cost breakdown when both locations resolve to port codes
// and a container type is present. Enrichment never blocks quote delivery: a
// calculator fault degrades to "breakdown unavailable".
func (r *Resolver) enrich(quotes []*schema.Quote, request *schema.QuoteRequest) {
	origin, originOk := request.OriginPortCode()
	destination, destinationOk := request.DestinationPortCode()
	containerType, quantity, hasContainer := request.PrimaryContainerType()
	if !originOk || !destinationOk || !hasContainer {
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Errorf("Breakdown enrichment failed, quotes delivered without breakdown: %v", recovered)
		}
	}()

	for _, quote := range quotes {
		breakdown := r.calculator.BreakdownFor(quote.TotalCost, origin, destination, containerType, quantity, nil, nil)
		quote.Breakdown = &breakdown
	}
}

// endpointParams serializes every request field into the provider params so
// distinct semantic requests never share a cache key.
func endpointParams(request *schema.QuoteRequest) map[string]any {
	containers := make([]map[string]any, 0, len(request.Cargo.Containers))
	for _, line := range request.Cargo.Containers {
		containers = append(containers, map[string]any{
			"type":     line.Type,
			"quantity": line.Quantity,
		})
	}
	return map[string]any{
		"serviceType": string(request.ServiceType),
		"origin":      request.Origin,
		"destination": request.Destination,
		"weightKg":    request.Cargo.WeightKg,
		"volumeM3":    request.Cargo.VolumeM3,
		"containers":  containers,
		"hsCode":      request.Cargo.HSCode,
		"currency":    request.Currency,
	}
}
