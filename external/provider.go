package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"ratehub/internal/cache"
	"ratehub/internal/exceptions"
	httpclient "ratehub/internal/http"
	"ratehub/internal/metrics"
	"ratehub/internal/schema"
	env "ratehub/internal/secret"
)

// DefaultCallTimeout bounds a live provider leg. Quote endpoints get the
// longer window; cheaper lookups may pass a shorter one.
const DefaultCallTimeout = 25 * time.Second

// ProxyRequest is the envelope sent to the trusted backend proxy.
type ProxyRequest struct {
	Endpoint   string         `json:"endpoint"`
	Params     map[string]any `json:"params"`
	UseSandbox bool           `json:"useSandbox"`
}

// ProxyResponse is what the proxy hands back from the live rate provider.
type ProxyResponse struct {
	Success bool              `json:"success"`
	Quotes  []json.RawMessage `json:"quotes"`
	Error   string            `json:"error,omitempty"`
}

// CallResult carries the raw quotes payload plus where it came from.
type CallResult struct {
	Payload    []byte
	Provenance schema.Provenance
	Quota      cache.Status
}

// ProviderGateway is the adapter in front of the live rate provider. It is
// cache-first, charges quota on live successes and classifies every failure.
type ProviderGateway struct {
	client     *httpclient.HttpClient
	governor   *cache.Governor
	proxyURL   string
	signingKey []byte
	issuer     string
	audience   string
	useSandbox bool
	flight     singleflight.Group
}

func NewProviderGateway(client *httpclient.HttpClient, governor *cache.Governor, e *env.Manager) *ProviderGateway {
	return &ProviderGateway{
		client:     client,
		governor:   governor,
		proxyURL:   *e.ProxyURL,
		signingKey: []byte(*e.ProxySigningKey),
		issuer:     *e.ProxyIssuer,
		audience:   *e.ProxyAudience,
		useSandbox: *e.UseSandbox,
	}
}

// Call resolves (endpoint, params) through the cache or one live leg.
// Concurrent identical misses share a single provider call. Classified
// failures come back as *exceptions.ClassifiedError; the caller decides
// whether the kind is recoverable.
func (g *ProviderGateway) Call(ctx context.Context, endpoint string, params map[string]any, timeout time.Duration) (CallResult, error) {
	if payload, hit := g.governor.Get(ctx, endpoint, params); hit {
		metrics.ProviderCallsTotal.WithLabelValues(endpoint, "cached").Inc()
		return CallResult{Payload: payload, Provenance: schema.ProvenanceCached}, nil
	}

	key := cache.CacheKey(endpoint, params)
	value, err, shared := g.flight.Do(key, func() (any, error) {
		return g.liveCall(ctx, endpoint, params, timeout)
	})
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return CallResult{}, err
	}
	result := value.(CallResult)
	if shared {
		log.Infof("Coalesced provider call for %s", endpoint)
	}
	metrics.ProviderCallsTotal.WithLabelValues(endpoint, "live").Inc()
	return result, nil
}

func (g *ProviderGateway) liveCall(ctx context.Context, endpoint string, params map[string]any, timeout time.Duration) (CallResult, error) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	assertion, err := g.signAssertion()
	if err != nil {
		return CallResult{}, exceptions.Classified(exceptions.ProviderUnavailable, "could not sign proxy assertion", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + assertion}

	body, statusCode, err := g.client.PostJSON(ctx, g.proxyURL, ProxyRequest{
		Endpoint:   endpoint,
		Params:     params,
		UseSandbox: g.useSandbox,
	}, headers, timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return CallResult{}, exceptions.Classified(exceptions.ProviderTimeout,
				fmt.Sprintf("provider call exceeded %s", timeout), err)
		}
		return CallResult{}, exceptions.Classified(exceptions.ProviderUnavailable, "provider proxy not reachable", err)
	}

	if classified := classifyStatus(statusCode, body); classified != nil {
		return CallResult{}, classified
	}

	var proxyResponse ProxyResponse
	if err := json.Unmarshal(body, &proxyResponse); err != nil {
		return CallResult{}, exceptions.Classified(exceptions.MalformedResponse, "provider response is not valid JSON", err)
	}
	if !proxyResponse.Success {
		if isQuotaSignal(proxyResponse.Error) {
			return CallResult{}, exceptions.Classified(exceptions.QuotaExceeded, proxyResponse.Error, nil)
		}
		return CallResult{}, exceptions.Classified(exceptions.MalformedResponse,
			fmt.Sprintf("provider reported failure: %s", proxyResponse.Error), nil)
	}
	if len(proxyResponse.Quotes) == 0 {
		return CallResult{}, exceptions.Classified(exceptions.MalformedResponse, "provider response carries no quotes", nil)
	}

	payload, err := json.Marshal(proxyResponse.Quotes)
	if err != nil {
		return CallResult{}, exceptions.Classified(exceptions.MalformedResponse, "could not re-encode provider quotes", err)
	}

	quota := g.governor.Put(ctx, endpoint, params, payload)
	return CallResult{Payload: payload, Provenance: schema.ProvenanceLive, Quota: quota}, nil
}

// signAssertion builds the short-lived client assertion the proxy expects.
func (g *ProviderGateway) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": g.issuer,
		"sub": g.issuer,
		"aud": g.audience,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.signingKey)
}

func classifyStatus(statusCode int, body []byte) *exceptions.ClassifiedError {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusTooManyRequests:
		return exceptions.Classified(exceptions.QuotaExceeded, "provider signalled quota exhaustion", nil)
	case statusCode == http.StatusNotFound:
		// Endpoint or feature disabled upstream; same recovery path as an
		// undeployed backend.
		return exceptions.Classified(exceptions.ProviderUnavailable, "provider endpoint not found", nil)
	case statusCode >= http.StatusInternalServerError:
		return exceptions.Classified(exceptions.ProviderUnavailable,
			fmt.Sprintf("provider proxy returned status %d", statusCode), nil)
	default:
		return exceptions.Classified(exceptions.MalformedResponse,
			fmt.Sprintf("unexpected status %d: %s", statusCode, truncate(body, 200)), nil)
	}
}

func isQuotaSignal(errText string) bool {
	lowered := strings.ToLower(errText)
	return strings.Contains(lowered, "quota") || strings.Contains(lowered, "rate limit")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
