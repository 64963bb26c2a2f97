package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ratehub/internal/cache"
	"ratehub/internal/database"
	"ratehub/internal/exceptions"
	httpclient "ratehub/internal/http"
	"ratehub/internal/schema"
)

func newTestGateway(proxyURL string) *ProviderGateway {
	return &ProviderGateway{
		client:     httpclient.CreateHttpClientInstance(),
		governor:   cache.NewGovernor(database.NewMemoryStore()),
		proxyURL:   proxyURL,
		signingKey: []byte("test-signing-key"),
		issuer:     "ratehub",
		audience:   "rate-provider-proxy",
	}
}

func TestCall_SecondIdenticalRequestServesFromCache(t *testing.T) {
	var liveCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&liveCalls, 1)
		if r.Header.Get("Authorization") == "" {
			t.Error("Expected a bearer assertion on the proxy call")
		}
		_, _ = w.Write([]byte(`{"success": true, "quotes": [{"carrier": "Maersk", "price": 2500}]}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	params := map[string]any{"origin": "CNSHA", "destination": "USLAX"}

	first, err := gateway.Call(context.Background(), "rates/search", params, 5*time.Second)
	if err != nil {
		t.Fatalf("First call failed: %v", err)
	}
	if first.Provenance != schema.ProvenanceLive {
		t.Errorf("Expected live provenance on first call, got %q", first.Provenance)
	}
	if first.Quota.Used != 1 {
		t.Errorf("Expected one quota charge, got %d", first.Quota.Used)
	}

	second, err := gateway.Call(context.Background(), "rates/search", params, 5*time.Second)
	if err != nil {
		t.Fatalf("Second call failed: %v", err)
	}
	if second.Provenance != schema.ProvenanceCached {
		t.Errorf("Expected cached provenance on second call, got %q", second.Provenance)
	}
	if atomic.LoadInt64(&liveCalls) != 1 {
		t.Errorf("Expected exactly one live provider call, got %d", liveCalls)
	}
}

func TestCall_FailureEnvelopeClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "monthly quota exceeded"}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	_, err := gateway.Call(context.Background(), "rates/search", map[string]any{"origin": "CNSHA"}, 5*time.Second)
	if err == nil {
		t.Fatal("Expected a classified error")
	}
	if kind := exceptions.AsClassified(err).Kind; kind != exceptions.QuotaExceeded {
		t.Errorf("Expected QuotaExceeded from the failure envelope, got %s", kind)
	}
}

func TestCall_FailedCallChargesNoQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store := database.NewMemoryStore()
	gateway := newTestGateway(server.URL)
	gateway.governor = cache.NewGovernor(store)

	_, err := gateway.Call(context.Background(), "rates/search", map[string]any{"origin": "CNSHA"}, 5*time.Second)
	if err == nil {
		t.Fatal("Expected a classified error")
	}
	if used := gateway.governor.Status(context.Background()).Used; used != 0 {
		t.Errorf("Expected no quota charge on a failed leg, got %d", used)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		wantKind   exceptions.ErrorKind
		wantNil    bool
	}{
		{name: "ok passes through", statusCode: 200, wantNil: true},
		{name: "too many requests is quota", statusCode: 429, wantKind: exceptions.QuotaExceeded},
		{name: "not found is unavailable", statusCode: 404, wantKind: exceptions.ProviderUnavailable},
		{name: "internal error is unavailable", statusCode: 500, wantKind: exceptions.ProviderUnavailable},
		{name: "bad gateway is unavailable", statusCode: 502, wantKind: exceptions.ProviderUnavailable},
		{name: "bad request is malformed", statusCode: 400, wantKind: exceptions.MalformedResponse},
		{name: "unauthorized is malformed", statusCode: 401, wantKind: exceptions.MalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyStatus(tc.statusCode, []byte("body"))
			if tc.wantNil {
				if classified != nil {
					t.Fatalf("Expected no error for status %d, got %v", tc.statusCode, classified)
				}
				return
			}
			if classified == nil {
				t.Fatalf("Expected a classified error for status %d", tc.statusCode)
			}
			if classified.Kind != tc.wantKind {
				t.Errorf("Expected kind %s for status %d, got %s", tc.wantKind, tc.statusCode, classified.Kind)
			}
		})
	}
}

func TestClassifyStatus_RecoverabilityMatchesKind(t *testing.T) {
	if !classifyStatus(429, nil).Recoverable() {
		t.Error("Quota exhaustion must be recoverable")
	}
	if !classifyStatus(503, nil).Recoverable() {
		t.Error("Provider unavailability must be recoverable")
	}
	if classifyStatus(400, nil).Recoverable() {
		t.Error("A malformed exchange must not be recoverable")
	}
}

func TestIsQuotaSignal(t *testing.T) {
	for text, want := range map[string]bool{
		"monthly quota exceeded":      true,
		"Rate Limit reached":          true,
		"API rate limit":              true,
		"invalid request parameters":  false,
		"":                            false,
	} {
		if got := isQuotaSignal(text); got != want {
			t.Errorf("isQuotaSignal(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestGetCarrierType(t *testing.T) {
	cases := []struct {
		carrier   string
		wantType  string
		wantKnown bool
	}{
		{carrier: "Maersk", wantType: "ocean", wantKnown: true},
		{carrier: "MSC", wantType: "ocean", wantKnown: true},
		{carrier: "lufthansa", wantType: "air", wantKnown: true},
		{carrier: "DHL", wantType: "express", wantKnown: true},
		{carrier: "Acme Logistics", wantType: "carrier", wantKnown: false},
	}

	for _, tc := range cases {
		carrierType, known := GetCarrierType(tc.carrier)
		if carrierType != tc.wantType || known != tc.wantKnown {
			t.Errorf("GetCarrierType(%q) = (%q, %v), want (%q, %v)",
				tc.carrier, carrierType, known, tc.wantType, tc.wantKnown)
		}
	}
}

func TestParseTransitDays(t *testing.T) {
	for raw, want := range map[string]int{
		"25":       25,
		"25 days":  25,
		"25d":      25,
		" 14 ":     14,
		"days":     0,
		"":         0,
	} {
		if got := ParseTransitDays(raw); got != want {
			t.Errorf("ParseTransitDays(%q) = %d, want %d", raw, got, want)
		}
	}
}
