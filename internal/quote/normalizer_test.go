package quote

import (
	"errors"
	"testing"

	"ratehub/internal/exceptions"
	"ratehub/internal/schema"
)

func testRequest() *schema.QuoteRequest {
	return &schema.QuoteRequest{
		ServiceType: schema.FCL,
		Origin:      "CNSHA",
		Destination: "USLAX",
		Currency:    "USD",
		Cargo: schema.Cargo{
			Containers: []schema.ContainerLine{{Type: "40HC", Quantity: 1}},
		},
	}
}

func TestNormalize_MapsAliasedFields(t *testing.T) {
	payload := []byte(`[
		{"carrier": "Maersk", "total_rate": 2500.50, "transit_time": 25, "currency": "USD"},
		{"carrierName": "MSC", "price": 2300, "estimated_days": "28 days"}
	]`)

	quotes, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(quotes))
	}

	first := quotes[0]
	if first.Carrier != "Maersk" || first.TotalCost != 2500.50 || first.TransitTime != 25 {
		t.Errorf("Unexpected first quote: %+v", first)
	}
	if first.CarrierType != "ocean" {
		t.Errorf("Expected Maersk classified as ocean, got %q", first.CarrierType)
	}
	if first.Provenance != schema.ProvenanceLive {
		t.Errorf("Expected live provenance, got %q", first.Provenance)
	}

	second := quotes[1]
	if second.Carrier != "MSC" || second.TotalCost != 2300 {
		t.Errorf("Unexpected second quote: %+v", second)
	}
	if second.TransitTime != 28 {
		t.Errorf("Expected decorated transit string parsed to 28, got %d", second.TransitTime)
	}
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	payload := []byte(`[{"cost": "1850.75"}]`)

	quotes, err := Normalize(payload, testRequest(), schema.ProvenanceCached)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	quote := quotes[0]

	if quote.Carrier != "N/A" {
		t.Errorf("Expected carrier default N/A, got %q", quote.Carrier)
	}
	if quote.TotalCost != 1850.75 {
		t.Errorf("Expected string price coerced to 1850.75, got %v", quote.TotalCost)
	}
	if quote.Currency != "USD" {
		t.Errorf("Expected currency inherited from request, got %q", quote.Currency)
	}
	if quote.TransitTime != 0 {
		t.Errorf("Expected zero transit when absent, got %d", quote.TransitTime)
	}
}

func TestNormalize_KeepsFullPriceWithThousandsSeparator(t *testing.T) {
	payload := []byte(`[
		{"carrier": "Maersk", "price": "2,500"},
		{"carrier": "MSC", "total_rate": "$2,450.50 USD"}
	]`)

	quotes, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].TotalCost != 2500 {
		t.Errorf("Expected separator-formatted price kept at 2500, got %v", quotes[0].TotalCost)
	}
	if quotes[1].TotalCost != 2450.50 {
		t.Errorf("Expected decorated price kept at 2450.50, got %v", quotes[1].TotalCost)
	}
}

func TestNormalize_NonNumericPriceStringIsPriceless(t *testing.T) {
	payload := []byte(`[
		{"carrier": "Maersk", "price": "on request"},
		{"carrier": "MSC", "price": 2300}
	]`)

	quotes, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("Expected the non-numeric price dropped, got %d quotes", len(quotes))
	}
	if quotes[0].Carrier != "MSC" {
		t.Errorf("Expected the numeric quote to survive, got %q", quotes[0].Carrier)
	}
}

func TestNormalize_DropsEntriesWithoutPrice(t *testing.T) {
	payload := []byte(`[
		{"carrier": "Maersk", "remark": "no rate on this lane"},
		{"carrier": "MSC", "amount": 2300}
	]`)

	quotes, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("Expected the priceless entry dropped, got %d quotes", len(quotes))
	}
	if quotes[0].Carrier != "MSC" {
		t.Errorf("Expected the priced quote to survive, got %q", quotes[0].Carrier)
	}
}

func TestNormalize_AllPricelessIsMalformed(t *testing.T) {
	payload := []byte(`[{"carrier": "Maersk"}, {"carrier": "MSC"}]`)

	_, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	assertKind(t, err, exceptions.MalformedResponse)
}

func TestNormalize_NotAnArrayIsMalformed(t *testing.T) {
	payload := []byte(`{"quotes": []}`)

	_, err := Normalize(payload, testRequest(), schema.ProvenanceLive)
	assertKind(t, err, exceptions.MalformedResponse)
}

func assertKind(t *testing.T, err error, kind exceptions.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected an error")
	}
	var classified *exceptions.ClassifiedError
	if !errors.As(err, &classified) {
		t.Fatalf("Expected a classified error, got %T", err)
	}
	if classified.Kind != kind {
		t.Errorf("Expected kind %s, got %s", kind, classified.Kind)
	}
}
