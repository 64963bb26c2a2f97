package quote

import (
	"encoding/json"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"ratehub/external"
	"ratehub/internal/exceptions"
	"ratehub/internal/schema"
)

// Field aliases seen across provider payloads. Order matters: the first hit
// wins.
var (
	carrierAliases  = []string{"carrier", "carrier_name", "carrierName", "scac", "line"}
	priceAliases    = []string{"total_rate", "price", "total_amount", "totalAmount", "cost", "total", "amount", "rate"}
	transitAliases  = []string{"transit_time", "estimated_days", "transit_days", "transitTime", "days"}
	currencyAliases = []string{"currency", "currency_code", "currencyCode"}
)

// Normalize maps the heterogeneous provider quotes array into canonical
// Quotes. Entries without any price field are dropped; when no entry yields a
// price the whole payload is malformed, which is fatal for the leg.
func Normalize(payload []byte, request *schema.QuoteRequest, provenance schema.Provenance) ([]*schema.Quote, error) {
	var rawQuotes []map[string]any
	if err := json.Unmarshal(payload, &rawQuotes); err != nil {
		return nil, exceptions.Classified(exceptions.MalformedResponse, "provider quotes are not a JSON array", err)
	}

	quotes := make([]*schema.Quote, 0, len(rawQuotes))
	for _, raw := range rawQuotes {
		quote, ok := normalizeOne(raw, request, provenance)
		if !ok {
			log.Warnf("Dropping provider quote without a price field: %v", keysOf(raw))
			continue
		}
		quotes = append(quotes, quote)
	}
	if len(quotes) == 0 {
		return nil, exceptions.Classified(exceptions.MalformedResponse, "no provider quote carries a price field", nil)
	}
	return quotes, nil
}

func normalizeOne(raw map[string]any, request *schema.QuoteRequest, provenance schema.Provenance) (*schema.Quote, bool) {
	price, ok := firstNumber(raw, priceAliases, priceFromString)
	if !ok {
		return nil, false
	}

	carrier := firstString(raw, carrierAliases, "N/A")
	carrierType, _ := external.GetCarrierType(carrier)
	transit, _ := firstNumber(raw, transitAliases, transitFromString)

	return &schema.Quote{
		Carrier:     carrier,
		CarrierType: carrierType,
		ServiceType: request.ServiceType,
		TotalCost:   price,
		Currency:    firstString(raw, currencyAliases, request.Currency),
		TransitTime: int(transit),
		Provenance:  provenance,
	}, true
}

func firstString(raw map[string]any, aliases []string, fallback string) string {
	for _, alias := range aliases {
		if value, ok := raw[alias]; ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func firstNumber(raw map[string]any, aliases []string, fromString func(string) (float64, bool)) (float64, bool) {
	for _, alias := range aliases {
		value, ok := raw[alias]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v, true
		case string:
			if parsed, ok := fromString(v); ok {
				return parsed, true
			}
		}
	}
	return 0, false
}

// priceFromString strips currency symbols and thousand separators before
// parsing, so "2,500" and "$2,450.50" keep their full value. A string that
// still fails to parse carries no usable price.
func priceFromString(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// transitFromString accepts a bare number or a decorated span like "25 days".
func transitFromString(s string) (float64, bool) {
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return parsed, true
	}
	if days := external.ParseTransitDays(s); days > 0 {
		return float64(days), true
	}
	return 0, false
}

func keysOf(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return keys
}
