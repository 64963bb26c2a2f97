package external

import (
	"strconv"
	"strings"
)

// GetCarrierType maps well-known carrier names onto a coarse carrier type.
func GetCarrierType(key string) (string, bool) {
	carrierTypeList := map[string]string{
		"MAERSK":       "ocean",
		"MSC":          "ocean",
		"CMA CGM":      "ocean",
		"COSCO":        "ocean",
		"HAPAG-LLOYD":  "ocean",
		"ONE":          "ocean",
		"EVERGREEN":    "ocean",
		"ZIM":          "ocean",
		"LUFTHANSA":    "air",
		"CARGOLUX":     "air",
		"EMIRATES":     "air",
		"DB CARGO":     "rail",
		"UPS":          "express",
		"FEDEX":        "express",
		"DHL":          "express",
	}

	if value, ok := carrierTypeList[strings.ToUpper(key)]; ok {
		return value, true
	}
	return "carrier", false // Default value if key is not found
}

// ParseTransitDays accepts a transit value as a bare number or a decorated
// string ("25 days", "25d") and returns whole days.
func ParseTransitDays(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if digits.Len() > 0 {
			break
		}
	}
	days, err := strconv.Atoi(digits.String())
	if err != nil || days < 0 {
		return 0
	}
	return days
}
