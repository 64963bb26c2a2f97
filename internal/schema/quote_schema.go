package schema

import (
	"github.com/go-playground/validator/v10"
	"time"
)

var QuoteResponseValidate *validator.Validate

func init() {
	QuoteResponseValidate = validator.New(validator.WithRequiredStructEnabled())
	QuoteResponseValidate.RegisterStructValidation(QuoteTotalValidation, Quote{})
}

// Enum for ServiceType
type ServiceType string

const (
	FCL    ServiceType = "fcl"
	LCL    ServiceType = "lcl"
	Air    ServiceType = "air"
	Rail   ServiceType = "rail"
	Road   ServiceType = "road"
	Parcel ServiceType = "parcel"
)

// Provenance tells the caller where a quote came from.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceCached    Provenance = "cached"
	ProvenanceEstimated Provenance = "estimated"
)

// PortFees is one leg of port charges after multiplier and quantity scaling.
type PortFees struct {
	PortCode         string  `json:"portCode"`
	PortName         string  `json:"portName,omitempty"`
	PortCharges      float64 `json:"portCharges" validate:"gte=0"`
	TerminalHandling float64 `json:"terminalHandling" validate:"gte=0"`
	Documentation    float64 `json:"documentation" validate:"gte=0"`
	Total            float64 `json:"total" validate:"gte=0"`
	Success          bool    `json:"success" description:"false when the port was unknown and default fees were used"`
}

// DemurrageProjection is the projected storage penalty for a port stay.
type DemurrageProjection struct {
	DaysInPort     int     `json:"daysInPort"`
	FreeDays       int     `json:"freeDays"`
	ChargeableDays int     `json:"chargeableDays" validate:"gte=0"`
	RatePerDay     float64 `json:"ratePerDay"`
	TotalCost      float64 `json:"totalCost" validate:"gte=0"`
	Warning        string  `json:"warning,omitempty"`
}

// CostBreakdown assembles freight plus both port legs and optional demurrage.
type CostBreakdown struct {
	OceanFreight       float64              `json:"oceanFreight" validate:"gte=0"`
	Origin             PortFees             `json:"origin"`
	Destination        PortFees             `json:"destination"`
	Demurrage          *DemurrageProjection `json:"demurrage,omitempty"`
	TotalMinimum       float64              `json:"totalMinimum" validate:"gte=0"`
	TotalWithDemurrage float64              `json:"totalWithDemurrage,omitempty"`
	PickupBy           string               `json:"pickupBy,omitempty" description:"pick up by this date to avoid demurrage"`
	Warnings           []string             `json:"warnings,omitempty"`
}

// Quote is the canonical priced offer returned to callers.
type Quote struct {
	Carrier     string         `json:"carrier"`
	CarrierType string         `json:"carrierType,omitempty"`
	ServiceType ServiceType    `json:"serviceType"`
	TotalCost   float64        `json:"totalCost" validate:"gte=0"`
	Currency    string         `json:"currency"`
	TransitTime int            `json:"transitTime" validate:"gte=0" description:"days"`
	Provenance  Provenance     `json:"provenance" validate:"required,oneof=live cached estimated"`
	Breakdown   *CostBreakdown `json:"breakdown,omitempty"`
}

func QuoteTotalValidation(sl validator.StructLevel) {
	q := sl.Current().Interface().(Quote)
	if q.Breakdown != nil && q.Breakdown.TotalMinimum < q.Breakdown.OceanFreight {
		sl.ReportError(q.Breakdown.TotalMinimum, "totalMinimum", "TotalMinimum", "Breakdown below freight", "")
	}
}

// QuoteResponse is the envelope written back to the caller.
type QuoteResponse struct {
	Quotes       []*Quote `json:"quotes" validate:"dive"`
	QuotaWarning string   `json:"quotaWarning,omitempty"`
	GeneratedAt  string   `json:"generatedAt"`
}

func NewQuoteResponse(quotes []*Quote, quotaWarning string) *QuoteResponse {
	return &QuoteResponse{
		Quotes:       quotes,
		QuotaWarning: quotaWarning,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// HealthCheck struct equivalent in Go
type HealthCheck struct {
	Status string `json:"status" validate:"required"`
}
