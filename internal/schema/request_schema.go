package schema

import (
	"github.com/go-playground/validator/v10"
	"regexp"
	"time"
)

// use a single instance of Validate, it caches struct info
var RequestValidate *validator.Validate

func init() {
	RequestValidate = validator.New(validator.WithRequiredStructEnabled())

	// Function to check if port code is valid format
	errPort := RequestValidate.RegisterValidation("portCodeValidation", func(fl validator.FieldLevel) bool {
		return portCodePattern.MatchString(fl.Field().String())
	})
	if errPort != nil {
		return
	}

	// Function to check if a string is in the YYYY-MM-DD format
	errDate := RequestValidate.RegisterValidation("isValidDate", func(fl validator.FieldLevel) bool {
		const layout = "2006-01-02"
		value := fl.Field().String()
		_, err := time.Parse(layout, value)
		return err == nil
	})
	if errDate != nil {
		return
	}

	errCurrency := RequestValidate.RegisterValidation("isCurrencyCode", func(fl validator.FieldLevel) bool {
		regex := regexp.MustCompile(`^[A-Z]{3}$`)
		value := fl.Field().String()
		return regex.MatchString(value)
	})
	if errCurrency != nil {
		return
	}
}

// ContainerLine is one container type / quantity pair on a request.
type ContainerLine struct {
	Type     string `json:"type" validate:"required" example:"40HC"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=999"`
}

// Cargo describes what is being shipped.
type Cargo struct {
	WeightKg   float64         `json:"weightKg" validate:"omitempty,gte=0"`
	VolumeM3   float64         `json:"volumeM3" validate:"omitempty,gte=0"`
	Containers []ContainerLine `json:"containers" validate:"omitempty,dive"`
	HSCode     string          `json:"hsCode" validate:"omitempty,max=10" description:"Harmonized System commodity code"`
}

// Define the struct with field validations using Go tags
type QuoteRequest struct {
	ServiceType ServiceType `json:"serviceType" validate:"required,oneof=fcl lcl air rail road parcel"`
	Origin      string      `json:"origin" validate:"required,min=2" description:"Port/airport code or free-text location"`
	Destination string      `json:"destination" validate:"required,min=2" description:"Port/airport code or free-text location"`
	Cargo       Cargo       `json:"cargo"`
	Currency    string      `json:"currency" validate:"required,isCurrencyCode" example:"USD"`
	UseSandbox  bool        `json:"useSandbox" validate:"omitempty"`
}

// OriginPortCode returns the origin as a port code when it looks like one.
func (q *QuoteRequest) OriginPortCode() (string, bool) {
	return asPortCode(q.Origin)
}

// DestinationPortCode returns the destination as a port code when it looks like one.
func (q *QuoteRequest) DestinationPortCode() (string, bool) {
	return asPortCode(q.Destination)
}

// PrimaryContainerType returns the first container line on the request, if any.
func (q *QuoteRequest) PrimaryContainerType() (string, int, bool) {
	if len(q.Cargo.Containers) == 0 {
		return "", 0, false
	}
	line := q.Cargo.Containers[0]
	return line.Type, line.Quantity, true
}

var portCodePattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{3}$`)

func asPortCode(location string) (string, bool) {
	if portCodePattern.MatchString(location) {
		return location, true
	}
	return "", false
}

type QueryParamsForBreakdown struct {
	Origin        string  `json:"origin" validate:"required,portCodeValidation" description:"Port Of Loading" example:"CNSHA"`
	Destination   string  `json:"destination" validate:"required,portCodeValidation" description:"Port Of Discharge" example:"USLAX"`
	ContainerType string  `json:"containerType" validate:"required" example:"40HC"`
	Quantity      int     `json:"quantity" validate:"required,gte=1,lte=999"`
	OceanFreight  float64 `json:"oceanFreight" validate:"gte=0"`
	ArrivalDate   string  `json:"arrivalDate" validate:"omitempty,isValidDate" description:"YYYY-MM-DD"`
	PickupDate    string  `json:"pickupDate" validate:"omitempty,isValidDate" description:"YYYY-MM-DD"`
}
