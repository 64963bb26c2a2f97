package fees

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"ratehub/internal/schema"
)

const dateLayout = "2006-01-02"

// Calculator computes port fees, demurrage projections and full cost
// breakdowns from the reference table. All functions are pure.
type Calculator struct {
	table   *Table
	printer *message.Printer
}

func NewCalculator(table *Table) *Calculator {
	return &Calculator{
		table:   table,
		printer: message.NewPrinter(language.English),
	}
}

// FeesFor looks up the port profile, scales the three fee fields by the
// container multiplier and quantity. Unknown ports degrade to the default
// profile with Success=false so callers can show an "estimated" disclaimer.
func (c *Calculator) FeesFor(portCode, containerType string, quantity int) schema.PortFees {
	profile, known := c.table.ProfileFor(portCode)
	multiplier, _ := c.table.MultiplierFor(containerType)
	if quantity < 1 {
		quantity = 1
	}
	qty := float64(quantity)

	portCharges := round2(profile.PortCharges * multiplier * qty)
	terminalHandling := round2(profile.TerminalHandling * multiplier * qty)
	documentation := round2(profile.Documentation * multiplier * qty)

	return schema.PortFees{
		PortCode:         portCode,
		PortName:         profile.Name,
		PortCharges:      portCharges,
		TerminalHandling: terminalHandling,
		Documentation:    documentation,
		Total:            round2(portCharges + terminalHandling + documentation),
		Success:          known,
	}
}

// DemurrageFor projects the storage penalty for a port stay. A pickup before
// arrival is rejected with a warning and zero cost; a stay inside the free
// window charges nothing.
func (c *Calculator) DemurrageFor(freeDays int, ratePerDay float64, arrivalDate, pickupDate time.Time) schema.DemurrageProjection {
	daysInPort := int(math.Ceil(pickupDate.Sub(arrivalDate).Hours() / 24))
	projection := schema.DemurrageProjection{
		DaysInPort: daysInPort,
		FreeDays:   freeDays,
		RatePerDay: ratePerDay,
	}
	if daysInPort < 0 {
		projection.DaysInPort = 0
		projection.Warning = "pickup date precedes arrival date; demurrage not projected"
		return projection
	}
	chargeableDays := daysInPort - freeDays
	if chargeableDays < 0 {
		chargeableDays = 0
	}
	projection.ChargeableDays = chargeableDays
	projection.TotalCost = round2(float64(chargeableDays) * ratePerDay)
	return projection
}

// BreakdownFor composes origin fees, destination fees and an optional
// demurrage projection into the full cost picture. Congestion warnings are
// advisory only and never change the numeric totals.
func (c *Calculator) BreakdownFor(oceanFreight float64, originPort, destPort, containerType string, quantity int, arrivalDate, pickupDate *time.Time) schema.CostBreakdown {
	originFees := c.FeesFor(originPort, containerType, quantity)
	destFees := c.FeesFor(destPort, containerType, quantity)

	breakdown := schema.CostBreakdown{
		OceanFreight: round2(oceanFreight),
		Origin:       originFees,
		Destination:  destFees,
		TotalMinimum: round2(oceanFreight + originFees.Total + destFees.Total),
	}

	if !originFees.Success {
		breakdown.Warnings = append(breakdown.Warnings, "origin port "+originPort+" not in tariff table; fees are estimated")
	}
	if !destFees.Success {
		breakdown.Warnings = append(breakdown.Warnings, "destination port "+destPort+" not in tariff table; fees are estimated")
	}

	originProfile, _ := c.table.ProfileFor(originPort)
	destProfile, _ := c.table.ProfileFor(destPort)
	for _, profile := range []schema.PortFeeProfile{originProfile, destProfile} {
		if profile.CongestionLevel == schema.CongestionHigh {
			warning := c.printer.Sprintf("%s is flagged high congestion; allow extra dwell time", profile.Name)
			if profile.Notes != "" {
				warning += " (" + profile.Notes + ")"
			}
			breakdown.Warnings = append(breakdown.Warnings, warning)
		}
	}

	if arrivalDate != nil && pickupDate != nil {
		demurrage := c.DemurrageFor(destProfile.FreeDays, destProfile.DemurrageRate, *arrivalDate, *pickupDate)
		breakdown.Demurrage = &demurrage
		breakdown.TotalWithDemurrage = round2(breakdown.TotalMinimum + demurrage.TotalCost)
		if demurrage.ChargeableDays > 0 {
			pickupBy := arrivalDate.AddDate(0, 0, destProfile.FreeDays)
			breakdown.PickupBy = pickupBy.Format(dateLayout)
			breakdown.Warnings = append(breakdown.Warnings, c.printer.Sprintf(
				"pick up by %s to save %v in demurrage",
				breakdown.PickupBy,
				number.Decimal(demurrage.TotalCost, number.MaxFractionDigits(2)),
			))
		}
	}

	return breakdown
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
