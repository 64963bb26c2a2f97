package fees

import (
	"strings"
	"testing"
	"time"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	table, err := NewTable()
	if err != nil {
		t.Fatalf("failed to load embedded fee table: %v", err)
	}
	return NewCalculator(table)
}

func TestFeesFor_KnownPortScalesByMultiplier(t *testing.T) {
	calc := newTestCalculator(t)

	// Shanghai base 120/150/40, 40HC multiplier 1.8, one container.
	fees := calc.FeesFor("CNSHA", "40HC", 1)

	if !fees.Success {
		t.Error("Expected CNSHA to resolve from the tariff table")
	}
	if fees.PortCharges != 216 {
		t.Errorf("Expected port charges 216, got %v", fees.PortCharges)
	}
	if fees.TerminalHandling != 270 {
		t.Errorf("Expected terminal handling 270, got %v", fees.TerminalHandling)
	}
	if fees.Documentation != 72 {
		t.Errorf("Expected documentation 72, got %v", fees.Documentation)
	}
	if fees.Total != 558 {
		t.Errorf("Expected total 558, got %v", fees.Total)
	}
}

func TestFeesFor_QuantityMultipliesLinearly(t *testing.T) {
	calc := newTestCalculator(t)

	single := calc.FeesFor("CNSHA", "40HC", 1)
	triple := calc.FeesFor("CNSHA", "40HC", 3)

	if triple.Total != single.Total*3 {
		t.Errorf("Expected total %v for 3 containers, got %v", single.Total*3, triple.Total)
	}
}

func TestFeesFor_UnknownPortUsesDefaultProfile(t *testing.T) {
	calc := newTestCalculator(t)

	fees := calc.FeesFor("ZZZZZ", "40HC", 1)

	if fees.Success {
		t.Error("Expected Success=false for a port outside the tariff table")
	}
	if fees.Total <= 0 {
		t.Errorf("Expected non-zero default fees, got total %v", fees.Total)
	}
}

func TestFeesFor_ZeroQuantityTreatedAsOne(t *testing.T) {
	calc := newTestCalculator(t)

	zero := calc.FeesFor("CNSHA", "40HC", 0)
	one := calc.FeesFor("CNSHA", "40HC", 1)

	if zero.Total != one.Total {
		t.Errorf("Expected quantity 0 to price as 1, got %v vs %v", zero.Total, one.Total)
	}
}

func TestDemurrageFor_WithinFreeWindow(t *testing.T) {
	calc := newTestCalculator(t)
	arrival := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC)

	projection := calc.DemurrageFor(7, 90, arrival, pickup)

	if projection.DaysInPort != 6 {
		t.Errorf("Expected 6 days in port, got %d", projection.DaysInPort)
	}
	if projection.ChargeableDays != 0 {
		t.Errorf("Expected 0 chargeable days, got %d", projection.ChargeableDays)
	}
	if projection.TotalCost != 0 {
		t.Errorf("Expected zero demurrage inside free window, got %v", projection.TotalCost)
	}
}

func TestDemurrageFor_PastFreeWindow(t *testing.T) {
	calc := newTestCalculator(t)
	arrival := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)

	projection := calc.DemurrageFor(7, 90, arrival, pickup)

	if projection.DaysInPort != 9 {
		t.Errorf("Expected 9 days in port, got %d", projection.DaysInPort)
	}
	if projection.ChargeableDays != 2 {
		t.Errorf("Expected 2 chargeable days, got %d", projection.ChargeableDays)
	}
	if projection.TotalCost != 180 {
		t.Errorf("Expected demurrage 180, got %v", projection.TotalCost)
	}
}

func TestDemurrageFor_PickupBeforeArrival(t *testing.T) {
	calc := newTestCalculator(t)
	arrival := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	projection := calc.DemurrageFor(7, 90, arrival, pickup)

	if projection.Warning == "" {
		t.Error("Expected a warning when pickup precedes arrival")
	}
	if projection.TotalCost != 0 {
		t.Errorf("Expected zero cost for an invalid span, got %v", projection.TotalCost)
	}
	if projection.DaysInPort != 0 {
		t.Errorf("Expected days in port clamped to 0, got %d", projection.DaysInPort)
	}
}

func TestDemurrageFor_PartialDayRoundsUp(t *testing.T) {
	calc := newTestCalculator(t)
	arrival := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 11, 2, 6, 0, 0, 0, time.UTC)

	projection := calc.DemurrageFor(0, 50, arrival, pickup)

	if projection.DaysInPort != 2 {
		t.Errorf("Expected 30 hours to count as 2 days, got %d", projection.DaysInPort)
	}
	if projection.TotalCost != 100 {
		t.Errorf("Expected demurrage 100, got %v", projection.TotalCost)
	}
}

func TestBreakdownFor_SumsBothLegs(t *testing.T) {
	calc := newTestCalculator(t)

	breakdown := calc.BreakdownFor(2500, "CNSHA", "DEHAM", "40HC", 1, nil, nil)

	expected := breakdown.OceanFreight + breakdown.Origin.Total + breakdown.Destination.Total
	if breakdown.TotalMinimum != expected {
		t.Errorf("Expected total minimum %v, got %v", expected, breakdown.TotalMinimum)
	}
	if breakdown.Demurrage != nil {
		t.Error("Expected no demurrage projection without dates")
	}
}

func TestBreakdownFor_UnknownPortWarning(t *testing.T) {
	calc := newTestCalculator(t)

	breakdown := calc.BreakdownFor(2500, "ZZZZZ", "DEHAM", "40HC", 1, nil, nil)

	if breakdown.Origin.Success {
		t.Error("Expected origin fees flagged as estimated")
	}
	found := false
	for _, warning := range breakdown.Warnings {
		if strings.Contains(warning, "ZZZZZ") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a warning naming the unknown port, got %v", breakdown.Warnings)
	}
}

func TestBreakdownFor_HighCongestionWarning(t *testing.T) {
	calc := newTestCalculator(t)

	// CNSHA is flagged high congestion in the tariff table.
	breakdown := calc.BreakdownFor(2500, "CNSHA", "DEHAM", "40HC", 1, nil, nil)

	found := false
	for _, warning := range breakdown.Warnings {
		if strings.Contains(warning, "congestion") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a congestion warning for CNSHA, got %v", breakdown.Warnings)
	}
}

func TestBreakdownFor_DemurrageAndPickupBy(t *testing.T) {
	calc := newTestCalculator(t)
	arrival := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

	// Destination CNSHA: 7 free days, 90/day.
	breakdown := calc.BreakdownFor(2500, "DEHAM", "CNSHA", "40HC", 1, &arrival, &pickup)

	if breakdown.Demurrage == nil {
		t.Fatal("Expected a demurrage projection when both dates are set")
	}
	if breakdown.Demurrage.ChargeableDays != 12 {
		t.Errorf("Expected 12 chargeable days, got %d", breakdown.Demurrage.ChargeableDays)
	}
	if breakdown.TotalWithDemurrage != breakdown.TotalMinimum+breakdown.Demurrage.TotalCost {
		t.Errorf("Expected total with demurrage %v, got %v",
			breakdown.TotalMinimum+breakdown.Demurrage.TotalCost, breakdown.TotalWithDemurrage)
	}
	if breakdown.PickupBy != "2026-11-08" {
		t.Errorf("Expected pickup-by 2026-11-08, got %q", breakdown.PickupBy)
	}
}

func TestMultiplierFor_UnknownTypeFallsBack(t *testing.T) {
	table, err := NewTable()
	if err != nil {
		t.Fatalf("failed to load embedded fee table: %v", err)
	}

	multiplier, known := table.MultiplierFor("53FT")
	if known {
		t.Error("Expected 53FT to be outside the multiplier table")
	}
	if multiplier != DefaultMultiplier {
		t.Errorf("Expected fallback multiplier %v, got %v", DefaultMultiplier, multiplier)
	}
}
