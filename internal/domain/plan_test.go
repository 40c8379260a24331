package domain

import "testing"

func TestMoneyMath(t *testing.T) {
	tests := []struct {
		priceUSD   int
		amount     int
		itbis      int
		total      int
	}{
		{255, 25500, 4590, 30090},
		{100, 10000, 1800, 11800},
		{1, 100, 18, 118},
		{0, 0, 0, 0},
		{99, 9900, 1782, 11682},
	}

	for _, tt := range tests {
		if got := AmountCents(tt.priceUSD); got != tt.amount {
			t.Errorf("AmountCents(%d) = %d, want %d", tt.priceUSD, got, tt.amount)
		}
		if got := ItbisCents(tt.amount); got != tt.itbis {
			t.Errorf("ItbisCents(%d) = %d, want %d", tt.amount, got, tt.itbis)
		}
		if got := TotalCents(tt.priceUSD); got != tt.total {
			t.Errorf("TotalCents(%d) = %d, want %d", tt.priceUSD, got, tt.total)
		}
	}
}

func TestItbisRoundsToNearestCent(t *testing.T) {
	// 103 * 0.18 = 18.54 rounds up, 102 * 0.18 = 18.36 rounds down.
	if got := ItbisCents(103); got != 19 {
		t.Errorf("ItbisCents(103) = %d, want 19", got)
	}
	if got := ItbisCents(102); got != 18 {
		t.Errorf("ItbisCents(102) = %d, want 18", got)
	}
}

func TestCurrentPlan(t *testing.T) {
	p := CurrentPlan()
	if p.Name != PlanName {
		t.Errorf("Name = %q, want %q", p.Name, PlanName)
	}
	if p.PriceUSD != 255 {
		t.Errorf("PriceUSD = %d, want 255", p.PriceUSD)
	}
	if p.ItbisUSD != 45.90 {
		t.Errorf("ItbisUSD = %v, want 45.90", p.ItbisUSD)
	}
	if p.TotalUSD != 300.90 {
		t.Errorf("TotalUSD = %v, want 300.90", p.TotalUSD)
	}
}
