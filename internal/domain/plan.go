package domain

import "math"

// The single maintenance plan sold through the portal. Every money
// computation in the system (initial charge, recurring charge, display)
// derives from these two constants.
const (
	PlanName     = "Preventive Tech Maintenance"
	PlanPriceUSD = 255 // monthly price in whole USD

	// ITBISRate is the Dominican Republic value-added tax rate.
	ITBISRate = 0.18
)

// BillingPeriodDays is the interval between charges. The next billing date
// is always now + 30 days after a successful charge, not a calendar month.
const BillingPeriodDays = 30

// AmountCents converts a whole-USD plan price to integer cents.
func AmountCents(priceUSD int) int {
	return priceUSD * 100
}

// ItbisCents computes the ITBIS tax on an amount already expressed in
// cents, rounded to the nearest cent. Tax is computed on cents, never on
// dollars re-converted, so there is no off-by-one-cent drift.
func ItbisCents(amountCents int) int {
	return int(math.Round(float64(amountCents) * ITBISRate))
}

// TotalCents is the full charge for a plan price: amount plus ITBIS.
func TotalCents(priceUSD int) int {
	amount := AmountCents(priceUSD)
	return amount + ItbisCents(amount)
}

// ItbisUSD is the tax in USD for a plan price, for display and for the
// payment history ledger.
func ItbisUSD(priceUSD int) float64 {
	return float64(ItbisCents(AmountCents(priceUSD))) / 100
}

// Plan describes the subscription plan for the public plans endpoint.
type Plan struct {
	Name      string  `json:"name"`
	PriceUSD  int     `json:"priceUsd"`
	ItbisUSD  float64 `json:"itbisUsd"`
	TotalUSD  float64 `json:"totalUsd"`
	ITBISRate float64 `json:"itbisRate"`
}

// CurrentPlan returns the plan with its tax breakdown.
func CurrentPlan() Plan {
	return Plan{
		Name:      PlanName,
		PriceUSD:  PlanPriceUSD,
		ItbisUSD:  ItbisUSD(PlanPriceUSD),
		TotalUSD:  float64(TotalCents(PlanPriceUSD)) / 100,
		ITBISRate: ITBISRate,
	}
}
