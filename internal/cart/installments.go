package cart

import "github.com/shopspring/decimal"

// InstallmentPlan is a client-only selection of a payment spread. It has no
// server persistence; it only scales the displayed total.
type InstallmentPlan string

const (
	PlanThreeMonths  InstallmentPlan = "3"
	PlanSixMonths    InstallmentPlan = "6"
	PlanTwelveMonths InstallmentPlan = "12"
)

var interestRates = map[InstallmentPlan]decimal.Decimal{
	PlanThreeMonths:  decimal.RequireFromString("1.08"),
	PlanSixMonths:    decimal.RequireFromString("1.12"),
	PlanTwelveMonths: decimal.RequireFromString("1.15"),
}

// ApplyInterest scales a total by the plan's interest multiplier and rounds to
// the nearest integer currency unit. A nil or unknown plan means 1.00x.
func ApplyInterest(totalCents int, plan *InstallmentPlan) int {
	if plan == nil {
		return totalCents
	}
	rate, ok := interestRates[*plan]
	if !ok {
		return totalCents
	}
	scaled := decimal.NewFromInt(int64(totalCents)).Mul(rate)
	return int(scaled.Round(0).IntPart())
}
