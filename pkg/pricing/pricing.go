// Package pricing computes subscription prices from form values and a
// catalog snapshot.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
)

// Total returns the price of the selected plan plus every selected add-on for
// the chosen billing cycle. An unknown plan prices the whole selection at
// zero; unknown add-ons are skipped.
func Total(values form.FormValues, c *catalog.Catalog) decimal.Decimal {
	plan, ok := c.Plan(values.PlanType)
	if !ok {
		return decimal.Zero
	}

	total := plan.Price(values.IsYearly)
	for _, id := range values.AddOns {
		if addOn, ok := c.AddOn(id); ok {
			total = total.Add(addOn.Price(values.IsYearly))
		}
	}
	return total
}

// Line is one priced entry of a Quote
type Line struct {
	ID      catalog.ID      `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Display string          `json:"display"`
}

// Quote is the price breakdown shown on the summary step
type Quote struct {
	Yearly       bool            `json:"yearly"`
	CycleLabel   string          `json:"cycle_label"`
	Plan         *Line           `json:"plan,omitempty"`
	AddOns       []Line          `json:"addons"`
	Total        decimal.Decimal `json:"total"`
	TotalLabel   string          `json:"total_label"`
	TotalDisplay string          `json:"total_display"`
}

// NewQuote breaks the selection down into lines. Its Total always equals
// Total(values, c).
func NewQuote(values form.FormValues, c *catalog.Catalog) Quote {
	q := Quote{
		Yearly:     values.IsYearly,
		CycleLabel: CycleLabel(values.IsYearly),
		AddOns:     []Line{},
		Total:      Total(values, c),
		TotalLabel: "Total (" + Period(values.IsYearly) + ")",
	}
	q.TotalDisplay = FormatPrice(q.Total, values.IsYearly)

	if plan, ok := c.Plan(values.PlanType); ok {
		price := plan.Price(values.IsYearly)
		q.Plan = &Line{
			ID:      plan.ID,
			Name:    plan.Name,
			Price:   price,
			Display: FormatPrice(price, values.IsYearly),
		}
	}

	for _, id := range values.AddOns {
		addOn, ok := c.AddOn(id)
		if !ok {
			continue
		}
		price := addOn.Price(values.IsYearly)
		q.AddOns = append(q.AddOns, Line{
			ID:      addOn.ID,
			Name:    addOn.Name,
			Price:   price,
			Display: FormatAddOnPrice(price, values.IsYearly),
		})
	}
	return q
}

// FormatPrice renders an amount per billing cycle, e.g. "$9/mo" or "$90/yr"
func FormatPrice(amount decimal.Decimal, yearly bool) string {
	return "$" + amount.String() + "/" + suffix(yearly)
}

// FormatAddOnPrice renders an add-on surcharge, e.g. "+$2/mo"
func FormatAddOnPrice(amount decimal.Decimal, yearly bool) string {
	return "+" + FormatPrice(amount, yearly)
}

// CycleLabel is "Yearly" or "Monthly"
func CycleLabel(yearly bool) string {
	if yearly {
		return "Yearly"
	}
	return "Monthly"
}

// Period is "per year" or "per month"
func Period(yearly bool) string {
	if yearly {
		return "per year"
	}
	return "per month"
}

func suffix(yearly bool) string {
	if yearly {
		return "yr"
	}
	return "mo"
}
