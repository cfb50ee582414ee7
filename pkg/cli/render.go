package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/wizard"
)

// render prints a wizard view
func render(out io.Writer, v wizard.View) {
	if v.State == wizard.StateSubmitted {
		fmt.Fprintf(out, "\n%s\n%s\n", wizard.ThankYouTitle, v.Message)
		return
	}

	fmt.Fprintln(out)
	var indicator []string
	for _, s := range v.Steps {
		mark := " "
		if s.Active {
			mark = "*"
		}
		indicator = append(indicator, fmt.Sprintf("%s%d %s", mark, s.Number, s.Title))
	}
	fmt.Fprintln(out, strings.Join(indicator, "  "))
	fmt.Fprintf(out, "\n%s\n%s\n\n", v.Current.Heading, v.Current.Description)

	if v.Message != "" {
		fmt.Fprintf(out, "! %s\n\n", v.Message)
	}

	switch v.Step {
	case 1:
		renderPersonalInfo(out, v)
	case 2:
		renderPlans(out, v)
	case 3:
		renderAddOns(out, v)
	case 4:
		renderSummary(out, v)
	}

	fmt.Fprintln(out)
	if v.CanGoBack {
		fmt.Fprintf(out, "[back] %s   ", wizard.BackLabel)
	}
	fmt.Fprintf(out, "[next] %s\n", v.NextLabel)
}

func renderPersonalInfo(out io.Writer, v wizard.View) {
	values := map[form.Field]string{
		form.FieldName:  v.Values.Name,
		form.FieldEmail: v.Values.Email,
		form.FieldPhone: v.Values.Phone,
	}
	for _, f := range v.Fields {
		value := values[f.Field]
		if value == "" {
			value = "(" + f.Placeholder + ")"
		}
		fmt.Fprintf(out, "  %-14s %s\n", f.Label+":", value)
		if msg, ok := v.Errors[f.Field]; ok {
			fmt.Fprintf(out, "  %-14s ! %s\n", "", msg)
		}
	}
}

func renderPlans(out io.Writer, v wizard.View) {
	for _, p := range v.Plans {
		line := fmt.Sprintf("  %s %s %-10s %s", checkbox(p.Selected), p.ID, p.Name, p.PriceDisplay)
		if p.Promo != "" {
			line += "  " + p.Promo
		}
		fmt.Fprintln(out, line)
	}
	if msg, ok := v.Errors[form.FieldPlanType]; ok {
		fmt.Fprintf(out, "  ! %s\n", msg)
	}
	fmt.Fprintf(out, "\n  Billing: %s\n", v.Quote.CycleLabel)
}

func renderAddOns(out io.Writer, v wizard.View) {
	for _, a := range v.AddOns {
		fmt.Fprintf(out, "  %s %s %-20s %-30s %s\n", checkbox(a.Selected), a.ID, a.Name, a.Description, a.PriceDisplay)
	}
}

func renderSummary(out io.Writer, v wizard.View) {
	q := v.Quote
	if q.Plan != nil {
		fmt.Fprintf(out, "  %-28s %s\n", fmt.Sprintf("%s (%s)", q.Plan.Name, q.CycleLabel), q.Plan.Display)
		fmt.Fprintln(out, "  [change] Change")
	}
	for _, l := range q.AddOns {
		fmt.Fprintf(out, "  %-28s %s\n", l.Name, l.Display)
	}
	fmt.Fprintf(out, "\n  %-28s %s\n", q.TotalLabel, q.TotalDisplay)
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}
