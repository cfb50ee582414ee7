package wizard

import (
	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/pricing"
)

// Yearly billing promotion shown under each plan
const YearlyPromo = "2 months free"

// Button labels
const (
	NextLabel       = "Next Step"
	ConfirmLabel    = "Confirm"
	ProcessingLabel = "Processing..."
	BackLabel       = "Go Back"
)

// Texts of the final page
const (
	ThankYouTitle   = "Thank you!"
	ThankYouMessage = "Thanks for confirming your subscription! We hope you have fun using our platform. " +
		"If you ever need support, please feel free to email us at support@loremgaming.com."
)

// StepIndicator is one entry of the step list
type StepIndicator struct {
	form.Step
	Active bool `json:"active"`
}

// PlanOption is a plan as shown on the plan step
type PlanOption struct {
	catalog.Plan
	Selected     bool   `json:"selected"`
	PriceDisplay string `json:"price_display"`
	Promo        string `json:"promo,omitempty"`
}

// AddOnOption is an add-on as shown on the add-ons step
type AddOnOption struct {
	catalog.AddOn
	Selected     bool   `json:"selected"`
	PriceDisplay string `json:"price_display"`
}

// View is a snapshot of everything needed to render the wizard
type View struct {
	State      State                 `json:"state"`
	Step       int                   `json:"step"`
	TotalSteps int                   `json:"total_steps"`
	Steps      []StepIndicator       `json:"steps"`
	Current    form.Step             `json:"current"`
	Fields     []form.FieldInfo      `json:"fields,omitempty"`
	Values     form.FormValues       `json:"values"`
	Errors     map[form.Field]string `json:"errors"`
	Plans      []PlanOption          `json:"plans"`
	AddOns     []AddOnOption         `json:"addons"`
	Quote      pricing.Quote         `json:"quote"`
	Message    string                `json:"message,omitempty"`
	CanGoBack  bool                  `json:"can_go_back"`
	NextLabel  string                `json:"next_label"`
}

// View returns a snapshot of the wizard. Errors only include touched fields.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:      w.state,
		Step:       w.step,
		TotalSteps: form.TotalSteps,
		Values:     w.values.Clone(),
		Errors:     make(map[form.Field]string),
		Plans:      []PlanOption{},
		AddOns:     []AddOnOption{},
		Message:    w.message,
	}

	for _, s := range form.Steps() {
		v.Steps = append(v.Steps, StepIndicator{Step: s, Active: s.Number == w.step})
	}
	v.Current, _ = form.StepAt(w.step)
	if w.step == 1 {
		v.Fields = form.PersonalInfoFields()
	}

	switch w.state {
	case StateLoading:
		v.Message = LoadingMessage
		return v
	case StateLoadFailed:
		v.Message = LoadFailedMessage
		return v
	case StateSubmitted:
		v.Message = ThankYouMessage
		return v
	}

	for _, e := range w.errors.Errors {
		if w.touched[e.Field] {
			v.Errors[e.Field] = e.Message
		}
	}

	for _, p := range w.catalog.Plans() {
		opt := PlanOption{
			Plan:         p,
			Selected:     p.ID == w.values.PlanType,
			PriceDisplay: pricing.FormatPrice(p.Price(w.values.IsYearly), w.values.IsYearly),
		}
		if w.values.IsYearly {
			opt.Promo = YearlyPromo
		}
		v.Plans = append(v.Plans, opt)
	}
	for _, a := range w.catalog.AddOns() {
		v.AddOns = append(v.AddOns, AddOnOption{
			AddOn:        a,
			Selected:     w.values.HasAddOn(a.ID),
			PriceDisplay: pricing.FormatAddOnPrice(a.Price(w.values.IsYearly), w.values.IsYearly),
		})
	}
	v.Quote = pricing.NewQuote(w.values, w.catalog)

	v.CanGoBack = w.step > 1 && w.state == StateReady
	switch {
	case w.state == StateSubmitting:
		v.NextLabel = ProcessingLabel
	case w.step == form.TotalSteps:
		v.NextLabel = ConfirmLabel
	default:
		v.NextLabel = NextLabel
	}
	return v
}
