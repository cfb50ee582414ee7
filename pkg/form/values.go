package form

import (
	"github.com/platinummonkey/signup/pkg/catalog"
)

// Field names a form field. The values match the JSON keys of FormValues.
type Field string

// Form fields
const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldPlanType Field = "planType"
	FieldIsYearly Field = "isYearly"
	FieldAddOns   Field = "addOns"
)

// FormValues is everything the user enters across the steps. It is also the
// POST /submit body.
type FormValues struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	PlanType catalog.ID   `json:"planType"`
	IsYearly bool         `json:"isYearly"`
	AddOns   []catalog.ID `json:"addOns"`
}

// NewFormValues returns the initial values, with the plan preselected when a
// default is given
func NewFormValues(defaultPlan catalog.ID) FormValues {
	return FormValues{
		PlanType: defaultPlan,
		AddOns:   []catalog.ID{},
	}
}

// HasAddOn reports whether id is selected
func (v FormValues) HasAddOn(id catalog.ID) bool {
	for _, a := range v.AddOns {
		if a == id {
			return true
		}
	}
	return false
}

// ToggleAddOn removes id when selected and appends it otherwise. Order of
// the remaining selections is preserved and no id appears twice.
func (v *FormValues) ToggleAddOn(id catalog.ID) {
	for i, a := range v.AddOns {
		if a == id {
			v.AddOns = append(v.AddOns[:i:i], v.AddOns[i+1:]...)
			return
		}
	}
	v.AddOns = append(v.AddOns, id)
}

// Clone returns a deep copy
func (v FormValues) Clone() FormValues {
	c := v
	c.AddOns = append([]catalog.ID{}, v.AddOns...)
	return c
}
