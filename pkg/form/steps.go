package form

// TotalSteps is the number of steps in the wizard
const TotalSteps = 4

// Step describes one page of the wizard
type Step struct {
	Number      int     `json:"num"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Heading     string  `json:"heading"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// FieldInfo is the display metadata of an input field
type FieldInfo struct {
	Field       Field  `json:"field"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

var steps = []Step{
	{
		Number:      1,
		Title:       "YOUR INFO",
		Subtitle:    "STEP 1",
		Heading:     "Personal info",
		Description: "Please provide your name, email address, and phone number.",
		Fields:      []Field{FieldName, FieldEmail, FieldPhone},
	},
	{
		Number:      2,
		Title:       "SELECT PLAN",
		Subtitle:    "STEP 2",
		Heading:     "Select your plan",
		Description: "You have the option of monthly or yearly billing.",
		Fields:      []Field{FieldPlanType, FieldIsYearly},
	},
	{
		Number:      3,
		Title:       "ADD-ONS",
		Subtitle:    "STEP 3",
		Heading:     "Pick add-ons",
		Description: "Add-ons help enhance your gaming experience.",
		Fields:      []Field{FieldAddOns},
	},
	{
		Number:      4,
		Title:       "SUMMARY",
		Subtitle:    "STEP 4",
		Heading:     "Finishing up",
		Description: "Double-check everything looks OK before confirming.",
	},
}

var personalInfo = []FieldInfo{
	{Field: FieldName, Label: "Name", Placeholder: "e.g. Stephen King"},
	{Field: FieldEmail, Label: "Email Address", Placeholder: "e.g. stephenking@lorem.com"},
	{Field: FieldPhone, Label: "Phone Number", Placeholder: "e.g. +1 234 567 890"},
}

// Steps returns the wizard steps in order
func Steps() []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s
		out[i].Fields = append([]Field(nil), s.Fields...)
	}
	return out
}

func (s Step) has(f Field) bool {
	for _, sf := range s.Fields {
		if sf == f {
			return true
		}
	}
	return false
}

// StepAt returns step n (1-based)
func StepAt(n int) (Step, bool) {
	if n < 1 || n > len(steps) {
		return Step{}, false
	}
	return Steps()[n-1], true
}

// PersonalInfoFields returns the inputs shown on the first step
func PersonalInfoFields() []FieldInfo {
	return append([]FieldInfo(nil), personalInfo...)
}
