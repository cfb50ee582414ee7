package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/platinummonkey/signup/pkg/catalog"
)

const schemaBaseURL = "https://signup.schemas.local/form/"

// Order in which fields are reported
var fieldOrder = []Field{FieldName, FieldEmail, FieldPhone, FieldPlanType, FieldIsYearly, FieldAddOns}

var propertySchemas = map[Field]map[string]any{
	FieldName:     {"type": "string", "minLength": 1},
	FieldEmail:    {"type": "string", "minLength": 1, "format": "email"},
	FieldPhone:    {"type": "string", "minLength": 1},
	FieldPlanType: {"type": []string{"string", "integer"}, "minLength": 1, "pattern": `\S`},
	FieldIsYearly: {"type": "boolean"},
	FieldAddOns:   {"type": "array", "items": map[string]any{"type": []string{"string", "integer"}, "pattern": `\S`}},
}

// Messages per field and failing keyword. A keyword missing here reports
// invalidValueMessage.
var messages = map[Field]map[string]string{
	FieldName:     {"minLength": "Name is required"},
	FieldEmail:    {"minLength": "Email is required", "format": "Invalid email format"},
	FieldPhone:    {"minLength": "Phone number is required"},
	FieldPlanType: {"minLength": unknownPlanMessage, "pattern": unknownPlanMessage},
}

// Lower wins when a field fails several keywords
var keywordRank = map[string]int{"type": 0, "minLength": 1, "pattern": 2, "format": 2}

const (
	invalidValueMessage = "Invalid value"
	unknownPlanMessage  = "Please select a plan"
	invalidBodyMessage  = "Request body must be a JSON object"
)

// FieldError is a validation message for one field
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ValidationResult lists the failing fields of a validation run. The zero
// value is a successful result.
type ValidationResult struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid reports whether no field failed
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Message returns the message for f, or "" when f passed
func (r ValidationResult) Message(f Field) string {
	for _, e := range r.Errors {
		if e.Field == f {
			return e.Message
		}
	}
	return ""
}

// Fields returns the messages keyed by field name
func (r ValidationResult) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[string(e.Field)] = e.Message
	}
	return out
}

// Validator checks form values against the compiled step schemas
type Validator struct {
	steps map[int]*jsonschema.Schema
	all   *jsonschema.Schema
}

// NewValidator compiles the schema of every step plus the combined schema
func NewValidator() (*Validator, error) {
	v := &Validator{steps: make(map[int]*jsonschema.Schema, TotalSteps)}

	var allFields []Field
	for _, s := range steps {
		compiled, err := compileSchema(fmt.Sprintf("step%d", s.Number), s.Fields)
		if err != nil {
			return nil, err
		}
		v.steps[s.Number] = compiled
		allFields = append(allFields, s.Fields...)
	}

	all, err := compileSchema("all", allFields)
	if err != nil {
		return nil, err
	}
	v.all = all
	return v, nil
}

var defaultValidator = sync.OnceValue(func() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(fmt.Sprintf("form: built-in schemas do not compile: %v", err))
	}
	return v
})

// Default returns a shared Validator
func Default() *Validator {
	return defaultValidator()
}

func compileSchema(name string, fields []Field) (*jsonschema.Schema, error) {
	properties := make(map[string]any, len(fields))
	for _, f := range fields {
		properties[string(f)] = propertySchemas[f]
	}
	doc, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s schema: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	url := schemaBaseURL + name + ".schema.json"
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to load %s schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	return compiled, nil
}

// ValidateStep checks the fields of step n. Steps without rules, and step
// numbers outside the wizard, always pass.
func (v *Validator) ValidateStep(n int, values FormValues) ValidationResult {
	schema, ok := v.steps[n]
	if !ok {
		return ValidationResult{}
	}
	return validate(schema, toDocument(values))
}

// ValidateAll checks every step
func (v *Validator) ValidateAll(values FormValues) ValidationResult {
	return validate(v.all, toDocument(values))
}

// ValidateSubmission checks every step and cross-references the plan and
// add-ons against cat. A nil cat skips the cross-reference.
func (v *Validator) ValidateSubmission(values FormValues, cat *catalog.Catalog) ValidationResult {
	res := v.ValidateAll(values)
	if cat == nil {
		return res
	}
	if res.Message(FieldPlanType) == "" {
		if _, ok := cat.Plan(values.PlanType); !ok {
			res.Errors = append(res.Errors, FieldError{Field: FieldPlanType, Message: unknownPlanMessage})
		}
	}
	if res.Message(FieldAddOns) == "" {
		for _, id := range values.AddOns {
			if _, ok := cat.AddOn(id); !ok {
				res.Errors = append(res.Errors, FieldError{Field: FieldAddOns, Message: invalidValueMessage})
				break
			}
		}
	}
	return res
}

// FirstFailingStep returns the lowest step owning a failed field, or 0 when
// res is valid or names no step field.
func (r ValidationResult) FirstFailingStep() int {
	first := 0
	for _, e := range r.Errors {
		for _, s := range steps {
			if !s.has(e.Field) {
				continue
			}
			if first == 0 || s.Number < first {
				first = s.Number
			}
		}
	}
	return first
}

// ValidateJSON checks a raw submission body against every step and decodes
// it. Absent or null fields count as empty. An error is returned only when
// data is not JSON.
func (v *Validator) ValidateJSON(data []byte) (FormValues, ValidationResult, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return FormValues{}, ValidationResult{}, fmt.Errorf("failed to decode form values: %w", err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return FormValues{}, ValidationResult{Errors: []FieldError{{Message: invalidBodyMessage}}}, nil
	}
	empty := toDocument(FormValues{})
	for k, def := range empty {
		if val, present := obj[k]; !present || val == nil {
			obj[k] = def
		}
	}

	if res := validate(v.all, obj); !res.Valid() {
		return FormValues{}, res, nil
	}

	// Re-encode so that defaults filled above apply to the typed values too
	normalized, err := json.Marshal(obj)
	if err != nil {
		return FormValues{}, ValidationResult{}, fmt.Errorf("failed to encode form values: %w", err)
	}
	var values FormValues
	if err := json.Unmarshal(normalized, &values); err != nil {
		return FormValues{}, ValidationResult{}, fmt.Errorf("failed to decode form values: %w", err)
	}
	if values.AddOns == nil {
		values.AddOns = []catalog.ID{}
	}
	return values, ValidationResult{}, nil
}

func toDocument(values FormValues) map[string]any {
	addOns := make([]any, 0, len(values.AddOns))
	for _, id := range values.AddOns {
		addOns = append(addOns, id.String())
	}
	return map[string]any{
		string(FieldName):     values.Name,
		string(FieldEmail):    values.Email,
		string(FieldPhone):    values.Phone,
		string(FieldPlanType): values.PlanType.String(),
		string(FieldIsYearly): values.IsYearly,
		string(FieldAddOns):   addOns,
	}
}

func validate(schema *jsonschema.Schema, doc any) ValidationResult {
	err := schema.Validate(doc)
	if err == nil {
		return ValidationResult{}
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return ValidationResult{Errors: []FieldError{{Message: invalidValueMessage}}}
	}

	found := make(map[Field]FieldError)
	ranks := make(map[Field]int)
	collect(ve, found, ranks)

	var res ValidationResult
	if e, ok := found[""]; ok {
		res.Errors = append(res.Errors, e)
	}
	for _, f := range fieldOrder {
		if e, ok := found[f]; ok {
			res.Errors = append(res.Errors, e)
		}
	}
	return res
}

func collect(ve *jsonschema.ValidationError, found map[Field]FieldError, ranks map[Field]int) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, found, ranks)
		}
		return
	}

	location := strings.TrimPrefix(ve.InstanceLocation, "/")
	field := Field(strings.SplitN(location, "/", 2)[0])
	keyword := ve.KeywordLocation[strings.LastIndex(ve.KeywordLocation, "/")+1:]

	rank, known := keywordRank[keyword]
	if !known {
		rank = len(keywordRank)
	}
	if prev, seen := ranks[field]; seen && prev <= rank {
		return
	}
	ranks[field] = rank

	msg := invalidValueMessage
	if field == "" {
		msg = invalidBodyMessage
	} else if m, ok := messages[field][keyword]; ok {
		msg = m
	}
	found[field] = FieldError{Field: field, Message: msg}
}
