// Package form holds the sign-up form values, the step layout and the
// per-step validation rules.
//
// Each step has a JSON Schema compiled once by NewValidator. Validation never
// fails with an error for bad input; it returns a ValidationResult listing at
// most one message per field:
//
//	v := form.Default()
//	if res := v.ValidateStep(1, values); !res.Valid() {
//		fmt.Println(res.Message(form.FieldEmail))
//	}
//
// ValidateJSON checks a raw request body against every step at once and is
// what the HTTP API uses before accepting a submission.
package form
