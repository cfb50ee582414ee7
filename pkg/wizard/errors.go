package wizard

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/signup/pkg/form"
)

var (
	// ErrNotReady is returned for input while the wizard is loading,
	// failed to load, submitting or already submitted
	ErrNotReady = errors.New("wizard is not accepting input")

	// ErrAlreadyLoaded is returned by a second Load
	ErrAlreadyLoaded = errors.New("catalog already loaded")

	// ErrInvalidStep is returned when jumping forward or out of range
	ErrInvalidStep = errors.New("invalid step")

	// ErrNotAtSummary is returned by Submit before the last step
	ErrNotAtSummary = errors.New("submission is only possible from the summary step")

	// ErrSubmissionInFlight is returned by Submit while a submission is running
	ErrSubmissionInFlight = errors.New("submission already in progress")

	// ErrUnknownPlan is returned when selecting a plan missing from the catalog
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrUnknownAddOn is returned when toggling an add-on missing from the catalog
	ErrUnknownAddOn = errors.New("unknown add-on")
)

// InvalidValuesError is returned by Submit when the values no longer pass
// validation, e.g. after an earlier step was edited from the summary
type InvalidValuesError struct {
	Result form.ValidationResult
}

func (e *InvalidValuesError) Error() string {
	return fmt.Sprintf("form values are invalid: %d field(s) failed", len(e.Result.Errors))
}

// Is makes errors.Is(err, ErrInvalidValues) match
func (e *InvalidValuesError) Is(target error) bool {
	return target == ErrInvalidValues
}

// ErrInvalidValues matches any InvalidValuesError
var ErrInvalidValues = errors.New("form values are invalid")
