package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/pricing"
	"github.com/platinummonkey/signup/pkg/submission"
)

// Messages shown to the user
const (
	LoadingMessage    = "Loading form data..."
	LoadFailedMessage = "Failed to load necessary data. Please refresh the page."
	ConflictMessage   = "This email address is already registered. Please use a different email."
	FailureMessage    = "Failed to submit form"
)

// Option configures a Wizard
type Option func(*Wizard)

// WithFailureStep sets the step a failed submission returns to. Values
// outside 1..form.TotalSteps are ignored.
func WithFailureStep(step int) Option {
	return func(w *Wizard) {
		if step >= 1 && step <= form.TotalSteps {
			w.failureStep = step
		}
	}
}

// WithValidator replaces the default step validator
func WithValidator(v *form.Validator) Option {
	return func(w *Wizard) {
		w.validator = v
	}
}

// WithLogger sets the logger used for load and submission failures
func WithLogger(logger *logrus.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// Wizard is the state machine of one sign-up session
type Wizard struct {
	mu sync.Mutex

	state   State
	step    int
	values  form.FormValues
	touched map[form.Field]bool
	errors  form.ValidationResult

	catalog     *catalog.Catalog
	loadErr     error
	loadStarted bool

	submitErr error
	message   string
	result    *submission.Result

	failureStep int
	validator   *form.Validator
	logger      *logrus.Logger
}

// New creates a Wizard in StateLoading
func New(opts ...Option) *Wizard {
	w := &Wizard{
		state:       StateLoading,
		step:        1,
		values:      form.NewFormValues(""),
		touched:     make(map[form.Field]bool),
		failureStep: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.validator == nil {
		w.validator = form.Default()
	}
	if w.logger == nil {
		w.logger = logrus.New()
		w.logger.SetOutput(io.Discard)
	}
	return w
}

// Load fetches the catalog. It may be called once; a failure is final.
func (w *Wizard) Load(ctx context.Context, loader catalog.Loader) error {
	w.mu.Lock()
	if w.loadStarted {
		w.mu.Unlock()
		return ErrAlreadyLoaded
	}
	w.loadStarted = true
	w.mu.Unlock()

	cat, err := loader.Load(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		var loadErr *catalog.LoadError
		if !errors.As(err, &loadErr) {
			err = &catalog.LoadError{Err: err}
		}
		w.loadErr = err
		w.state = StateLoadFailed
		w.logger.WithError(err).Error("Error fetching catalog")
		return err
	}

	w.catalog = cat
	w.values = initialValues(cat)
	w.step = 1
	w.state = StateReady
	return nil
}

func initialValues(cat *catalog.Catalog) form.FormValues {
	def := cat.DefaultPlanID()
	if len(cat.Plans()) == 0 || def.IsZero() {
		return form.NewFormValues("")
	}
	return form.NewFormValues(def)
}

// State returns the current lifecycle state
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Step returns the current step (1-based)
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Values returns a copy of the form values
func (w *Wizard) Values() form.FormValues {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values.Clone()
}

// Catalog returns the loaded catalog, or nil before a successful Load
func (w *Wizard) Catalog() *catalog.Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog
}

// LoadError returns the error of a failed Load
func (w *Wizard) LoadError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadErr
}

// SubmitError returns the error of the last failed submission
func (w *Wizard) SubmitError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitErr
}

// Result returns the IDs of a successful submission
func (w *Wizard) Result() *submission.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Total returns the current price
func (w *Wizard) Total() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return pricing.Total(w.values, w.catalog)
}

// Next marks the current step's fields touched and validates them. The
// wizard advances, up to the last step, only when the result is valid.
func (w *Wizard) Next() (form.ValidationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return form.ValidationResult{}, ErrNotReady
	}

	if s, ok := form.StepAt(w.step); ok {
		for _, f := range s.Fields {
			w.touched[f] = true
		}
	}

	res := w.validator.ValidateStep(w.step, w.values)
	w.errors = res
	if res.Valid() && w.step < form.TotalSteps {
		w.step++
		w.revalidate()
	}
	return res, nil
}

// Back moves to the previous step. It stays on step 1.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return ErrNotReady
	}
	if w.step > 1 {
		w.step--
		w.revalidate()
	}
	return nil
}

// JumpTo moves back to an earlier step, e.g. from the summary's "Change"
// link. Moving forward must go through Next.
func (w *Wizard) JumpTo(step int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return ErrNotReady
	}
	if step < 1 || step > w.step {
		return fmt.Errorf("%w: cannot jump from step %d to %d", ErrInvalidStep, w.step, step)
	}
	w.step = step
	w.revalidate()
	return nil
}

// Touch marks a field as visited so its error, if any, is shown
func (w *Wizard) Touch(f form.Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched[f] = true
}

// SetName sets the name field
func (w *Wizard) SetName(name string) error {
	return w.update(func(v *form.FormValues) error {
		v.Name = name
		return nil
	})
}

// SetEmail sets the email field
func (w *Wizard) SetEmail(email string) error {
	return w.update(func(v *form.FormValues) error {
		v.Email = email
		return nil
	})
}

// SetPhone sets the phone field
func (w *Wizard) SetPhone(phone string) error {
	return w.update(func(v *form.FormValues) error {
		v.Phone = phone
		return nil
	})
}

// SelectPlan selects a plan from the catalog
func (w *Wizard) SelectPlan(id catalog.ID) error {
	return w.update(func(v *form.FormValues) error {
		if _, ok := w.catalog.Plan(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPlan, id)
		}
		v.PlanType = id
		return nil
	})
}

// SetYearly selects yearly (true) or monthly billing
func (w *Wizard) SetYearly(yearly bool) error {
	return w.update(func(v *form.FormValues) error {
		v.IsYearly = yearly
		return nil
	})
}

// ToggleYearly switches the billing cycle
func (w *Wizard) ToggleYearly() error {
	return w.update(func(v *form.FormValues) error {
		v.IsYearly = !v.IsYearly
		return nil
	})
}

// ToggleAddOn selects or deselects an add-on from the catalog
func (w *Wizard) ToggleAddOn(id catalog.ID) error {
	return w.update(func(v *form.FormValues) error {
		if _, ok := w.catalog.AddOn(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAddOn, id)
		}
		v.ToggleAddOn(id)
		return nil
	})
}

func (w *Wizard) update(fn func(v *form.FormValues) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return ErrNotReady
	}
	if err := fn(&w.values); err != nil {
		return err
	}
	w.revalidate()
	return nil
}

// revalidate refreshes the errors of the current step. Callers hold mu.
func (w *Wizard) revalidate() {
	w.errors = w.validator.ValidateStep(w.step, w.values)
}

// Submit sends the values through gw. It is accepted only on the last step
// and only once at a time.
func (w *Wizard) Submit(ctx context.Context, gw submission.Gateway) (*submission.Result, error) {
	w.mu.Lock()
	switch {
	case w.state == StateSubmitting:
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case w.state != StateReady:
		w.mu.Unlock()
		return nil, ErrNotReady
	case w.step != form.TotalSteps:
		w.mu.Unlock()
		return nil, ErrNotAtSummary
	}
	if res := w.validator.ValidateSubmission(w.values, w.catalog); !res.Valid() {
		w.rejectSubmission(res)
		w.mu.Unlock()
		return nil, &InvalidValuesError{Result: res}
	}
	w.state = StateSubmitting
	w.message = ""
	w.submitErr = nil
	values := w.values.Clone()
	w.mu.Unlock()

	res, err := gw.Submit(ctx, values)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = StateReady
		w.step = w.failureStep
		w.submitErr = err
		if submission.IsConflict(err) {
			w.message = ConflictMessage
		} else {
			w.message = FailureMessage
		}
		w.revalidate()
		w.logger.WithError(err).Warn("Error submitting form")
		return nil, err
	}

	w.state = StateSubmitted
	w.result = res
	w.step = 1
	w.values = initialValues(w.catalog)
	w.touched = make(map[form.Field]bool)
	w.errors = form.ValidationResult{}
	return res, nil
}

// rejectSubmission shows the failed fields and returns to the first step
// owning one of them. Callers hold mu.
func (w *Wizard) rejectSubmission(res form.ValidationResult) {
	for _, e := range res.Errors {
		w.touched[e.Field] = true
	}
	if step := res.FirstFailingStep(); step > 0 {
		w.step = step
	}
	w.errors = w.validator.ValidateStep(w.step, w.values)
	s, _ := form.StepAt(w.step)
	for _, e := range res.Errors {
		if w.errors.Message(e.Field) == "" && slices.Contains(s.Fields, e.Field) {
			w.errors.Errors = append(w.errors.Errors, e)
		}
	}
}
