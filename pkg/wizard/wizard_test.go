package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/submission"
)

type loaderFunc func(ctx context.Context) (*catalog.Catalog, error)

func (f loaderFunc) Load(ctx context.Context) (*catalog.Catalog, error) {
	return f(ctx)
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Plan{
			{ID: "1", Name: "Arcade", MonthlyPrice: decimal.NewFromInt(9), YearlyPrice: decimal.NewFromInt(90)},
			{ID: "2", Name: "Advanced", MonthlyPrice: decimal.NewFromInt(12), YearlyPrice: decimal.NewFromInt(120)},
			{ID: "3", Name: "Pro", MonthlyPrice: decimal.NewFromInt(15), YearlyPrice: decimal.NewFromInt(150)},
		},
		[]catalog.AddOn{
			{ID: "1", Name: "Online service", MonthlyPrice: decimal.NewFromInt(1), YearlyPrice: decimal.NewFromInt(10)},
			{ID: "2", Name: "Larger storage", MonthlyPrice: decimal.NewFromInt(2), YearlyPrice: decimal.NewFromInt(20)},
			{ID: "3", Name: "Customizable profile", MonthlyPrice: decimal.NewFromInt(2), YearlyPrice: decimal.NewFromInt(20)},
		},
		"1",
	)
}

func staticLoader(c *catalog.Catalog) catalog.Loader {
	return loaderFunc(func(ctx context.Context) (*catalog.Catalog, error) { return c, nil })
}

// fakeGateway records submissions and returns a canned outcome
type fakeGateway struct {
	mu      sync.Mutex
	calls   []form.FormValues
	result  *submission.Result
	err     error
	block   chan struct{}
	started chan struct{}
}

func (g *fakeGateway) Submit(ctx context.Context, values form.FormValues) (*submission.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, values)
	g.mu.Unlock()

	if g.started != nil {
		close(g.started)
	}
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func loadedWizard(t *testing.T, opts ...Option) *Wizard {
	t.Helper()
	w := New(opts...)
	require.NoError(t, w.Load(context.Background(), staticLoader(testCatalog())))
	return w
}

func fillPersonalInfo(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SetName("Stephen King"))
	require.NoError(t, w.SetEmail("stephenking@lorem.com"))
	require.NoError(t, w.SetPhone("+1 234 567 890"))
}

// toSummary fills every step and advances to the last one
func toSummary(t *testing.T, w *Wizard) {
	t.Helper()
	fillPersonalInfo(t, w)
	for w.Step() < form.TotalSteps {
		res, err := w.Next()
		require.NoError(t, err)
		require.True(t, res.Valid(), "step %d: %v", w.Step(), res.Errors)
	}
}

func TestNew(t *testing.T) {
	w := New()
	assert.Equal(t, StateLoading, w.State())
	assert.Equal(t, 1, w.Step())
	assert.Nil(t, w.Catalog())

	_, err := w.Next()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, w.SetName("x"), ErrNotReady)
}

func TestLoad(t *testing.T) {
	w := loadedWizard(t)

	assert.Equal(t, StateReady, w.State())
	assert.Equal(t, 1, w.Step())
	assert.Equal(t, catalog.ID("1"), w.Values().PlanType)
	assert.Len(t, w.Catalog().Plans(), 3)

	err := w.Load(context.Background(), staticLoader(testCatalog()))
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestLoad_NoDefaultPlan(t *testing.T) {
	tests := []struct {
		name string
		cat  *catalog.Catalog
	}{
		{name: "empty default", cat: catalog.New(testCatalog().Plans(), nil, "")},
		{name: "no plans", cat: catalog.New(nil, nil, "1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			require.NoError(t, w.Load(context.Background(), staticLoader(tt.cat)))
			assert.True(t, w.Values().PlanType.IsZero())
		})
	}
}

func TestLoad_Failure(t *testing.T) {
	w := New()
	cause := errors.New("connection refused")

	err := w.Load(context.Background(), loaderFunc(func(ctx context.Context) (*catalog.Catalog, error) {
		return nil, cause
	}))
	require.Error(t, err)

	var loadErr *catalog.LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateLoadFailed, w.State())
	assert.Equal(t, err, w.LoadError())

	// terminal for the session
	assert.ErrorIs(t, w.Load(context.Background(), staticLoader(testCatalog())), ErrAlreadyLoaded)
	_, err = w.Next()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, LoadFailedMessage, w.View().Message)
}

func TestNext_GatesOnValidation(t *testing.T) {
	w := loadedWizard(t)
	require.NoError(t, w.SetName("Stephen King"))
	require.NoError(t, w.SetEmail("not-an-email"))

	res, err := w.Next()
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Equal(t, 1, w.Step())
	assert.Equal(t, "Invalid email format", res.Message(form.FieldEmail))
	assert.Equal(t, "Phone number is required", res.Message(form.FieldPhone))

	view := w.View()
	assert.Equal(t, "Invalid email format", view.Errors[form.FieldEmail])
	assert.Equal(t, "Phone number is required", view.Errors[form.FieldPhone])

	require.NoError(t, w.SetEmail("stephenking@lorem.com"))
	require.NoError(t, w.SetPhone("+1 234 567 890"))
	res, err = w.Next()
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, 2, w.Step())
}

func TestNext_CappedAtLastStep(t *testing.T) {
	w := loadedWizard(t)
	toSummary(t, w)
	assert.Equal(t, form.TotalSteps, w.Step())

	res, err := w.Next()
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, form.TotalSteps, w.Step())
}

func TestNext_PlanRequired(t *testing.T) {
	w := New()
	require.NoError(t, w.Load(context.Background(), staticLoader(catalog.New(testCatalog().Plans(), nil, ""))))
	fillPersonalInfo(t, w)

	_, err := w.Next()
	require.NoError(t, err)
	require.Equal(t, 2, w.Step())

	res, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, "Please select a plan", res.Message(form.FieldPlanType))
	assert.Equal(t, 2, w.Step())

	require.NoError(t, w.SelectPlan("3"))
	_, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, w.Step())
}

func TestErrorsOnlyShownWhenTouched(t *testing.T) {
	w := loadedWizard(t)
	require.NoError(t, w.SetName(""))

	assert.Empty(t, w.View().Errors)

	w.Touch(form.FieldName)
	assert.Equal(t, map[form.Field]string{form.FieldName: "Name is required"}, w.View().Errors)
}

func TestBack(t *testing.T) {
	w := loadedWizard(t)

	// floored at 1
	require.NoError(t, w.Back())
	assert.Equal(t, 1, w.Step())

	toSummary(t, w)
	for want := 3; want >= 1; want-- {
		require.NoError(t, w.Back())
		assert.Equal(t, want, w.Step())
	}
	require.NoError(t, w.Back())
	assert.Equal(t, 1, w.Step())
}

func TestBack_IgnoresValidity(t *testing.T) {
	w := loadedWizard(t)
	fillPersonalInfo(t, w)
	_, err := w.Next()
	require.NoError(t, err)

	require.NoError(t, w.SetEmail(""))
	require.NoError(t, w.Back())
	assert.Equal(t, 1, w.Step())
}

func TestJumpTo(t *testing.T) {
	w := loadedWizard(t)
	toSummary(t, w)

	require.NoError(t, w.JumpTo(2))
	assert.Equal(t, 2, w.Step())

	assert.ErrorIs(t, w.JumpTo(4), ErrInvalidStep)
	assert.ErrorIs(t, w.JumpTo(0), ErrInvalidStep)
	assert.Equal(t, 2, w.Step())
}

func TestSetters(t *testing.T) {
	w := loadedWizard(t)

	require.NoError(t, w.SelectPlan("2"))
	assert.ErrorIs(t, w.SelectPlan("9"), ErrUnknownPlan)
	assert.Equal(t, catalog.ID("2"), w.Values().PlanType)

	require.NoError(t, w.ToggleYearly())
	assert.True(t, w.Values().IsYearly)
	require.NoError(t, w.SetYearly(false))
	assert.False(t, w.Values().IsYearly)

	require.NoError(t, w.ToggleAddOn("1"))
	require.NoError(t, w.ToggleAddOn("3"))
	assert.ErrorIs(t, w.ToggleAddOn("7"), ErrUnknownAddOn)
	assert.Equal(t, []catalog.ID{"1", "3"}, w.Values().AddOns)

	require.NoError(t, w.ToggleAddOn("1"))
	assert.Equal(t, []catalog.ID{"3"}, w.Values().AddOns)
}

func TestTotal(t *testing.T) {
	w := loadedWizard(t)
	require.NoError(t, w.ToggleAddOn("2"))
	assert.Equal(t, "11", w.Total().String())

	require.NoError(t, w.ToggleYearly())
	assert.Equal(t, "110", w.Total().String())
}

func TestSubmit_Success(t *testing.T) {
	w := loadedWizard(t)
	require.NoError(t, w.ToggleAddOn("1"))
	toSummary(t, w)

	gw := &fakeGateway{result: &submission.Result{UserID: 1, SubscriptionID: 2}}
	res, err := w.Submit(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, gw.result, res)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "stephenking@lorem.com", gw.calls[0].Email)
	assert.Equal(t, []catalog.ID{"1"}, gw.calls[0].AddOns)

	assert.Equal(t, StateSubmitted, w.State())
	assert.Equal(t, 1, w.Step())
	assert.Equal(t, form.NewFormValues("1"), w.Values())
	assert.Equal(t, gw.result, w.Result())
	assert.Equal(t, ThankYouMessage, w.View().Message)

	_, err = w.Submit(context.Background(), gw)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, w.Back(), ErrNotReady)
}

func TestSubmit_OnlyFromSummary(t *testing.T) {
	w := loadedWizard(t)
	fillPersonalInfo(t, w)

	_, err := w.Submit(context.Background(), &fakeGateway{})
	assert.ErrorIs(t, err, ErrNotAtSummary)
	assert.Equal(t, StateReady, w.State())
}

func TestSubmit_RevalidatesEditedValues(t *testing.T) {
	w := loadedWizard(t)
	toSummary(t, w)
	require.NoError(t, w.SetEmail("not-an-email"))
	require.NoError(t, w.SetName(""))

	gw := &fakeGateway{result: &submission.Result{UserID: 1, SubscriptionID: 2}}
	_, err := w.Submit(context.Background(), gw)
	require.ErrorIs(t, err, ErrInvalidValues)

	var invalid *InvalidValuesError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Name is required", invalid.Result.Message(form.FieldName))
	assert.Equal(t, "Invalid email format", invalid.Result.Message(form.FieldEmail))

	assert.Empty(t, gw.calls)
	assert.Equal(t, StateReady, w.State())
	assert.Equal(t, 1, w.Step())

	view := w.View()
	assert.Equal(t, "Name is required", view.Errors[form.FieldName])
	assert.Equal(t, "Invalid email format", view.Errors[form.FieldEmail])

	require.NoError(t, w.SetName("Stephen King"))
	require.NoError(t, w.SetEmail("stephenking@lorem.com"))
	toSummary(t, w)
	_, err = w.Submit(context.Background(), gw)
	require.NoError(t, err)
	assert.Len(t, gw.calls, 1)
}

func TestSubmit_PlanMissingFromCatalog(t *testing.T) {
	stale := catalog.New(testCatalog().Plans(), testCatalog().AddOns(), "9")
	w := New()
	require.NoError(t, w.Load(context.Background(), staticLoader(stale)))
	toSummary(t, w)

	gw := &fakeGateway{}
	_, err := w.Submit(context.Background(), gw)
	require.ErrorIs(t, err, ErrInvalidValues)

	assert.Empty(t, gw.calls)
	assert.Equal(t, 2, w.Step())
	assert.Equal(t, "Please select a plan", w.View().Errors[form.FieldPlanType])

	require.NoError(t, w.SelectPlan("2"))
	toSummary(t, w)
	_, err = w.Submit(context.Background(), gw)
	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, catalog.ID("2"), gw.calls[0].PlanType)
}

func TestSubmit_Failure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		opts        []Option
		wantMessage string
		wantStep    int
	}{
		{
			name:        "conflict",
			err:         submission.NewConflictError(nil),
			wantMessage: ConflictMessage,
			wantStep:    1,
		},
		{
			name:        "generic failure",
			err:         submission.NewSubmissionError(errors.New("boom")),
			wantMessage: FailureMessage,
			wantStep:    1,
		},
		{
			name:        "return to summary",
			err:         submission.NewSubmissionError(errors.New("boom")),
			opts:        []Option{WithFailureStep(form.TotalSteps)},
			wantMessage: FailureMessage,
			wantStep:    form.TotalSteps,
		},
		{
			name:        "out of range failure step ignored",
			err:         submission.NewConflictError(nil),
			opts:        []Option{WithFailureStep(9)},
			wantMessage: ConflictMessage,
			wantStep:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := loadedWizard(t, tt.opts...)
			require.NoError(t, w.ToggleAddOn("2"))
			toSummary(t, w)
			before := w.Values()

			_, err := w.Submit(context.Background(), &fakeGateway{err: tt.err})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			assert.Equal(t, StateReady, w.State())
			assert.Equal(t, tt.wantStep, w.Step())
			assert.Equal(t, before, w.Values(), "values are kept")
			assert.Equal(t, tt.wantMessage, w.View().Message)
			assert.Equal(t, tt.err, w.SubmitError())
		})
	}
}

func TestSubmit_InFlight(t *testing.T) {
	w := loadedWizard(t)
	toSummary(t, w)

	gw := &fakeGateway{
		result:  &submission.Result{UserID: 1, SubscriptionID: 1},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), gw)
		done <- err
	}()
	<-gw.started

	assert.Equal(t, StateSubmitting, w.State())
	assert.Equal(t, ProcessingLabel, w.View().NextLabel)

	_, err := w.Submit(context.Background(), gw)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, w.SetName("changed"), ErrNotReady)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Len(t, gw.calls, 1)
	assert.Equal(t, StateSubmitted, w.State())
}
