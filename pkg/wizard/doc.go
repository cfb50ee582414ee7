// Package wizard drives one sign-up session through its steps.
//
// A Wizard starts in StateLoading. Load fetches the catalog once; on success
// the wizard is Ready at step 1 with the default plan preselected, on failure
// it stays in StateLoadFailed for the rest of the session.
//
// While Ready, Next validates the current step and advances only when it
// passes, Back moves one step towards the start, and the setters edit the
// form values. Submit is only accepted on the last step:
//
//	w := wizard.New()
//	if err := w.Load(ctx, catalog.NewClient(apiURL, nil)); err != nil { ... }
//	w.SetName("Ada")
//	...
//	res, err := w.Submit(ctx, submission.NewClient(apiURL, nil))
//
// A successful submission moves to StateSubmitted and resets the values. A
// failed one returns to the configured failure step (step 1 unless
// WithFailureStep says otherwise) keeping everything the user entered.
//
// A Wizard is safe for concurrent use. View returns a render-ready snapshot.
package wizard
