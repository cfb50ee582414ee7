package submission

import (
	"context"

	"github.com/platinummonkey/signup/pkg/form"
)

// Result identifies the rows created by a successful submission
type Result struct {
	UserID         int64 `json:"userId"`
	SubscriptionID int64 `json:"subscriptionId"`
}

// Gateway accepts completed form values
type Gateway interface {
	// Submit persists values atomically. It returns *ConflictError when the
	// email is already registered and *SubmissionError for anything else.
	Submit(ctx context.Context, values form.FormValues) (*Result, error)
}
