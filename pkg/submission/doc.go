// Package submission persists a completed sign-up.
//
// A Gateway takes the final form values and returns the new user and
// subscription IDs. SQLGateway writes the user, the subscription and one
// subscription_addons row per selected add-on in a single transaction.
// Client is the same contract over the HTTP API (POST /submit).
//
// A duplicate email address is reported as *ConflictError; every other
// failure is a *SubmissionError. In both cases nothing was written.
package submission
