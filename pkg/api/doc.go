// Package api serves the sign-up HTTP API.
//
// Routes, mounted at the root and again under /api:
//
//	GET  /plans   plans ascending by monthly price, plus the default plan
//	GET  /addons  add-ons ascending by monthly price
//	POST /submit  validate and persist a completed sign-up
//
// POST /submit answers 200 with the new user and subscription IDs, 400 with
// per-field messages, 409 when the email is already registered and 500 for
// any other failure. Every failure body has "success": false.
package api
