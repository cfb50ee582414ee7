// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteErrorMessage(w, http.StatusInternalServerError, "Failed to fetch plans")
//	httputil.WriteBadRequest(w, "Invalid input")
//
// # Request Parsing
//
//	body, err := httputil.ReadBody(r)
//	if errors.Is(err, httputil.ErrBodyTooLarge) { ... }
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.CORSMiddleware([]string{"*"}),
//		httputil.MaxBytesMiddleware(64*1024),
//	)
//
// RateLimiter keeps one golang.org/x/time/rate token bucket per client IP in
// a bounded LRU and answers 429 once a client's bucket is empty.
package httputil
