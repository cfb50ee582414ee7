package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/observability"
	"github.com/platinummonkey/signup/pkg/submission"
)

// Submission error bodies other than the conflict and generic failure
const (
	InvalidBodyMessage   = "Invalid request body"
	InvalidValuesMessage = "Invalid form values"
	BodyTooLargeMessage  = "Request body too large"
)

// SubmitHandlers accepts completed sign-ups
type SubmitHandlers struct {
	gateway   submission.Gateway
	validator *form.Validator
	logger    *logrus.Logger
	metrics   *observability.Metrics
	limiter   *httputil.RateLimiter
}

// NewSubmitHandlers creates submit handlers. metrics and limiter may be nil.
func NewSubmitHandlers(gateway submission.Gateway, validator *form.Validator, logger *logrus.Logger, metrics *observability.Metrics, limiter *httputil.RateLimiter) *SubmitHandlers {
	return &SubmitHandlers{
		gateway:   gateway,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
		limiter:   limiter,
	}
}

// RegisterRoutes registers the submission route
func (h *SubmitHandlers) RegisterRoutes(r *mux.Router) {
	var handler http.Handler = httputil.ContentTypeMiddleware(http.HandlerFunc(h.submit))
	if h.limiter != nil {
		handler = h.limiter.Handler(handler)
	}
	r.Handle("/submit", handler).Methods(http.MethodPost)
}

// submit handles POST /submit
func (h *SubmitHandlers) submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := observability.FromContext(r.Context(), h.logger)

	body, err := httputil.ReadBody(r)
	if err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			h.record(observability.OutcomeInvalid, start)
			h.write(w, http.StatusRequestEntityTooLarge, submission.Response{Error: BodyTooLargeMessage})
			return
		}
		log.WithError(err).Error("Error reading submission")
		h.record(observability.OutcomeFailed, start)
		h.write(w, http.StatusInternalServerError, submission.Response{Error: submission.FailureMessage})
		return
	}

	values, result, err := h.validator.ValidateJSON(body)
	if err != nil {
		h.record(observability.OutcomeInvalid, start)
		h.write(w, http.StatusBadRequest, submission.Response{
			Error: InvalidBodyMessage,
			Code:  submission.CodeValidationFailed,
		})
		return
	}
	if !result.Valid() {
		h.record(observability.OutcomeInvalid, start)
		h.write(w, http.StatusBadRequest, submission.Response{
			Error:  InvalidValuesMessage,
			Code:   submission.CodeValidationFailed,
			Fields: result.Fields(),
		})
		return
	}

	res, err := h.gateway.Submit(r.Context(), values)
	if err != nil {
		var conflict *submission.ConflictError
		if errors.As(err, &conflict) {
			log.WithField("code", conflict.Code).Info("Submission rejected, email already registered")
			h.record(observability.OutcomeConflict, start)
			h.write(w, http.StatusConflict, submission.Response{
				Error: submission.ConflictMessage,
				Code:  submission.CodeEmailExists,
			})
			return
		}

		log.WithError(err).Error("Error submitting form")
		h.record(observability.OutcomeFailed, start)
		h.write(w, http.StatusInternalServerError, submission.Response{Error: submission.FailureMessage})
		return
	}

	log.WithFields(logrus.Fields{
		"user_id":         res.UserID,
		"subscription_id": res.SubscriptionID,
	}).Info("Subscription created")
	h.record(observability.OutcomeCreated, start)
	h.write(w, http.StatusOK, submission.Response{
		Success: true,
		Message: submission.SuccessMessage,
		Data:    res,
	})
}

func (h *SubmitHandlers) write(w http.ResponseWriter, status int, resp submission.Response) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.logger.WithError(err).Error("Error writing submission response")
	}
}

func (h *SubmitHandlers) record(outcome string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordSubmission(outcome, time.Since(start))
	}
}
