package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/observability"
)

// Catalog error bodies
const (
	PlansErrorMessage  = "Failed to fetch plans"
	AddOnsErrorMessage = "Failed to fetch addons"
)

// CatalogHandlers serves the plan and add-on catalog
type CatalogHandlers struct {
	provider catalog.Provider
	logger   *logrus.Logger
	metrics  *observability.Metrics
}

// NewCatalogHandlers creates catalog handlers. metrics may be nil.
func NewCatalogHandlers(provider catalog.Provider, logger *logrus.Logger, metrics *observability.Metrics) *CatalogHandlers {
	return &CatalogHandlers{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/plans", h.listPlans).Methods(http.MethodGet)
	r.HandleFunc("/addons", h.listAddOns).Methods(http.MethodGet)
}

// listPlans handles GET /plans
func (h *CatalogHandlers) listPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plans, err := h.provider.ListPlans(ctx)
	if err != nil {
		h.fail(w, r, "plans", PlansErrorMessage, err)
		return
	}

	defaultID, err := h.provider.DefaultPlanID(ctx)
	if err != nil {
		h.fail(w, r, "plans", PlansErrorMessage, err)
		return
	}

	httputil.WriteJSONOrError(w, http.StatusOK, catalog.NewPlansResponse(plans, defaultID), PlansErrorMessage)
}

// listAddOns handles GET /addons
func (h *CatalogHandlers) listAddOns(w http.ResponseWriter, r *http.Request) {
	addOns, err := h.provider.ListAddOns(r.Context())
	if err != nil {
		h.fail(w, r, "addons", AddOnsErrorMessage, err)
		return
	}
	if addOns == nil {
		addOns = []catalog.AddOn{}
	}

	httputil.WriteJSONOrError(w, http.StatusOK, addOns, AddOnsErrorMessage)
}

func (h *CatalogHandlers) fail(w http.ResponseWriter, r *http.Request, resource, message string, err error) {
	observability.FromContext(r.Context(), h.logger).WithError(err).Errorf("Error fetching %s", resource)
	if h.metrics != nil {
		h.metrics.RecordCatalogError(resource)
	}
	httputil.WriteErrorMessage(w, http.StatusInternalServerError, message)
}
