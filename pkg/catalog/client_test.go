package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogServer(t *testing.T, plansBody string, plansStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/plans", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(plansStatus)
		w.Write([]byte(plansBody))
	})
	mux.HandleFunc("/addons", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Online service","description":"Access to multiplayer games","monthly_price":"1.00","yearly_price":"10.00"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Load(t *testing.T) {
	srv := catalogServer(t, `{
		"plans": [
			{"id": 2, "name": "Advanced", "monthly_price": "12.00", "yearly_price": "120.00", "icon_path": "/a.svg"},
			{"id": 1, "name": "Arcade", "monthly_price": "9.00", "yearly_price": "90.00", "icon_path": "/b.svg"}
		],
		"default_plan_id": [{"value": "1"}]
	}`, http.StatusOK)

	c, err := NewClient(srv.URL+"/", nil).Load(context.Background())
	require.NoError(t, err)

	plans := c.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, "Arcade", plans[0].Name)
	assert.Equal(t, ID("1"), c.DefaultPlanID())

	a, ok := c.AddOn("1")
	require.True(t, ok)
	assert.Equal(t, "10", a.YearlyPrice.String())
}

func TestClient_Load_NoDefaultWithoutPlans(t *testing.T) {
	srv := catalogServer(t, `{"plans": [], "default_plan_id": [{"value": "1"}]}`, http.StatusOK)

	c, err := NewClient(srv.URL, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Plans())
	assert.True(t, c.DefaultPlanID().IsZero())
}

func TestClient_Load_EmptyDefault(t *testing.T) {
	srv := catalogServer(t, `{"plans": [{"id": 1, "name": "Arcade", "monthly_price": "9", "yearly_price": "90"}], "default_plan_id": []}`, http.StatusOK)

	c, err := NewClient(srv.URL, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, c.DefaultPlanID().IsZero())
}

func TestClient_Load_Failure(t *testing.T) {
	srv := catalogServer(t, `{"error":"Failed to fetch plans"}`, http.StatusInternalServerError)

	c, err := NewClient(srv.URL, nil).Load(context.Background())
	assert.Nil(t, c)
	require.Error(t, err)

	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "status 500")
}
