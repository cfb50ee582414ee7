package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/storage/storagetest"
	"github.com/platinummonkey/signup/pkg/submission"
	"github.com/platinummonkey/signup/pkg/wizard"
)

func completeWizard(t *testing.T, w *wizard.Wizard, email string) {
	t.Helper()

	require.NoError(t, w.SetName("Stephen King"))
	require.NoError(t, w.SetEmail(email))
	require.NoError(t, w.SetPhone("+1 234 567 890"))
	res, err := w.Next()
	require.NoError(t, err)
	require.True(t, res.Valid(), res.Errors)

	require.NoError(t, w.SelectPlan("2"))
	require.NoError(t, w.SetYearly(true))
	_, err = w.Next()
	require.NoError(t, err)

	require.NoError(t, w.ToggleAddOn("1"))
	require.NoError(t, w.ToggleAddOn("2"))
	_, err = w.Next()
	require.NoError(t, err)
	require.Equal(t, 4, w.Step())
}

// TestWizardAgainstServer drives the wizard through the HTTP clients against
// a server backed by a migrated SQLite database
func TestWizardAgainstServer(t *testing.T) {
	db := storagetest.NewSQLite(t)
	s := newTestServer(t, catalog.NewStore(db), submission.NewSQLGateway(db))
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx := context.Background()
	loader := catalog.NewClient(ts.URL, ts.Client())
	gateway := submission.NewClient(ts.URL, ts.Client())

	w := wizard.New()
	require.NoError(t, w.Load(ctx, loader))
	require.Equal(t, wizard.StateReady, w.State())
	assert.Equal(t, catalog.ID("1"), w.Values().PlanType)
	assert.Len(t, w.Catalog().Plans(), 3)
	assert.Len(t, w.Catalog().AddOns(), 3)

	completeWizard(t, w, "stephenking@lorem.com")
	// Advanced yearly 120 + Online service 10 + Larger storage 20
	assert.True(t, w.Total().Equal(decimal.NewFromInt(150)), w.Total().String())

	res, err := w.Submit(ctx, gateway)
	require.NoError(t, err)
	assert.Positive(t, res.UserID)
	assert.Positive(t, res.SubscriptionID)
	assert.Equal(t, wizard.StateSubmitted, w.State())

	var addOnRows int
	require.NoError(t, db.Get(&addOnRows, "SELECT COUNT(*) FROM subscription_addons WHERE subscription_id = ?", res.SubscriptionID))
	assert.Equal(t, 2, addOnRows)

	// The same email again is a conflict and writes nothing
	again := wizard.New()
	require.NoError(t, again.Load(ctx, loader))
	completeWizard(t, again, "stephenking@lorem.com")

	_, err = again.Submit(ctx, gateway)
	require.Error(t, err)
	assert.True(t, submission.IsConflict(err))
	assert.Equal(t, wizard.StateReady, again.State())
	assert.Equal(t, 1, again.Step())
	assert.Equal(t, wizard.ConflictMessage, again.View().Message)

	var users, subscriptions int
	require.NoError(t, db.Get(&users, "SELECT COUNT(*) FROM users"))
	require.NoError(t, db.Get(&subscriptions, "SELECT COUNT(*) FROM subscriptions"))
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, subscriptions)
}
