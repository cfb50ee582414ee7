package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DefaultPlanKey is the app_config key holding the default plan ID
const DefaultPlanKey = "default_plan_id"

// Store reads the catalog from the plans, addons and app_config tables
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ListPlans lists all plans, cheapest first
func (s *Store) ListPlans(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT id, name, monthly_price, yearly_price, icon_path
		FROM plans
		ORDER BY monthly_price ASC, id ASC
	`
	plans := []Plan{}
	if err := s.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	return plans, nil
}

// ListAddOns lists all add-ons, cheapest first
func (s *Store) ListAddOns(ctx context.Context) ([]AddOn, error) {
	query := `
		SELECT id, name, description, monthly_price, yearly_price
		FROM addons
		ORDER BY monthly_price ASC, id ASC
	`
	addOns := []AddOn{}
	if err := s.db.SelectContext(ctx, &addOns, query); err != nil {
		return nil, fmt.Errorf("failed to query addons: %w", err)
	}
	return addOns, nil
}

// DefaultPlanID returns the configured default plan. A missing row is not an
// error.
func (s *Store) DefaultPlanID(ctx context.Context) (ID, error) {
	query := s.db.Rebind(`SELECT value FROM app_config WHERE key = ?`)

	var id ID
	err := s.db.GetContext(ctx, &id, query, DefaultPlanKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query default plan: %w", err)
	}
	return id, nil
}
