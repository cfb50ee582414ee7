package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML representation of a catalog
type SeedFile struct {
	DefaultPlan string      `yaml:"default_plan"`
	Plans       []SeedPlan  `yaml:"plans"`
	AddOns      []SeedAddOn `yaml:"addons"`
}

// SeedPlan is a plan entry in a seed file. Prices are decimal strings.
type SeedPlan struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	MonthlyPrice string `yaml:"monthly_price"`
	YearlyPrice  string `yaml:"yearly_price"`
	IconPath     string `yaml:"icon_path"`
}

// SeedAddOn is an add-on entry in a seed file
type SeedAddOn struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	MonthlyPrice string `yaml:"monthly_price"`
	YearlyPrice  string `yaml:"yearly_price"`
}

// ReadSeedFile reads and validates a YAML seed file
func ReadSeedFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses a YAML seed document into a catalog snapshot
func ParseSeed(data []byte) (*Catalog, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	plans := make([]Plan, 0, len(f.Plans))
	for i, sp := range f.Plans {
		if sp.ID == "" || sp.Name == "" {
			return nil, fmt.Errorf("plan %d: id and name are required", i)
		}
		monthly, yearly, err := parsePrices(sp.MonthlyPrice, sp.YearlyPrice)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", sp.ID, err)
		}
		plans = append(plans, Plan{
			ID:           ParseID(sp.ID),
			Name:         sp.Name,
			MonthlyPrice: monthly,
			YearlyPrice:  yearly,
			IconPath:     sp.IconPath,
		})
	}

	addOns := make([]AddOn, 0, len(f.AddOns))
	for i, sa := range f.AddOns {
		if sa.ID == "" || sa.Name == "" {
			return nil, fmt.Errorf("addon %d: id and name are required", i)
		}
		monthly, yearly, err := parsePrices(sa.MonthlyPrice, sa.YearlyPrice)
		if err != nil {
			return nil, fmt.Errorf("addon %s: %w", sa.ID, err)
		}
		addOns = append(addOns, AddOn{
			ID:           ParseID(sa.ID),
			Name:         sa.Name,
			Description:  sa.Description,
			MonthlyPrice: monthly,
			YearlyPrice:  yearly,
		})
	}

	cat := New(plans, addOns, ParseID(f.DefaultPlan))
	if def := cat.DefaultPlanID(); !def.IsZero() {
		if _, ok := cat.Plan(def); !ok {
			return nil, fmt.Errorf("default plan %s is not in the plan list", def)
		}
	}
	return cat, nil
}

func parsePrices(monthly, yearly string) (decimal.Decimal, decimal.Decimal, error) {
	m, err := decimal.NewFromString(monthly)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid monthly_price %q: %w", monthly, err)
	}
	y, err := decimal.NewFromString(yearly)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid yearly_price %q: %w", yearly, err)
	}
	if m.IsNegative() || y.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("prices must not be negative")
	}
	return m, y, nil
}

// Seed upserts every plan and add-on of cat, and the default plan, in one
// transaction
func Seed(ctx context.Context, db *sqlx.DB, cat *Catalog) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	planQuery := tx.Rebind(`
		INSERT INTO plans (id, name, monthly_price, yearly_price, icon_path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, monthly_price = excluded.monthly_price,
		    yearly_price = excluded.yearly_price, icon_path = excluded.icon_path
	`)
	for _, p := range cat.Plans() {
		if _, err := tx.ExecContext(ctx, planQuery, p.ID, p.Name, p.MonthlyPrice, p.YearlyPrice, p.IconPath); err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.ID, err)
		}
	}

	addOnQuery := tx.Rebind(`
		INSERT INTO addons (id, name, description, monthly_price, yearly_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, description = excluded.description,
		    monthly_price = excluded.monthly_price, yearly_price = excluded.yearly_price
	`)
	for _, a := range cat.AddOns() {
		if _, err := tx.ExecContext(ctx, addOnQuery, a.ID, a.Name, a.Description, a.MonthlyPrice, a.YearlyPrice); err != nil {
			return fmt.Errorf("failed to seed addon %s: %w", a.ID, err)
		}
	}

	if def := cat.DefaultPlanID(); !def.IsZero() {
		configQuery := tx.Rebind(`
			INSERT INTO app_config (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`)
		if _, err := tx.ExecContext(ctx, configQuery, DefaultPlanKey, def); err != nil {
			return fmt.Errorf("failed to seed default plan: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}
