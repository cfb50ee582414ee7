package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ID identifies a plan or an add-on. The canonical form is a string; numeric
// keys are formatted in base 10.
type ID string

// ParseID normalizes a raw identifier
func ParseID(raw string) ID {
	return ID(strings.TrimSpace(raw))
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty
func (id ID) IsZero() bool {
	return id == ""
}

// Scan implements sql.Scanner so integer and text keys scan to the same ID
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ""
	case int64:
		*id = ID(strconv.FormatInt(v, 10))
	case []byte:
		*id = ParseID(string(v))
	case string:
		*id = ParseID(v)
	default:
		return fmt.Errorf("unsupported id type %T", src)
	}
	return nil
}

// Value implements driver.Valuer
func (id ID) Value() (driver.Value, error) {
	return string(id), nil
}

// UnmarshalJSON accepts both JSON strings and JSON numbers
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ParseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ParseID(n.String())
	return nil
}

// Plan is a subscription plan
type Plan struct {
	ID           ID              `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	YearlyPrice  decimal.Decimal `json:"yearly_price" db:"yearly_price"`
	IconPath     string          `json:"icon_path" db:"icon_path"`
}

// Price returns the plan price for the billing cycle
func (p Plan) Price(yearly bool) decimal.Decimal {
	if yearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// AddOn is an optional extra attached to a subscription
type AddOn struct {
	ID           ID              `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	YearlyPrice  decimal.Decimal `json:"yearly_price" db:"yearly_price"`
}

// Price returns the add-on price for the billing cycle
func (a AddOn) Price(yearly bool) decimal.Decimal {
	if yearly {
		return a.YearlyPrice
	}
	return a.MonthlyPrice
}

// ConfigValue is a single app_config value as served by GET /plans
type ConfigValue struct {
	Value ID `json:"value"`
}

// PlansResponse is the body of GET /plans
type PlansResponse struct {
	Plans         []Plan        `json:"plans"`
	DefaultPlanID []ConfigValue `json:"default_plan_id"`
}

// NewPlansResponse builds the GET /plans body. An empty default is encoded as
// an empty list.
func NewPlansResponse(plans []Plan, defaultPlanID ID) PlansResponse {
	resp := PlansResponse{
		Plans:         plans,
		DefaultPlanID: []ConfigValue{},
	}
	if resp.Plans == nil {
		resp.Plans = []Plan{}
	}
	if !defaultPlanID.IsZero() {
		resp.DefaultPlanID = append(resp.DefaultPlanID, ConfigValue{Value: defaultPlanID})
	}
	return resp
}

// Catalog is an immutable snapshot of the plans and add-ons on offer
type Catalog struct {
	plans         []Plan
	addOns        []AddOn
	defaultPlanID ID
	planIndex     map[ID]int
	addOnIndex    map[ID]int
}

// New builds a snapshot. Plans and add-ons are kept in ascending monthly price
// order; ties keep their input order.
func New(plans []Plan, addOns []AddOn, defaultPlanID ID) *Catalog {
	c := &Catalog{
		plans:         append([]Plan(nil), plans...),
		addOns:        append([]AddOn(nil), addOns...),
		defaultPlanID: defaultPlanID,
		planIndex:     make(map[ID]int, len(plans)),
		addOnIndex:    make(map[ID]int, len(addOns)),
	}

	sort.SliceStable(c.plans, func(i, j int) bool {
		return c.plans[i].MonthlyPrice.LessThan(c.plans[j].MonthlyPrice)
	})
	sort.SliceStable(c.addOns, func(i, j int) bool {
		return c.addOns[i].MonthlyPrice.LessThan(c.addOns[j].MonthlyPrice)
	})

	for i, p := range c.plans {
		if _, dup := c.planIndex[p.ID]; !dup {
			c.planIndex[p.ID] = i
		}
	}
	for i, a := range c.addOns {
		if _, dup := c.addOnIndex[a.ID]; !dup {
			c.addOnIndex[a.ID] = i
		}
	}

	return c
}

// Plans returns the plans in display order
func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

// AddOns returns the add-ons in display order
func (c *Catalog) AddOns() []AddOn {
	return append([]AddOn(nil), c.addOns...)
}

// DefaultPlanID returns the designated default plan, or the zero ID
func (c *Catalog) DefaultPlanID() ID {
	return c.defaultPlanID
}

// Plan looks up a plan by ID
func (c *Catalog) Plan(id ID) (Plan, bool) {
	if c == nil {
		return Plan{}, false
	}
	i, ok := c.planIndex[id]
	if !ok {
		return Plan{}, false
	}
	return c.plans[i], true
}

// AddOn looks up an add-on by ID
func (c *Catalog) AddOn(id ID) (AddOn, bool) {
	if c == nil {
		return AddOn{}, false
	}
	i, ok := c.addOnIndex[id]
	if !ok {
		return AddOn{}, false
	}
	return c.addOns[i], true
}
