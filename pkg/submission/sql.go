package submission

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/storage"
)

const tracerName = "github.com/platinummonkey/signup/pkg/submission"

// Unique constraint on users.email as reported by each driver
var emailConstraints = map[string]bool{
	"users_email_key": true,
	"users.email":     true,
}

// SQLGateway stores submissions in the sign-up database
type SQLGateway struct {
	db      *sqlx.DB
	tracer  trace.Tracer
	created metric.Int64Counter
}

// NewSQLGateway creates a new SQLGateway using the global otel providers
func NewSQLGateway(db *sqlx.DB) *SQLGateway {
	g := &SQLGateway{
		db:     db,
		tracer: otel.Tracer(tracerName),
	}
	return g.WithMeterProvider(otel.GetMeterProvider())
}

// WithMeterProvider records created subscriptions with mp
func (g *SQLGateway) WithMeterProvider(mp metric.MeterProvider) *SQLGateway {
	counter, err := mp.Meter(tracerName).Int64Counter("signup.subscriptions.created",
		metric.WithDescription("Subscriptions created per plan and billing cycle"),
		metric.WithUnit("{subscription}"),
	)
	if err != nil {
		otel.Handle(err)
	}
	g.created = counter
	return g
}

// Submit implements Gateway
func (g *SQLGateway) Submit(ctx context.Context, values form.FormValues) (*Result, error) {
	ctx, span := g.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.String("subscription.plan_id", values.PlanType.String()),
		attribute.Bool("subscription.yearly", values.IsYearly),
		attribute.Int("subscription.addons", len(values.AddOns)),
	))
	defer span.End()

	res, err := g.submit(ctx, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", res.UserID),
		attribute.Int64("subscription.id", res.SubscriptionID),
	)
	if g.created != nil {
		g.created.Add(ctx, 1, metric.WithAttributes(
			attribute.String("plan_id", values.PlanType.String()),
			attribute.Bool("yearly", values.IsYearly),
		))
	}
	return res, nil
}

func (g *SQLGateway) submit(ctx context.Context, values form.FormValues) (*Result, error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var res Result

	userQuery := tx.Rebind(`INSERT INTO users (name, email, phone) VALUES (?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &res.UserID, userQuery, values.Name, values.Email, values.Phone); err != nil {
		if constraint, ok := storage.UniqueViolation(err); ok && emailConstraints[constraint] {
			return nil, NewConflictError(err)
		}
		return nil, NewSubmissionError(fmt.Errorf("failed to insert user: %w", err))
	}

	subscriptionQuery := tx.Rebind(`
		INSERT INTO subscriptions (user_id, plan_id, is_yearly)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	if err := tx.GetContext(ctx, &res.SubscriptionID, subscriptionQuery, res.UserID, values.PlanType, values.IsYearly); err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to insert subscription: %w", err))
	}

	addOnQuery := tx.Rebind(`INSERT INTO subscription_addons (subscription_id, addon_id) VALUES (?, ?)`)
	for _, id := range uniqueIDs(values.AddOns) {
		if _, err := tx.ExecContext(ctx, addOnQuery, res.SubscriptionID, id); err != nil {
			return nil, NewSubmissionError(fmt.Errorf("failed to insert subscription addon %s: %w", id, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, NewSubmissionError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return &res, nil
}

func uniqueIDs(ids []catalog.ID) []catalog.ID {
	seen := make(map[catalog.ID]bool, len(ids))
	out := make([]catalog.ID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
