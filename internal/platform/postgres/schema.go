// Package postgres owns the relational schema for the funding engine.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cases (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL,
		title TEXT NOT NULL,
		treatment_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		goal_amount_cents BIGINT NOT NULL CHECK (goal_amount_cents > 0),
		raised_amount_cents BIGINT NOT NULL DEFAULT 0 CHECK (raised_amount_cents >= 0),
		status TEXT NOT NULL,
		urgency_level TEXT NOT NULL,
		verifier_id UUID,
		consent_given BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases (status)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_patient ON cases (patient_id)`,

	`CREATE TABLE IF NOT EXISTS donations (
		id UUID PRIMARY KEY,
		donor_id UUID NOT NULL,
		case_id UUID NOT NULL REFERENCES cases (id),
		amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
		currency TEXT NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_case ON donations (case_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations (donor_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS case_updates (
		id UUID PRIMARY KEY,
		case_id UUID NOT NULL REFERENCES cases (id),
		author_id TEXT NOT NULL,
		author_type TEXT NOT NULL,
		update_type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_case_updates_case ON case_updates (case_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		case_id UUID NOT NULL REFERENCES cases (id),
		title TEXT NOT NULL DEFAULT '',
		amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
		vendor TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		invoice_date TIMESTAMPTZ NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		receipt_ref TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_case ON invoices (case_id, created_at DESC)`,
}

// Migrate applies the schema. Statements are idempotent so startup can run
// this unconditionally.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
