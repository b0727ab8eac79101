package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medfund/internal/ledger/models"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
	txcontext "medfund/pkg/platform/tx"
)

// PostgresStore persists the donation ledger. Append joins the transaction
// carried in the context when the case store's Execute opened one, so the
// ledger entry and the case counter commit together.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed donation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const donationColumns = `id, donor_id, case_id, amount_cents, currency,
	payment_method, outcome, transaction_id, is_anonymous, message, created_at`

func (s *PostgresStore) Append(ctx context.Context, d *models.Donation) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO donations (`+donationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(d.ID), uuid.UUID(d.DonorID), uuid.UUID(d.CaseID),
		d.Amount.Cents(), d.Currency, d.PaymentMethod, string(d.Outcome),
		d.TransactionID, d.IsAnonymous, d.Message, d.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("transaction %s: %w", d.TransactionID, sentinel.ErrConflict)
		}
		return fmt.Errorf("append donation: %w", err)
	}
	return nil
}

// Discard deletes one entry. Inside a case transaction the rollback already
// removes the row, so the delete joining that transaction is harmless.
func (s *PostgresStore) Discard(ctx context.Context, id domain.DonationID) error {
	if _, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM donations WHERE id = $1`, uuid.UUID(id)); err != nil {
		return fmt.Errorf("discard donation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DonationID) (*models.Donation, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id = $1`, uuid.UUID(id))
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("donation %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Donation, error) {
	return s.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE case_id = $1 ORDER BY created_at DESC`, uuid.UUID(caseID))
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*models.Donation, error) {
	return s.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE donor_id = $1 ORDER BY created_at DESC`, uuid.UUID(donorID))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Donation, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var result []*models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *PostgresStore) SumCompletedByCase(ctx context.Context, caseID domain.CaseID) (domain.Money, error) {
	var sum int64
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM donations
		WHERE case_id = $1 AND outcome = 'completed'`, uuid.UUID(caseID)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum donations: %w", err)
	}
	return domain.Money(sum), nil
}

func (s *PostgresStore) TotalsByCase(ctx context.Context) (map[domain.CaseID]domain.Money, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT case_id, COALESCE(SUM(amount_cents), 0) FROM donations
		WHERE outcome = 'completed' GROUP BY case_id`)
	if err != nil {
		return nil, fmt.Errorf("sum donations by case: %w", err)
	}
	defer rows.Close()

	totals := make(map[domain.CaseID]domain.Money)
	for rows.Next() {
		var caseID uuid.UUID
		var sum int64
		if err := rows.Scan(&caseID, &sum); err != nil {
			return nil, fmt.Errorf("scan case total: %w", err)
		}
		totals[domain.CaseID(caseID)] = domain.Money(sum)
	}
	return totals, rows.Err()
}

func (s *PostgresStore) TotalCompleted(ctx context.Context) (domain.Money, error) {
	var sum int64
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM donations
		WHERE outcome = 'completed'`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum donations: %w", err)
	}
	return domain.Money(sum), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*models.Donation, error) {
	var (
		d               models.Donation
		id, donor, kase uuid.UUID
		amount          int64
		outcome         string
	)
	err := row.Scan(&id, &donor, &kase, &amount, &d.Currency, &d.PaymentMethod,
		&outcome, &d.TransactionID, &d.IsAnonymous, &d.Message, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.ID = domain.DonationID(id)
	d.DonorID = domain.DonorID(donor)
	d.CaseID = domain.CaseID(kase)
	d.Amount = domain.Money(amount)
	d.Outcome = domain.PaymentOutcome(outcome)
	return &d, nil
}
