package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medfund/internal/transparency/models"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
)

// UpdatePostgres persists case updates in PostgreSQL.
type UpdatePostgres struct {
	db *sql.DB
}

func NewUpdatePostgres(db *sql.DB) *UpdatePostgres {
	return &UpdatePostgres{db: db}
}

const updateColumns = `id, case_id, author_id, author_type, update_type, title, content, created_at`

func (s *UpdatePostgres) Append(ctx context.Context, u *models.CaseUpdate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO case_updates (`+updateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(u.ID), uuid.UUID(u.CaseID), u.AuthorID,
		string(u.AuthorType), string(u.UpdateType), u.Title, u.Content, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append case update: %w", err)
	}
	return nil
}

func (s *UpdatePostgres) ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.CaseUpdate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+updateColumns+` FROM case_updates
		WHERE case_id = $1 ORDER BY created_at DESC`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list case updates: %w", err)
	}
	defer rows.Close()

	var result []*models.CaseUpdate
	for rows.Next() {
		var (
			u          models.CaseUpdate
			id, kase   uuid.UUID
			authorType string
			updateType string
		)
		if err := rows.Scan(&id, &kase, &u.AuthorID, &authorType, &updateType, &u.Title, &u.Content, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan case update: %w", err)
		}
		u.ID = domain.UpdateID(id)
		u.CaseID = domain.CaseID(kase)
		u.AuthorType = domain.AuthorType(authorType)
		u.UpdateType = domain.UpdateType(updateType)
		result = append(result, &u)
	}
	return result, rows.Err()
}

// InvoicePostgres persists invoices in PostgreSQL. ExecuteInvoice locks the
// row FOR UPDATE so concurrent advancement attempts serialize.
type InvoicePostgres struct {
	db *sql.DB
}

func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

const invoiceColumns = `id, case_id, title, amount_cents, vendor, description, invoice_date, category, receipt_ref, status, created_at, updated_at`

func (s *InvoicePostgres) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(inv.ID), uuid.UUID(inv.CaseID), inv.Title, inv.Amount.Cents(),
		inv.Vendor, inv.Description, inv.InvoiceDate, inv.Category, inv.ReceiptRef,
		string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("invoice %s: %w", inv.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *InvoicePostgres) FindByID(ctx context.Context, id domain.InvoiceID) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, uuid.UUID(id))
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return inv, nil
}

func (s *InvoicePostgres) ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE case_id = $1 ORDER BY created_at DESC`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var result []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

func (s *InvoicePostgres) ExecuteInvoice(ctx context.Context, id domain.InvoiceID, fn func(inv *models.Invoice) error) (*models.Invoice, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin invoice tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}

	if err := fn(inv); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(inv.ID), string(inv.Status), inv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit invoice tx: %w", err)
	}
	return inv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var (
		inv      models.Invoice
		id, kase uuid.UUID
		amount   int64
		status   string
	)
	err := row.Scan(&id, &kase, &inv.Title, &amount, &inv.Vendor, &inv.Description,
		&inv.InvoiceDate, &inv.Category, &inv.ReceiptRef,
		&status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.ID = domain.InvoiceID(id)
	inv.CaseID = domain.CaseID(kase)
	inv.Amount = domain.Money(amount)
	inv.Status = domain.InvoiceStatus(status)
	return &inv, nil
}
