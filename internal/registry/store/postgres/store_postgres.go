package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medfund/internal/registry/models"
	"medfund/internal/registry/store"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
	txcontext "medfund/pkg/platform/tx"
)

// PostgresStore persists cases in PostgreSQL. Execute serializes per-case
// mutation with SELECT ... FOR UPDATE inside a transaction, so the callback
// and the resulting write commit as one atomic unit.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed case store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const caseColumns = `id, patient_id, title, treatment_type, description,
	goal_amount_cents, raised_amount_cents, status, urgency_level,
	verifier_id, consent_given, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	var verifier any
	if c.VerifierID != nil {
		verifier = uuid.UUID(*c.VerifierID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(c.ID), uuid.UUID(c.PatientID), c.Title, string(c.TreatmentType),
		c.Description, c.GoalAmount.Cents(), c.RaisedAmount.Cents(),
		string(c.Status), string(c.UrgencyLevel), verifier, c.ConsentGiven,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("case %s: %w", c.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, uuid.UUID(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context, filter store.Filter) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	args := []any{}
	if filter.TreatmentType != "" {
		args = append(args, string(filter.TreatmentType))
		query += fmt.Sprintf(" AND treatment_type = $%d", len(args))
	}
	if filter.UrgencyLevel != "" {
		args = append(args, string(filter.UrgencyLevel))
		query += fmt.Sprintf(" AND urgency_level = $%d", len(args))
	}
	if len(filter.StatusIn) > 0 {
		statuses := make([]string, len(filter.StatusIn))
		for i, st := range filter.StatusIn {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	query += `
		ORDER BY CASE urgency_level
			WHEN 'critical' THEN 4
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			ELSE 1
		END DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var result []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Execute locks the case row FOR UPDATE, applies fn, and writes back the
// result. The callback context carries the open transaction so the donation
// store joins the same commit. Commit and rollback are all-or-nothing: a
// failing callback leaves every row untouched.
func (s *PostgresStore) Execute(ctx context.Context, id domain.CaseID, fn func(ctx context.Context, c *models.Case) error) (*models.Case, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin case tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock case: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx), c); err != nil {
		return nil, err
	}

	var verifier any
	if c.VerifierID != nil {
		verifier = uuid.UUID(*c.VerifierID)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE cases SET
			raised_amount_cents = $2, status = $3, verifier_id = $4,
			title = $5, description = $6, urgency_level = $7, updated_at = $8
		WHERE id = $1`,
		uuid.UUID(c.ID), c.RaisedAmount.Cents(), string(c.Status), verifier,
		c.Title, c.Description, string(c.UrgencyLevel), c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit case tx: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[domain.CaseStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count cases by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.CaseStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.CaseStatus(status)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c           models.Case
		id, patient uuid.UUID
		verifier    uuid.NullUUID
		goal        int64
		raised      int64
		treatment   string
		status      string
		urgency     string
	)
	err := row.Scan(&id, &patient, &c.Title, &treatment, &c.Description,
		&goal, &raised, &status, &urgency, &verifier, &c.ConsentGiven,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = domain.CaseID(id)
	c.PatientID = domain.PatientID(patient)
	c.TreatmentType = domain.TreatmentType(treatment)
	c.GoalAmount = domain.Money(goal)
	c.RaisedAmount = domain.Money(raised)
	c.Status = domain.CaseStatus(status)
	c.UrgencyLevel = domain.UrgencyLevel(urgency)
	if verifier.Valid {
		v := domain.DoctorID(verifier.UUID)
		c.VerifierID = &v
	}
	return &c, nil
}
