package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civiclink/internal/ngo/models"
	"civiclink/internal/platform/postgres"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const ngoColumns = `id, name, registration_number, description, contact_email, contact_phone, website,
	areas_of_work, admins, verified, approved_by, approved_at, total_claimed, completed, success_rate,
	stats_computed_at, created_at, updated_at`

// Create maps a duplicate id or registration number to sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, n *models.NGO) error {
	query := `INSERT INTO ngos (` + ngoColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	if _, err := s.db.ExecContext(ctx, query, ngoArgs(n)...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert ngo: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ngoID id.NGOID) (*models.NGO, error) {
	return findNGO(ctx, s.db, ngoID, false)
}

func findNGO(ctx context.Context, q querier, ngoID id.NGOID, forUpdate bool) (*models.NGO, error) {
	query := `SELECT ` + ngoColumns + ` FROM ngos WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	n, err := scanNGO(q.QueryRowContext(ctx, query, ngoID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ngo: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.NGO, int, error) {
	where := ""
	var args []any
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		where = ` WHERE verified = $1`
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ngos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ngos: %w", err)
	}

	query := `SELECT ` + ngoColumns + ` FROM ngos` + where + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ngos: %w", err)
	}
	defer rows.Close()

	out := make([]*models.NGO, 0)
	for rows.Next() {
		n, err := scanNGO(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ngo: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ngos: %w", err)
	}
	return out, total, nil
}

// Execute locks the row with SELECT … FOR UPDATE for validate and mutate.
func (s *PostgresStore) Execute(
	ctx context.Context,
	ngoID id.NGOID,
	validate func(*models.NGO) error,
	mutate func(*models.NGO),
) (*models.NGO, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ngo tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := findNGO(ctx, tx, ngoID, true)
	if err != nil {
		return nil, err
	}
	if err := validate(n); err != nil {
		return nil, err
	}
	mutate(n)
	query := `UPDATE ngos SET
		name = $2, registration_number = $3, description = $4, contact_email = $5, contact_phone = $6,
		website = $7, areas_of_work = $8, admins = $9, verified = $10, approved_by = $11, approved_at = $12,
		total_claimed = $13, completed = $14, success_rate = $15, stats_computed_at = $16,
		created_at = $17, updated_at = $18
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, ngoArgs(n)...); err != nil {
		return nil, fmt.Errorf("update ngo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ngo tx: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateStats(ctx context.Context, ngoID id.NGOID, stats models.Stats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ngos SET total_claimed = $2, completed = $3, success_rate = $4, stats_computed_at = $5 WHERE id = $1`,
		ngoID.String(), stats.TotalClaimed, stats.Completed, stats.SuccessRate, nullableTime(stats.ComputedAt),
	)
	if err != nil {
		return fmt.Errorf("update ngo stats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ngoID id.NGOID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ngos WHERE id = $1`, ngoID.String())
	if err != nil {
		return fmt.Errorf("delete ngo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func ngoArgs(n *models.NGO) []any {
	admins := make([]string, len(n.Admins))
	for i, u := range n.Admins {
		admins[i] = u.String()
	}
	var approvedBy any
	if n.ApprovedBy != nil {
		approvedBy = n.ApprovedBy.String()
	}
	return []any{
		n.ID.String(), n.Name, n.RegistrationNumber, n.Description, n.ContactEmail, n.ContactPhone, n.Website,
		pq.Array(n.AreasOfWork), pq.Array(admins), n.Verified, approvedBy, nullableTime(n.ApprovedAt),
		n.Stats.TotalClaimed, n.Stats.Completed, n.Stats.SuccessRate, nullableTime(n.Stats.ComputedAt),
		n.CreatedAt, n.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNGO(row rowScanner) (*models.NGO, error) {
	var (
		n          models.NGO
		areas      pq.StringArray
		admins     pq.StringArray
		approvedBy uuid.NullUUID
		approvedAt sql.NullTime
		computedAt sql.NullTime
	)
	err := row.Scan(
		(*uuid.UUID)(&n.ID), &n.Name, &n.RegistrationNumber, &n.Description, &n.ContactEmail, &n.ContactPhone, &n.Website,
		&areas, &admins, &n.Verified, &approvedBy, &approvedAt, &n.Stats.TotalClaimed, &n.Stats.Completed,
		&n.Stats.SuccessRate, &computedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.AreasOfWork = []string(areas)
	if n.AreasOfWork == nil {
		n.AreasOfWork = []string{}
	}
	n.Admins = make([]id.UserID, 0, len(admins))
	for _, raw := range admins {
		u, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse ngo admin: %w", err)
		}
		n.Admins = append(n.Admins, id.UserID(u))
	}
	if approvedBy.Valid {
		u := id.UserID(approvedBy.UUID)
		n.ApprovedBy = &u
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		n.ApprovedAt = &t
	}
	if computedAt.Valid {
		t := computedAt.Time
		n.Stats.ComputedAt = &t
	}
	return &n, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
