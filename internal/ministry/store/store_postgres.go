package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civiclink/internal/ministry/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ministryColumns = `id, name_en, name_si, name_ta, categories, contact_email, contact_phone, officers,
	total_issues, solved, pending, resolution_rate, avg_response_time_hours, stats_computed_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, m *models.Ministry) error {
	query := `INSERT INTO ministries (` + ministryColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, query, ministryArgs(m)...)
	if err != nil {
		return fmt.Errorf("insert ministry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ministryID id.MinistryID) (*models.Ministry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ministryColumns+` FROM ministries WHERE id = $1`, ministryID.String())
	m, err := scanMinistry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ministry: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Ministry, error) {
	return s.query(ctx, `SELECT `+ministryColumns+` FROM ministries ORDER BY name_en, id`)
}

// FindByCategories uses array overlap so one query covers every category.
func (s *PostgresStore) FindByCategories(ctx context.Context, categories []string) ([]*models.Ministry, error) {
	return s.query(ctx, `SELECT `+ministryColumns+` FROM ministries WHERE categories && $1 ORDER BY name_en, id`,
		pq.Array(categories))
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Ministry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ministries: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Ministry, 0)
	for rows.Next() {
		m, err := scanMinistry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ministry: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ministries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Ministry) error {
	query := `UPDATE ministries SET
		name_en = $2, name_si = $3, name_ta = $4, categories = $5, contact_email = $6, contact_phone = $7,
		officers = $8, total_issues = $9, solved = $10, pending = $11, resolution_rate = $12,
		avg_response_time_hours = $13, stats_computed_at = $14, created_at = $15, updated_at = $16
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, ministryArgs(m)...)
	if err != nil {
		return fmt.Errorf("update ministry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// UpdateStats writes only the stats columns so a recompute never overwrites a
// concurrent profile edit.
func (s *PostgresStore) UpdateStats(ctx context.Context, ministryID id.MinistryID, stats models.Stats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ministries SET total_issues = $2, solved = $3, pending = $4, resolution_rate = $5,
		 avg_response_time_hours = $6, stats_computed_at = $7 WHERE id = $1`,
		ministryID.String(), stats.TotalIssues, stats.Solved, stats.Pending, stats.ResolutionRate,
		stats.AvgResponseTimeHours, nullableTime(stats.ComputedAt),
	)
	if err != nil {
		return fmt.Errorf("update ministry stats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ministryID id.MinistryID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ministries WHERE id = $1`, ministryID.String())
	if err != nil {
		return fmt.Errorf("delete ministry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ministries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ministries: %w", err)
	}
	return n, nil
}

func ministryArgs(m *models.Ministry) []any {
	officers := make([]string, len(m.Officers))
	for i, u := range m.Officers {
		officers[i] = u.String()
	}
	return []any{
		m.ID.String(), m.Name.EN, m.Name.SI, m.Name.TA, pq.Array(m.Categories), m.ContactEmail, m.ContactPhone,
		pq.Array(officers), m.Stats.TotalIssues, m.Stats.Solved, m.Stats.Pending, m.Stats.ResolutionRate,
		m.Stats.AvgResponseTimeHours, nullableTime(m.Stats.ComputedAt), m.CreatedAt, m.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMinistry(row rowScanner) (*models.Ministry, error) {
	var (
		m          models.Ministry
		categories pq.StringArray
		officers   pq.StringArray
		computedAt sql.NullTime
	)
	err := row.Scan(
		(*uuid.UUID)(&m.ID), &m.Name.EN, &m.Name.SI, &m.Name.TA, &categories, &m.ContactEmail, &m.ContactPhone,
		&officers, &m.Stats.TotalIssues, &m.Stats.Solved, &m.Stats.Pending, &m.Stats.ResolutionRate,
		&m.Stats.AvgResponseTimeHours, &computedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Categories = []string(categories)
	if m.Categories == nil {
		m.Categories = []string{}
	}
	m.Officers = make([]id.UserID, 0, len(officers))
	for _, raw := range officers {
		u, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse officer id: %w", err)
		}
		m.Officers = append(m.Officers, id.UserID(u))
	}
	if computedAt.Valid {
		t := computedAt.Time
		m.Stats.ComputedAt = &t
	}
	return &m, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
