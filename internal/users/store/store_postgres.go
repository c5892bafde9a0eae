package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"civiclink/internal/access"
	"civiclink/internal/platform/postgres"
	"civiclink/internal/users/models"
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
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, email, phone, password_hash, full_name, profile_picture, district, city,
	role, status, ministry_id, ngo_id, created_at, last_login_at`

// Create maps a duplicate id, email or phone to sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err := s.db.ExecContext(ctx, query, userArgs(u)...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return findUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String())
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func findUser(ctx context.Context, q querier, query string, args ...any) (*models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.User, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC, id`
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
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Execute locks the row with SELECT … FOR UPDATE for validate and mutate.
func (s *PostgresStore) Execute(
	ctx context.Context,
	userID id.UserID,
	validate func(*models.User) error,
	mutate func(*models.User),
) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin user tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	u, err := findUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID.String())
	if err != nil {
		return nil, err
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	mutate(u)
	query := `UPDATE users SET
		email = $2, phone = $3, password_hash = $4, full_name = $5, profile_picture = $6, district = $7,
		city = $8, role = $9, status = $10, ministry_id = $11, ngo_id = $12, created_at = $13, last_login_at = $14
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, userArgs(u)...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user tx: %w", err)
	}
	return u, nil
}

func userArgs(u *models.User) []any {
	var phone, district, city, ministryID, ngoID any
	if u.Phone != "" {
		phone = u.Phone
	}
	if u.Location != nil {
		district, city = u.Location.District, u.Location.City
	}
	if u.MinistryID != nil {
		ministryID = u.MinistryID.String()
	}
	if u.NGOID != nil {
		ngoID = u.NGOID.String()
	}
	var lastLogin any
	if u.LastLoginAt != nil {
		lastLogin = *u.LastLoginAt
	}
	return []any{
		u.ID.String(), u.Email, phone, u.PasswordHash, u.FullName, u.ProfilePicture, district, city,
		string(u.Role), string(u.Status), ministryID, ngoID, u.CreatedAt, lastLogin,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		phone      sql.NullString
		district   sql.NullString
		city       sql.NullString
		role       string
		status     string
		ministryID uuid.NullUUID
		ngoID      uuid.NullUUID
		lastLogin  sql.NullTime
	)
	err := row.Scan(
		(*uuid.UUID)(&u.ID), &u.Email, &phone, &u.PasswordHash, &u.FullName, &u.ProfilePicture, &district, &city,
		&role, &status, &ministryID, &ngoID, &u.CreatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.Role = access.Role(role)
	u.Status = access.Status(status)
	if district.Valid || city.Valid {
		u.Location = &models.Location{District: district.String, City: city.String}
	}
	if ministryID.Valid {
		m := id.MinistryID(ministryID.UUID)
		u.MinistryID = &m
	}
	if ngoID.Valid {
		n := id.NGOID(ngoID.UUID)
		u.NGOID = &n
	}
	if lastLogin.Valid {
		t := lastLogin.Time.In(time.UTC)
		u.LastLoginAt = &t
	}
	return &u, nil
}
