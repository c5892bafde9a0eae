package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"civiclink/internal/notifications/models"
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

const notificationColumns = `id, user_id, type, title, message, issue_id, read, created_at`

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	var issueID any
	if n.IssueID != nil {
		issueID = n.IssueID.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID.String(), n.UserID.String(), string(n.Type), n.Title, n.Message, issueID, n.Read, n.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Notification, int, error) {
	where := ` WHERE user_id = $1`
	if filter.UnreadOnly {
		where += ` AND NOT read`
	}
	args := []any{filter.UserID.String()}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + where + ` ORDER BY created_at DESC, id`
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
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, userID id.UserID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one notification owned by userID. Another user's
// notification is reported as not found.
func (s *PostgresStore) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) (*models.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2 RETURNING `+notificationColumns,
		notificationID.String(), userID.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID.String())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		notificationID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteRead(ctx context.Context, userID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1 AND read`, userID.String())
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n       models.Notification
		typ     string
		issueID uuid.NullUUID
	)
	err := row.Scan((*uuid.UUID)(&n.ID), (*uuid.UUID)(&n.UserID), &typ, &n.Title, &n.Message, &issueID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = models.Type(typ)
	if issueID.Valid {
		v := id.IssueID(issueID.UUID)
		n.IssueID = &v
	}
	return &n, nil
}
