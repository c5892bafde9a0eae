package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	"civiclink/pkg/platform/sentinel"
)

// PostgresStore persists issues in PostgreSQL. Set-valued fields are TEXT[]
// columns; the response and claim sub-documents are JSONB. claim_ngo_id
// mirrors ngo_claim->ngo_id for indexed filtering.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const issueColumns = `id, reporter_id, title, description, category, address, district, latitude, longitude,
	images, tagged_ministries, verified_by, verification_count, status, priority, is_crisis,
	government_response, ngo_claim, solution_verified, solution_verified_at, reported_from, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, issue *models.Issue) error {
	args, err := issueArgs(issue)
	if err != nil {
		return err
	}
	query := `INSERT INTO issues (` + issueColumns + `, claim_ngo_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, issueID id.IssueID) (*models.Issue, error) {
	return findIssue(ctx, s.db, issueID, false)
}

func findIssue(ctx context.Context, q querier, issueID id.IssueID, forUpdate bool) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	issue, err := scanIssue(q.QueryRowContext(ctx, query, issueID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Issue, int, error) {
	where, args := whereClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	order := ` ORDER BY created_at DESC, id`
	if filter.Sort == models.SortMostVerified {
		order = ` ORDER BY verification_count DESC, created_at DESC, id`
	}
	query := `SELECT ` + issueColumns + ` FROM issues` + where + order
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
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*models.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate issues: %w", err)
	}
	return issues, total, nil
}

var groupColumns = map[models.GroupBy]string{
	models.GroupByCategory: "category",
	models.GroupByDistrict: "district",
	models.GroupByStatus:   "status",
}

func (s *PostgresStore) CountBy(ctx context.Context, group models.GroupBy, filter models.Filter) (map[string]int, error) {
	col, ok := groupColumns[group]
	if !ok {
		return nil, fmt.Errorf("unsupported grouping %q", group)
	}
	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT `+col+`, COUNT(*) FROM issues`+where+` GROUP BY `+col, args...)
	if err != nil {
		return nil, fmt.Errorf("count issues by %s: %w", col, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan issue count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, issueID id.IssueID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, issueID.String())
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute runs validate and mutate against a row locked with SELECT … FOR
// UPDATE inside one transaction, so concurrent callers on the same issue
// observe each other's writes.
func (s *PostgresStore) Execute(
	ctx context.Context,
	issueID id.IssueID,
	validate func(*models.Issue) error,
	mutate func(*models.Issue),
) (*models.Issue, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin issue tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	issue, err := findIssue(ctx, tx, issueID, true)
	if err != nil {
		return nil, err
	}
	if err := validate(issue); err != nil {
		return nil, err
	}
	mutate(issue)
	if err := updateIssue(ctx, tx, issue); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit issue tx: %w", err)
	}
	return issue, nil
}

func updateIssue(ctx context.Context, q querier, issue *models.Issue) error {
	args, err := issueArgs(issue)
	if err != nil {
		return err
	}
	query := `UPDATE issues SET
		reporter_id = $2, title = $3, description = $4, category = $5, address = $6, district = $7,
		latitude = $8, longitude = $9, images = $10, tagged_ministries = $11, verified_by = $12,
		verification_count = $13, status = $14, priority = $15, is_crisis = $16,
		government_response = $17, ngo_claim = $18, solution_verified = $19, solution_verified_at = $20,
		reported_from = $21, created_at = $22, updated_at = $23, claim_ngo_id = $24
		WHERE id = $1`
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCrisis(ctx context.Context, districts []string, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET is_crisis = TRUE, priority = $1, updated_at = $2
		 WHERE district = ANY($3) AND status = ANY($4)`,
		string(models.PriorityCritical), now, pq.Array(districts), pq.Array(statusStrings(models.OpenStatuses())),
	)
	if err != nil {
		return 0, fmt.Errorf("mark crisis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark crisis rows: %w", err)
	}
	return int(n), nil
}

func whereClause(f models.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if f.Category != "" {
		add("category = ?", string(f.Category))
	}
	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			cats[i] = string(c)
		}
		add("category = ANY(?)", pq.Array(cats))
	}
	if len(f.Statuses) > 0 {
		add("status = ANY(?)", pq.Array(statusStrings(f.Statuses)))
	}
	if f.District != "" {
		add("lower(district) = lower(?)", f.District)
	}
	if f.IsCrisis != nil {
		add("is_crisis = ?", *f.IsCrisis)
	}
	if f.MinistryID != nil {
		add("? = ANY(tagged_ministries)", f.MinistryID.String())
	}
	if f.NGOID != nil {
		add("claim_ngo_id = ?", f.NGOID.String())
	}
	if f.ReporterID != nil {
		add("reporter_id = ?", f.ReporterID.String())
	}
	if f.Unclaimed {
		conds = append(conds, "ngo_claim IS NULL")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("(title ILIKE ? OR description ILIKE ?)", "%"+escapeLike(q)+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func issueArgs(issue *models.Issue) ([]any, error) {
	resp, err := marshalNullable(issue.GovernmentResponse)
	if err != nil {
		return nil, fmt.Errorf("encode government response: %w", err)
	}
	claim, err := marshalNullable(issue.NGOClaim)
	if err != nil {
		return nil, fmt.Errorf("encode ngo claim: %w", err)
	}
	var claimNGO any
	if issue.NGOClaim != nil {
		claimNGO = issue.NGOClaim.NGOID.String()
	}
	var solvedAt any
	if issue.SolutionVerifiedAt != nil {
		solvedAt = *issue.SolutionVerifiedAt
	}

	return []any{
		issue.ID.String(), issue.ReporterID.String(), issue.Title, issue.Description, string(issue.Category),
		issue.Location.Address, issue.Location.District, issue.Location.Coordinates.Lat, issue.Location.Coordinates.Lng,
		pq.Array(issue.Images), pq.Array(ministryStrings(issue.TaggedMinistries)), pq.Array(userStrings(issue.VerifiedBy)),
		issue.VerificationCount, string(issue.Status), string(issue.Priority), issue.IsCrisis,
		resp, claim, issue.SolutionVerified, solvedAt, issue.ReportedFrom, issue.CreatedAt, issue.UpdatedAt,
		claimNGO,
	}, nil
}

// marshalNullable encodes a sub-document for a JSONB column; nil maps to NULL.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var (
		issue       models.Issue
		category    string
		status      string
		priority    string
		images      pq.StringArray
		tagged      pq.StringArray
		verifiedBy  pq.StringArray
		responseRaw []byte
		claimRaw    []byte
		solvedAt    sql.NullTime
	)
	err := row.Scan(
		(*uuid.UUID)(&issue.ID), (*uuid.UUID)(&issue.ReporterID), &issue.Title, &issue.Description, &category,
		&issue.Location.Address, &issue.Location.District, &issue.Location.Coordinates.Lat, &issue.Location.Coordinates.Lng,
		&images, &tagged, &verifiedBy, &issue.VerificationCount, &status, &priority, &issue.IsCrisis,
		&responseRaw, &claimRaw, &issue.SolutionVerified, &solvedAt, &issue.ReportedFrom, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	issue.Category = models.Category(category)
	issue.Status = models.Status(status)
	issue.Priority = models.Priority(priority)
	issue.Images = []string(images)
	if issue.Images == nil {
		issue.Images = []string{}
	}
	if issue.TaggedMinistries, err = parseMinistries(tagged); err != nil {
		return nil, err
	}
	if issue.VerifiedBy, err = parseUsers(verifiedBy); err != nil {
		return nil, err
	}
	if len(responseRaw) > 0 {
		issue.GovernmentResponse = &models.GovernmentResponse{}
		if err := json.Unmarshal(responseRaw, issue.GovernmentResponse); err != nil {
			return nil, fmt.Errorf("decode government response: %w", err)
		}
	}
	if len(claimRaw) > 0 {
		issue.NGOClaim = &models.NGOClaim{}
		if err := json.Unmarshal(claimRaw, issue.NGOClaim); err != nil {
			return nil, fmt.Errorf("decode ngo claim: %w", err)
		}
	}
	if solvedAt.Valid {
		t := solvedAt.Time
		issue.SolutionVerifiedAt = &t
	}
	return &issue, nil
}

func ministryStrings(ids []id.MinistryID) []string {
	out := make([]string, len(ids))
	for i, m := range ids {
		out[i] = m.String()
	}
	return out
}

func userStrings(ids []id.UserID) []string {
	out := make([]string, len(ids))
	for i, u := range ids {
		out[i] = u.String()
	}
	return out
}

func parseMinistries(raw []string) ([]id.MinistryID, error) {
	out := make([]id.MinistryID, 0, len(raw))
	for _, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse tagged ministry: %w", err)
		}
		out = append(out, id.MinistryID(u))
	}
	return out, nil
}

func parseUsers(raw []string) ([]id.UserID, error) {
	out := make([]id.UserID, 0, len(raw))
	for _, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse verifier: %w", err)
		}
		out = append(out, id.UserID(u))
	}
	return out, nil
}
