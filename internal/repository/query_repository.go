package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// TagStatusCount is one cell of the per-tag per-status breakdown.
type TagStatusCount struct {
	Tag    domain.QueryTag    `json:"tag"`
	Status domain.QueryStatus `json:"status"`
	Count  int64              `json:"count"`
}

// QueryStats aggregates counts for the stats endpoint.
type QueryStats struct {
	Total    int64            `json:"total"`
	Resolved int64            `json:"resolved"`
	Pending  int64            `json:"pending"`
	ByTags   []TagStatusCount `json:"by_tags"`
}

// QueryRepository encapsulates query persistence.
type QueryRepository interface {
	Create(ctx context.Context, query *domain.Query) error
	Update(ctx context.Context, query *domain.Query) error
	GetByID(ctx context.Context, id string) (*domain.Query, error)
	Delete(ctx context.Context, id string) (*domain.Query, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]domain.Query, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Query, error)
	Stats(ctx context.Context) (*QueryStats, error)
}

type queryRepository struct {
	pool *pgxpool.Pool
}

// NewQueryRepository instantiates repository.
func NewQueryRepository(pool *pgxpool.Pool) QueryRepository {
	return &queryRepository{pool: pool}
}

const queryColumns = `id, student_id, title, description, status, response, tags, mentions, status_history, attachments, created_at, updated_at`

func (r *queryRepository) Create(ctx context.Context, query *domain.Query) error {
	mentions, history, attachments, err := marshalQueryJSON(query)
	if err != nil {
		return err
	}
	const stmt = `
        INSERT INTO queries (student_id, title, description, status, response, tags, mentions, status_history, attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, stmt,
		query.StudentID,
		query.Title,
		query.Description,
		query.Status,
		query.Response,
		tagStrings(query.Tags),
		mentions,
		history,
		attachments,
	).Scan(&query.ID, &query.CreatedAt, &query.UpdatedAt)
}

func (r *queryRepository) Update(ctx context.Context, query *domain.Query) error {
	mentions, history, attachments, err := marshalQueryJSON(query)
	if err != nil {
		return err
	}
	const stmt = `
        UPDATE queries SET title=$1, description=$2, status=$3, response=$4, tags=$5,
            mentions=$6, status_history=$7, attachments=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, stmt,
		query.Title,
		query.Description,
		query.Status,
		query.Response,
		tagStrings(query.Tags),
		mentions,
		history,
		attachments,
		query.ID,
	).Scan(&query.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *queryRepository) GetByID(ctx context.Context, id string) (*domain.Query, error) {
	const stmt = `SELECT ` + queryColumns + ` FROM queries WHERE id=$1`
	return r.fetchSingle(ctx, r.pool.QueryRow(ctx, stmt, id))
}

// Delete removes the row and returns the deleted record so the caller can
// clean up attachment blobs.
func (r *queryRepository) Delete(ctx context.Context, id string) (*domain.Query, error) {
	const stmt = `DELETE FROM queries WHERE id=$1 RETURNING ` + queryColumns
	return r.fetchSingle(ctx, r.pool.QueryRow(ctx, stmt, id))
}

func (r *queryRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]domain.Query, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	stmt := fmt.Sprintf(`SELECT %s FROM queries WHERE student_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		queryColumns, limit, offset)
	rows, err := r.pool.Query(ctx, stmt, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQueries(rows)
}

func (r *queryRepository) ListLatest(ctx context.Context, limit int) ([]domain.Query, error) {
	if limit <= 0 {
		limit = 20
	}
	stmt := fmt.Sprintf(`SELECT %s FROM queries ORDER BY created_at DESC LIMIT %d`, queryColumns, limit)
	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQueries(rows)
}

func (r *queryRepository) Stats(ctx context.Context) (*QueryStats, error) {
	stats := &QueryStats{}
	const counts = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='resolved'),
               COUNT(*) FILTER (WHERE status='pending')
        FROM queries`
	if err := r.pool.QueryRow(ctx, counts).Scan(&stats.Total, &stats.Resolved, &stats.Pending); err != nil {
		return nil, err
	}

	const byTags = `
        SELECT tag, status, COUNT(*)
        FROM queries, UNNEST(tags) AS tag
        GROUP BY tag, status
        ORDER BY tag, status`
	rows, err := r.pool.Query(ctx, byTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cell TagStatusCount
		if err := rows.Scan(&cell.Tag, &cell.Status, &cell.Count); err != nil {
			return nil, err
		}
		stats.ByTags = append(stats.ByTags, cell)
	}
	return stats, rows.Err()
}

func (r *queryRepository) fetchSingle(_ context.Context, row pgx.Row) (*domain.Query, error) {
	var query domain.Query
	if err := scanQuery(row, &query); err != nil {
		return nil, err
	}
	return &query, nil
}

func scanQueries(rows pgx.Rows) ([]domain.Query, error) {
	var result []domain.Query
	for rows.Next() {
		var query domain.Query
		if err := scanQuery(rows, &query); err != nil {
			return nil, err
		}
		result = append(result, query)
	}
	return result, rows.Err()
}

func scanQuery(row pgx.Row, query *domain.Query) error {
	var (
		tags        []string
		mentions    []byte
		history     []byte
		attachments []byte
	)
	if err := row.Scan(
		&query.ID,
		&query.StudentID,
		&query.Title,
		&query.Description,
		&query.Status,
		&query.Response,
		&tags,
		&mentions,
		&history,
		&attachments,
		&query.CreatedAt,
		&query.UpdatedAt,
	); err != nil {
		return err
	}
	query.Tags = make([]domain.QueryTag, len(tags))
	for i, t := range tags {
		query.Tags[i] = domain.QueryTag(t)
	}
	if err := json.Unmarshal(mentions, &query.Mentions); err != nil {
		return fmt.Errorf("decode mentions: %w", err)
	}
	if err := json.Unmarshal(history, &query.StatusHistory); err != nil {
		return fmt.Errorf("decode status history: %w", err)
	}
	if err := json.Unmarshal(attachments, &query.Attachments); err != nil {
		return fmt.Errorf("decode attachments: %w", err)
	}
	return nil
}

func marshalQueryJSON(query *domain.Query) (mentions, history, attachments []byte, err error) {
	if mentions, err = json.Marshal(emptyIfNilMentions(query.Mentions)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode mentions: %w", err)
	}
	if history, err = json.Marshal(emptyIfNilHistory(query.StatusHistory)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode status history: %w", err)
	}
	if attachments, err = json.Marshal(emptyIfNilAttachments(query.Attachments)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode attachments: %w", err)
	}
	return mentions, history, attachments, nil
}

func tagStrings(tags []domain.QueryTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func emptyIfNilMentions(m []domain.Mention) []domain.Mention {
	if m == nil {
		return []domain.Mention{}
	}
	return m
}

func emptyIfNilHistory(h []domain.StatusTransition) []domain.StatusTransition {
	if h == nil {
		return []domain.StatusTransition{}
	}
	return h
}

func emptyIfNilAttachments(a []domain.Attachment) []domain.Attachment {
	if a == nil {
		return []domain.Attachment{}
	}
	return a
}
