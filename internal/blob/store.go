// Package blob provides an opaque content store keyed by id, backing
// query attachments. The interface mirrors what the query pipeline needs:
// upload before the query row is written, download for serving, delete on
// query removal.
package blob

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Blob is one stored file with its metadata.
type Blob struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// Store abstracts blob persistence so tests can substitute fakes.
type Store interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	Download(ctx context.Context, id string) (*Blob, error)
	Delete(ctx context.Context, id string) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a bytea table.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	id := uuid.NewString()
	const stmt = `
        INSERT INTO blobs (id, file_name, content_type, size_bytes, data)
        VALUES ($1,$2,$3,$4,$5)`
	if _, err := s.pool.Exec(ctx, stmt, id, fileName, contentType, int64(len(data)), data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *postgresStore) Download(ctx context.Context, id string) (*Blob, error) {
	const stmt = `
        SELECT id, file_name, content_type, size_bytes, data
        FROM blobs WHERE id=$1`
	var b Blob
	if err := s.pool.QueryRow(ctx, stmt, id).Scan(
		&b.ID,
		&b.FileName,
		&b.ContentType,
		&b.Size,
		&b.Data,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *postgresStore) Delete(ctx context.Context, id string) error {
	const stmt = `DELETE FROM blobs WHERE id=$1`
	_, err := s.pool.Exec(ctx, stmt, id)
	return err
}
