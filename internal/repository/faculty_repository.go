package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// FacultyRepository defines persistence access for faculty members.
type FacultyRepository interface {
	Create(ctx context.Context, faculty *domain.Faculty) error
	Update(ctx context.Context, faculty *domain.Faculty) error
	GetByID(ctx context.Context, id string) (*domain.Faculty, error)
	GetByEmail(ctx context.Context, email string) (*domain.Faculty, error)
	GetByUsername(ctx context.Context, username string) (*domain.Faculty, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]domain.Faculty, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Faculty, error)
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]domain.Faculty, error)
}

type facultyRepository struct {
	pool *pgxpool.Pool
}

// NewFacultyRepository returns a Postgres-backed implementation.
func NewFacultyRepository(pool *pgxpool.Pool) FacultyRepository {
	return &facultyRepository{pool: pool}
}

const facultyColumns = `id, name, username, email, password_hash, department, designation, phone, created_at, updated_at`

func (r *facultyRepository) Create(ctx context.Context, faculty *domain.Faculty) error {
	const query = `
        INSERT INTO faculty (name, username, email, password_hash, department, designation, phone)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		faculty.Name,
		strings.ToLower(faculty.Username),
		faculty.Email,
		faculty.PasswordHash,
		faculty.Department,
		faculty.Designation,
		faculty.Phone,
	).Scan(&faculty.ID, &faculty.CreatedAt, &faculty.UpdatedAt)
}

func (r *facultyRepository) Update(ctx context.Context, faculty *domain.Faculty) error {
	const query = `
        UPDATE faculty SET name=$1, email=$2, password_hash=$3, department=$4, designation=$5, phone=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		faculty.Name,
		faculty.Email,
		faculty.PasswordHash,
		faculty.Department,
		faculty.Designation,
		faculty.Phone,
		faculty.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *facultyRepository) GetByID(ctx context.Context, id string) (*domain.Faculty, error) {
	return r.fetchSingle(ctx, `SELECT `+facultyColumns+` FROM faculty WHERE id=$1`, id)
}

func (r *facultyRepository) GetByEmail(ctx context.Context, email string) (*domain.Faculty, error) {
	return r.fetchSingle(ctx, `SELECT `+facultyColumns+` FROM faculty WHERE email=$1`, email)
}

func (r *facultyRepository) GetByUsername(ctx context.Context, username string) (*domain.Faculty, error) {
	return r.fetchSingle(ctx, `SELECT `+facultyColumns+` FROM faculty WHERE username=LOWER($1)`, username)
}

func (r *facultyRepository) FindByUsernames(ctx context.Context, usernames []string) ([]domain.Faculty, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(usernames))
	for i, u := range usernames {
		lowered[i] = strings.ToLower(u)
	}
	const query = `SELECT ` + facultyColumns + ` FROM faculty WHERE username = ANY($1)`
	rows, err := r.pool.Query(ctx, query, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFaculty(rows)
}

func (r *facultyRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Faculty, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + facultyColumns + ` FROM faculty WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFaculty(rows)
}

func (r *facultyRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]domain.Faculty, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT ` + facultyColumns + ` FROM faculty WHERE username LIKE $1 ORDER BY username LIMIT $2`
	rows, err := r.pool.Query(ctx, query, likePrefix(prefix), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFaculty(rows)
}

func scanFaculty(rows pgx.Rows) ([]domain.Faculty, error) {
	var result []domain.Faculty
	for rows.Next() {
		var member domain.Faculty
		if err := scanFacultyRow(rows, &member); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}

func (r *facultyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Faculty, error) {
	var member domain.Faculty
	if err := scanFacultyRow(r.pool.QueryRow(ctx, query, arg), &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func scanFacultyRow(row pgx.Row, member *domain.Faculty) error {
	return row.Scan(
		&member.ID,
		&member.Name,
		&member.Username,
		&member.Email,
		&member.PasswordHash,
		&member.Department,
		&member.Designation,
		&member.Phone,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
}
