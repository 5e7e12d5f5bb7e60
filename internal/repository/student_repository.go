package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// StudentRepository defines persistence access for students.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	GetByUsername(ctx context.Context, username string) (*domain.Student, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]domain.Student, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Student, error)
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]domain.Student, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository returns a Postgres-backed implementation.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

const studentColumns = `id, name, username, email, password_hash, hostel, room_no, year, phone, created_at, updated_at`

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (name, username, email, password_hash, hostel, room_no, year, phone)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		student.Name,
		strings.ToLower(student.Username),
		student.Email,
		student.PasswordHash,
		student.Hostel,
		student.RoomNo,
		student.Year,
		student.Phone,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
}

func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	const query = `
        UPDATE students SET name=$1, email=$2, password_hash=$3, hostel=$4, room_no=$5, year=$6, phone=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		student.Name,
		student.Email,
		student.PasswordHash,
		student.Hostel,
		student.RoomNo,
		student.Year,
		student.Phone,
		student.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE email=$1`, email)
}

func (r *studentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE username=LOWER($1)`, username)
}

func (r *studentRepository) FindByUsernames(ctx context.Context, usernames []string) ([]domain.Student, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(usernames))
	for i, u := range usernames {
		lowered[i] = strings.ToLower(u)
	}
	const query = `SELECT ` + studentColumns + ` FROM students WHERE username = ANY($1)`
	rows, err := r.pool.Query(ctx, query, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudents(rows)
}

func (r *studentRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + studentColumns + ` FROM students WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudents(rows)
}

func (r *studentRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]domain.Student, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT ` + studentColumns + ` FROM students WHERE username LIKE $1 ORDER BY username LIMIT $2`
	rows, err := r.pool.Query(ctx, query, likePrefix(prefix), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudents(rows)
}

func scanStudents(rows pgx.Rows) ([]domain.Student, error) {
	var result []domain.Student
	for rows.Next() {
		var student domain.Student
		if err := scanStudent(rows, &student); err != nil {
			return nil, err
		}
		result = append(result, student)
	}
	return result, rows.Err()
}

func (r *studentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Student, error) {
	var student domain.Student
	if err := scanStudent(r.pool.QueryRow(ctx, query, arg), &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func scanStudent(row pgx.Row, student *domain.Student) error {
	return row.Scan(
		&student.ID,
		&student.Name,
		&student.Username,
		&student.Email,
		&student.PasswordHash,
		&student.Hostel,
		&student.RoomNo,
		&student.Year,
		&student.Phone,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
}

// likePrefix escapes LIKE metacharacters so user input only ever matches
// as a literal prefix.
func likePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(strings.ToLower(prefix)) + "%"
}
