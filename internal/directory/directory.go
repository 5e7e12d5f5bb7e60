// Package directory resolves display handles and ids to identities across
// the two user pools (students and faculty).
package directory

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// Directory is the username lookup contract consumed by the mention
// extractor, auth middleware, and read-side projections.
type Directory interface {
	ResolveByHandle(ctx context.Context, handle string) (*domain.Identity, error)
	// ResolveManyByHandles returns a map keyed by canonical lowercase
	// handle; absent handles are simply missing from the map.
	ResolveManyByHandles(ctx context.Context, handles []string) (map[string]domain.Identity, error)
	ResolveByID(ctx context.Context, id string) (*domain.Identity, error)
	ResolveManyByIDs(ctx context.Context, ids []string) (map[string]domain.Identity, error)
	// SearchByPrefix returns case-insensitive prefix matches, students
	// first then faculty, capped at limit per pool.
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Identity, error)
}

type service struct {
	students repository.StudentRepository
	faculty  repository.FacultyRepository
}

// New builds a Directory over both identity pools.
func New(students repository.StudentRepository, faculty repository.FacultyRepository) Directory {
	return &service{students: students, faculty: faculty}
}

func (s *service) ResolveByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	resolved, err := s.ResolveManyByHandles(ctx, []string{handle})
	if err != nil {
		return nil, err
	}
	identity, ok := resolved[strings.ToLower(handle)]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"username": handle})
	}
	return &identity, nil
}

func (s *service) ResolveManyByHandles(ctx context.Context, handles []string) (map[string]domain.Identity, error) {
	result := make(map[string]domain.Identity, len(handles))
	if len(handles) == 0 {
		return result, nil
	}

	students, err := s.students.FindByUsernames(ctx, handles)
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculty.FindByUsernames(ctx, handles)
	if err != nil {
		return nil, err
	}

	// Students first, faculty second: on the (unenforced) cross-pool handle
	// collision the faculty entry wins.
	for i := range students {
		result[strings.ToLower(students[i].Username)] = students[i].AsIdentity()
	}
	for i := range faculty {
		result[strings.ToLower(faculty[i].Username)] = faculty[i].AsIdentity()
	}
	return result, nil
}

func (s *service) ResolveByID(ctx context.Context, id string) (*domain.Identity, error) {
	student, err := s.students.GetByID(ctx, id)
	if err == nil {
		identity := student.AsIdentity()
		return &identity, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}
	member, err := s.faculty.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	identity := member.AsIdentity()
	return &identity, nil
}

func (s *service) ResolveManyByIDs(ctx context.Context, ids []string) (map[string]domain.Identity, error) {
	result := make(map[string]domain.Identity, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	students, err := s.students.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculty.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range students {
		result[students[i].ID] = students[i].AsIdentity()
	}
	for i := range faculty {
		result[faculty[i].ID] = faculty[i].AsIdentity()
	}
	return result, nil
}

func (s *service) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Identity, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	students, err := s.students.SearchByUsernamePrefix(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculty.SearchByUsernamePrefix(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Identity, 0, len(students)+len(faculty))
	for i := range students {
		result = append(result, students[i].AsIdentity())
	}
	for i := range faculty {
		result = append(result, faculty[i].AsIdentity())
	}
	return result, nil
}
