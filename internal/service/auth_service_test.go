package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
)

type inMemStudentRepo struct {
	byUsername map[string]*domain.Student
	byEmail    map[string]*domain.Student
}

func newInMemStudentRepo() *inMemStudentRepo {
	return &inMemStudentRepo{byUsername: map[string]*domain.Student{}, byEmail: map[string]*domain.Student{}}
}

func (r *inMemStudentRepo) Create(_ context.Context, s *domain.Student) error {
	s.ID = "stu-" + s.Username
	r.byUsername[s.Username] = s
	r.byEmail[s.Email] = s
	return nil
}

func (r *inMemStudentRepo) Update(context.Context, *domain.Student) error { return nil }

func (r *inMemStudentRepo) GetByID(context.Context, string) (*domain.Student, error) {
	return nil, pgx.ErrNoRows
}

func (r *inMemStudentRepo) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	if s, ok := r.byEmail[email]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *inMemStudentRepo) GetByUsername(_ context.Context, username string) (*domain.Student, error) {
	if s, ok := r.byUsername[username]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *inMemStudentRepo) FindByUsernames(context.Context, []string) ([]domain.Student, error) {
	return nil, nil
}

func (r *inMemStudentRepo) FindByIDs(context.Context, []string) ([]domain.Student, error) {
	return nil, nil
}

func (r *inMemStudentRepo) SearchByUsernamePrefix(context.Context, string, int) ([]domain.Student, error) {
	return nil, nil
}

type inMemFacultyRepo struct {
	byUsername map[string]*domain.Faculty
	byEmail    map[string]*domain.Faculty
}

func newInMemFacultyRepo() *inMemFacultyRepo {
	return &inMemFacultyRepo{byUsername: map[string]*domain.Faculty{}, byEmail: map[string]*domain.Faculty{}}
}

func (r *inMemFacultyRepo) Create(_ context.Context, f *domain.Faculty) error {
	f.ID = "fac-" + f.Username
	r.byUsername[f.Username] = f
	r.byEmail[f.Email] = f
	return nil
}

func (r *inMemFacultyRepo) Update(context.Context, *domain.Faculty) error { return nil }

func (r *inMemFacultyRepo) GetByID(context.Context, string) (*domain.Faculty, error) {
	return nil, pgx.ErrNoRows
}

func (r *inMemFacultyRepo) GetByEmail(_ context.Context, email string) (*domain.Faculty, error) {
	if f, ok := r.byEmail[email]; ok {
		return f, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *inMemFacultyRepo) GetByUsername(_ context.Context, username string) (*domain.Faculty, error) {
	if f, ok := r.byUsername[username]; ok {
		return f, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *inMemFacultyRepo) FindByUsernames(context.Context, []string) ([]domain.Faculty, error) {
	return nil, nil
}

func (r *inMemFacultyRepo) FindByIDs(context.Context, []string) ([]domain.Faculty, error) {
	return nil, nil
}

func (r *inMemFacultyRepo) SearchByUsernamePrefix(context.Context, string, int) ([]domain.Faculty, error) {
	return nil, nil
}

func newAuthService() (*service.AuthService, *inMemStudentRepo, *inMemFacultyRepo) {
	students := newInMemStudentRepo()
	faculty := newInMemFacultyRepo()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}}
	return service.NewAuthService(cfg, service.AuthDependencies{
		StudentRepo: students,
		FacultyRepo: faculty,
	}), students, faculty
}

func TestRegisterStudentCanonicalizesUsername(t *testing.T) {
	svc, students, _ := newAuthService()

	student, token, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
		Name: "Alice", Username: "  Alice_01 ", Email: "a@x.edu", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}
	if student.Username != "alice_01" {
		t.Errorf("username = %q, want lowercase trimmed", student.Username)
	}
	if token == "" {
		t.Error("no token issued")
	}
	if _, ok := students.byUsername["alice_01"]; !ok {
		t.Error("student not persisted under canonical username")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Role != domain.RoleStudent || claims.SubjectID != student.ID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterStudentRejectsBadUsername(t *testing.T) {
	svc, _, _ := newAuthService()

	for _, username := range []string{"ab", "has space", "dash-ed", ""} {
		if _, _, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
			Name: "X", Username: username, Email: "x@x.edu", Password: "hunter22",
		}); err == nil {
			t.Errorf("username %q accepted", username)
		}
	}
}

func TestRegisterStudentConflicts(t *testing.T) {
	svc, _, _ := newAuthService()

	first := service.StudentSignupInput{Name: "A", Username: "alice", Email: "a@x.edu", Password: "hunter22"}
	if _, _, _, err := svc.RegisterStudent(context.Background(), first); err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}

	if _, _, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
		Name: "B", Username: "alice", Email: "b@x.edu", Password: "hunter22",
	}); err == nil {
		t.Error("duplicate username accepted")
	}
	if _, _, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
		Name: "B", Username: "bob99", Email: "a@x.edu", Password: "hunter22",
	}); err == nil {
		t.Error("duplicate email accepted")
	}
}

func TestStudentUsernameDoesNotBlockFaculty(t *testing.T) {
	svc, _, _ := newAuthService()

	if _, _, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
		Name: "A", Username: "shared", Email: "a@x.edu", Password: "hunter22",
	}); err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}
	if _, _, _, err := svc.RegisterFaculty(context.Background(), service.FacultySignupInput{
		Name: "F", Username: "shared", Email: "f@x.edu", Password: "hunter22",
		Department: "CS", Designation: "Professor",
	}); err != nil {
		t.Fatalf("RegisterFaculty with the same handle in the other pool: %v", err)
	}
}

func TestLoginStudent(t *testing.T) {
	svc, _, _ := newAuthService()
	if _, _, _, err := svc.RegisterStudent(context.Background(), service.StudentSignupInput{
		Name: "A", Username: "alice", Email: "a@x.edu", Password: "hunter22",
	}); err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}

	student, token, _, err := svc.LoginStudent(context.Background(), "a@x.edu", "hunter22")
	if err != nil {
		t.Fatalf("LoginStudent: %v", err)
	}
	if student.Username != "alice" || token == "" {
		t.Errorf("login result student=%+v token=%q", student, token)
	}

	if _, _, _, err := svc.LoginStudent(context.Background(), "a@x.edu", "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
	if _, _, _, err := svc.LoginStudent(context.Background(), "nobody@x.edu", "hunter22"); err == nil {
		t.Error("unknown email accepted")
	}
}

func TestLoginFacultyIssuesFacultyRole(t *testing.T) {
	svc, _, _ := newAuthService()
	if _, _, _, err := svc.RegisterFaculty(context.Background(), service.FacultySignupInput{
		Name: "Prof", Username: "prof.khan", Email: "p@x.edu", Password: "hunter22",
		Department: "CS", Designation: "Professor",
	}); err != nil {
		t.Fatalf("RegisterFaculty: %v", err)
	}

	_, token, _, err := svc.LoginFaculty(context.Background(), "p@x.edu", "hunter22")
	if err != nil {
		t.Fatalf("LoginFaculty: %v", err)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Role != domain.RoleFaculty {
		t.Errorf("role = %s, want faculty", claims.Role)
	}
}
