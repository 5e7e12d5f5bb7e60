package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// AuthService coordinates signup and login for both identity pools.
type AuthService struct {
	students   repository.StudentRepository
	faculty    repository.FacultyRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	StudentRepo repository.StudentRepository
	FacultyRepo repository.FacultyRepository
}

// StudentSignupInput carries student registration fields.
type StudentSignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Hostel   string
	RoomNo   string
	Year     *int
	Phone    string
}

// FacultySignupInput carries faculty registration fields.
type FacultySignupInput struct {
	Name        string
	Username    string
	Email       string
	Password    string
	Department  string
	Designation string
	Phone       string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		students:   deps.StudentRepo,
		faculty:    deps.FacultyRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterStudent creates a new student account.
func (s *AuthService) RegisterStudent(ctx context.Context, input StudentSignupInput) (*domain.Student, string, time.Time, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !domain.ValidUsername(username) {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid username", map[string]any{"username": input.Username})
	}
	if _, err := s.students.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already taken", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}
	if _, err := s.students.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	student := &domain.Student{
		Name:         input.Name,
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
		Hostel:       input.Hostel,
		RoomNo:       input.RoomNo,
		Year:         input.Year,
		Phone:        input.Phone,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(student.ID, domain.RoleStudent)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return student, token, exp, nil
}

// LoginStudent authenticates a student by email.
func (s *AuthService) LoginStudent(ctx context.Context, email, password string) (*domain.Student, string, time.Time, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(student.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(student.ID, domain.RoleStudent)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return student, token, exp, nil
}

// RegisterFaculty creates a new faculty account.
func (s *AuthService) RegisterFaculty(ctx context.Context, input FacultySignupInput) (*domain.Faculty, string, time.Time, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !domain.ValidUsername(username) {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid username", map[string]any{"username": input.Username})
	}
	if _, err := s.faculty.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already taken", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}
	if _, err := s.faculty.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	member := &domain.Faculty{
		Name:         input.Name,
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
		Department:   input.Department,
		Designation:  input.Designation,
		Phone:        input.Phone,
	}
	if err := s.faculty.Create(ctx, member); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(member.ID, domain.RoleFaculty)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return member, token, exp, nil
}

// LoginFaculty authenticates a faculty member by email.
func (s *AuthService) LoginFaculty(ctx context.Context, email, password string) (*domain.Faculty, string, time.Time, error) {
	member, err := s.faculty.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(member.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(member.ID, domain.RoleFaculty)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return member, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
