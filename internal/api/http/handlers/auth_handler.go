package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/api/dto"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// AuthHandler exposes signup and login for both identity pools.
type AuthHandler struct {
	service  *service.AuthService
	validate *Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validate *Validator) *AuthHandler {
	return &AuthHandler{service: authService, validate: validate}
}

// StudentSignup POST /auth/student/signup.
func (h *AuthHandler) StudentSignup(c *fiber.Ctx) error {
	var req dto.StudentSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	student, token, expiresAt, err := h.service.RegisterStudent(c.Context(), service.StudentSignupInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Hostel:   req.Hostel,
		RoomNo:   req.RoomNo,
		Year:     req.Year,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": authPayload(student.AsIdentity(), token, expiresAt),
	})
}

// StudentLogin POST /auth/student/login.
func (h *AuthHandler) StudentLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	student, token, expiresAt, err := h.service.LoginStudent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authPayload(student.AsIdentity(), token, expiresAt)})
}

// FacultySignup POST /auth/faculty/signup.
func (h *AuthHandler) FacultySignup(c *fiber.Ctx) error {
	var req dto.FacultySignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	faculty, token, expiresAt, err := h.service.RegisterFaculty(c.Context(), service.FacultySignupInput{
		Name:        req.Name,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Department:  req.Department,
		Designation: req.Designation,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": authPayload(faculty.AsIdentity(), token, expiresAt),
	})
}

// FacultyLogin POST /auth/faculty/login.
func (h *AuthHandler) FacultyLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	faculty, token, expiresAt, err := h.service.LoginFaculty(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authPayload(faculty.AsIdentity(), token, expiresAt)})
}

func authPayload(identity domain.Identity, token string, expiresAt time.Time) fiber.Map {
	return fiber.Map{
		"user": dto.IdentityResponse{
			ID:       identity.ID,
			Role:     identity.Role,
			Username: identity.Username,
			Name:     identity.DisplayName,
		},
		"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	}
}
