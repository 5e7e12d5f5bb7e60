package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/directory"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity domain.Identity
}

// AuthMiddleware validates bearer tokens and loads principals through the
// username directory.
type AuthMiddleware struct {
	tokens    *TokenManager
	directory directory.Directory
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, dir directory.Directory) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, directory: dir}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	identity, err := m.directory.ResolveByID(c.Context(), claims.SubjectID)
	if err != nil {
		return apperrors.NewUnauthorized("user not found")
	}
	if identity.Role != claims.Role {
		return apperrors.NewUnauthorized("token role mismatch")
	}

	c.Locals(principalKey, &Principal{Identity: *identity})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
