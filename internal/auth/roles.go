package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// RequireStudent ensures a student is authenticated.
func RequireStudent() fiber.Handler {
	return RequireRole(domain.RoleStudent)
}

// RequireFaculty ensures a faculty member is authenticated. Faculty-only
// routes (status updates, deletion) gate through this.
func RequireFaculty() fiber.Handler {
	return RequireRole(domain.RoleFaculty)
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Identity.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (student or faculty).
func RequireAnyRole() fiber.Handler {
	return RequireRole()
}
