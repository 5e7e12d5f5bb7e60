package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/api/dto"
	"github.com/SAGARSINGH-1/HostelCMS/internal/directory"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

const searchLimit = 10

// UsernamesHandler exposes directory lookups used by the mention UI.
type UsernamesHandler struct {
	directory directory.Directory
	validate  *Validator
}

// NewUsernamesHandler constructs handler.
func NewUsernamesHandler(dir directory.Directory, validate *Validator) *UsernamesHandler {
	return &UsernamesHandler{directory: dir, validate: validate}
}

// GetByID GET /usernames/:id.
func (h *UsernamesHandler) GetByID(c *fiber.Ctx) error {
	identity, err := h.directory.ResolveByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": identityResponse(*identity)})
}

// BatchByIDs POST /usernames/batch. Unknown ids are omitted from the result.
func (h *UsernamesHandler) BatchByIDs(c *fiber.Ctx) error {
	var req dto.BatchIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	resolved, err := h.directory.ResolveManyByIDs(c.Context(), req.IDs)
	if err != nil {
		return err
	}

	items := make([]dto.IdentityResponse, 0, len(resolved))
	for _, id := range req.IDs {
		if identity, ok := resolved[id]; ok {
			items = append(items, identityResponse(identity))
		}
	}
	return c.JSON(fiber.Map{"data": items})
}

// Search GET /usernames/search?q=pre. Prefixes shorter than two characters
// return an empty list instead of scanning both pools.
func (h *UsernamesHandler) Search(c *fiber.Ctx) error {
	prefix := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if len(prefix) < 2 {
		return c.JSON(fiber.Map{"data": []dto.IdentityResponse{}})
	}

	identities, err := h.directory.SearchByPrefix(c.Context(), prefix, searchLimit)
	if err != nil {
		return err
	}

	items := make([]dto.IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		items = append(items, identityResponse(identity))
	}
	return c.JSON(fiber.Map{"data": items})
}

func identityResponse(identity domain.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:       identity.ID,
		Role:     identity.Role,
		Username: identity.Username,
		Name:     identity.DisplayName,
	}
}
