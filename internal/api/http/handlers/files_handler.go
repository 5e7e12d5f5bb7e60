package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/SAGARSINGH-1/HostelCMS/internal/blob"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// FilesHandler serves query attachments by blob id.
type FilesHandler struct {
	blobs blob.Store
}

// NewFilesHandler constructs handler.
func NewFilesHandler(blobs blob.Store) *FilesHandler {
	return &FilesHandler{blobs: blobs}
}

// Download GET /files/:id streams the stored bytes with the original
// content type and filename.
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	stored, err := h.blobs.Download(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("file", nil)
		}
		return err
	}

	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+stored.FileName+`"`)
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(stored.Size, 10))
	return c.Send(stored.Data)
}
