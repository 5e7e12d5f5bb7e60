package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/api/dto"
	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// QueriesHandler manages query endpoints.
type QueriesHandler struct {
	service  *service.QueryService
	validate *Validator
	upload   config.UploadConfig
}

// NewQueriesHandler constructs handler.
func NewQueriesHandler(queryService *service.QueryService, validate *Validator, upload config.UploadConfig) *QueriesHandler {
	return &QueriesHandler{service: queryService, validate: validate, upload: upload}
}

// CreateQuery POST /queries (multipart form-data, files optional).
func (h *QueriesHandler) CreateQuery(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity.Role != domain.RoleStudent {
		return apperrors.NewUnauthorized("student required")
	}

	req := dto.CreateQueryRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        formTags(c),
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	files, err := h.collectUploads(c)
	if err != nil {
		return err
	}

	input := service.QueryCreateInput{
		StudentID:   principal.Identity.ID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        toTags(req.Tags),
		Files:       files,
	}
	query, err := h.service.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.queryResponse(c, query)})
}

// ListStudentQueries GET /queries/student/:studentId.
func (h *QueriesHandler) ListStudentQueries(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	queries, err := h.service.ListByStudent(c.Context(), studentID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.queryResponses(c, queries)})
}

// GetQuery GET /queries/:id.
func (h *QueriesHandler) GetQuery(c *fiber.Ctx) error {
	query, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.queryResponse(c, query)})
}

// UpdateQuery PATCH /queries/:id.
func (h *QueriesHandler) UpdateQuery(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	input := service.QueryUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Response:    req.Response,
	}
	if req.Tags != nil {
		input.Tags = toTags(req.Tags)
	}
	query, err := h.service.Update(c.Context(), principal.Identity.ID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.queryResponse(c, query)})
}

// UpdateStatus PATCH /queries/:id/status (faculty only).
func (h *QueriesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity.Role != domain.RoleFaculty {
		return apperrors.NewForbidden("faculty required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	actor := service.Actor{
		ID:          principal.Identity.ID,
		Role:        principal.Identity.Role,
		DisplayName: principal.Identity.DisplayName,
	}
	query, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), domain.QueryStatus(req.Status), req.Note, req.UpdatedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.queryResponse(c, query)})
}

// DeleteQuery DELETE /queries/:id.
func (h *QueriesHandler) DeleteQuery(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "query deleted successfully"})
}

// LatestQueries GET /queries/latest.
func (h *QueriesHandler) LatestQueries(c *fiber.Ctx) error {
	queries, err := h.service.ListLatest(c.Context(), 20)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.queryResponses(c, queries)})
}

// Stats GET /queries/stats.
func (h *QueriesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func (h *QueriesHandler) collectUploads(c *fiber.Ctx) ([]service.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	headers := form.File["documents"]
	if len(headers) == 0 {
		return nil, nil
	}
	if h.upload.MaxFilesPerQuery > 0 && len(headers) > h.upload.MaxFilesPerQuery {
		return nil, apperrors.NewValidationError("too many files", map[string]any{"max": h.upload.MaxFilesPerQuery})
	}

	files := make([]service.FileUpload, 0, len(headers))
	for _, header := range headers {
		if h.upload.MaxFileSizeBytes > 0 && header.Size > h.upload.MaxFileSizeBytes {
			return nil, apperrors.NewValidationError("file too large", map[string]any{"file": header.Filename})
		}
		data, err := readUpload(header)
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable upload", map[string]any{"file": header.Filename})
		}
		files = append(files, service.FileUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (h *QueriesHandler) queryResponses(c *fiber.Ctx, queries []domain.Query) []dto.QueryResponse {
	authors, err := h.service.AuthorProjection(c.Context(), queries)
	if err != nil {
		authors = nil
	}
	items := make([]dto.QueryResponse, 0, len(queries))
	for i := range queries {
		items = append(items, buildQueryResponse(&queries[i], authors))
	}
	return items
}

func (h *QueriesHandler) queryResponse(c *fiber.Ctx, query *domain.Query) dto.QueryResponse {
	authors, err := h.service.AuthorProjection(c.Context(), []domain.Query{*query})
	if err != nil {
		authors = nil
	}
	return buildQueryResponse(query, authors)
}

func buildQueryResponse(query *domain.Query, authors map[string]domain.Identity) dto.QueryResponse {
	author := dto.AuthorSummary{ID: query.StudentID}
	if identity, ok := authors[query.StudentID]; ok {
		author.Username = identity.Username
		author.Name = identity.DisplayName
	}

	mentions := make([]dto.MentionResponse, 0, len(query.Mentions))
	for _, m := range query.Mentions {
		mentions = append(mentions, dto.MentionResponse{
			UserID:   m.IdentityID,
			Role:     m.Role,
			Username: m.Username,
			Start:    m.Start,
			End:      m.End,
		})
	}

	history := make([]dto.StatusTransitionResponse, 0, len(query.StatusHistory))
	for _, t := range query.StatusHistory {
		history = append(history, dto.StatusTransitionResponse{
			At:        t.At,
			By:        t.ByUserID,
			Role:      t.ByRole,
			From:      t.From,
			To:        t.To,
			Note:      t.Note,
			UpdatedBy: t.UpdatedByDisplay,
		})
	}

	attachments := make([]dto.AttachmentResponse, 0, len(query.Attachments))
	for _, a := range query.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			BlobID:   a.BlobID,
			FileName: a.FileName,
			FileType: a.FileType,
			Size:     a.Size,
		})
	}

	return dto.QueryResponse{
		ID:            query.ID,
		Student:       author,
		Title:         query.Title,
		Description:   query.Description,
		Status:        query.Status,
		Response:      query.Response,
		Tags:          query.Tags,
		Mentions:      mentions,
		StatusHistory: history,
		Attachments:   attachments,
		CreatedAt:     query.CreatedAt,
		UpdatedAt:     query.UpdatedAt,
	}
}

func formTags(c *fiber.Ctx) []string {
	var tags []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		tags = form.Value["tags"]
	}
	if len(tags) == 0 {
		if raw := c.FormValue("tags"); raw != "" {
			tags = strings.Split(raw, ",")
		}
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func toTags(raw []string) []domain.QueryTag {
	tags := make([]domain.QueryTag, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, domain.QueryTag(t))
	}
	return tags
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
