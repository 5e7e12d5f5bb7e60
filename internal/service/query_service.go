package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SAGARSINGH-1/HostelCMS/internal/blob"
	"github.com/SAGARSINGH-1/HostelCMS/internal/directory"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/events"
	"github.com/SAGARSINGH-1/HostelCMS/internal/mention"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// QueryService coordinates query workflows: create, update, status changes
// and deletion, plus the read-side listings. Notification fan-out rides on
// the event dispatcher and never touches the caller's critical path.
type QueryService struct {
	queries    repository.QueryRepository
	blobs      blob.Store
	extractor  *mention.Extractor
	directory  directory.Directory
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// QueryDependencies bundles collaborators for the query service.
type QueryDependencies struct {
	QueryRepo  repository.QueryRepository
	BlobStore  blob.Store
	Extractor  *mention.Extractor
	Directory  directory.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// FileUpload carries one attachment received from the client.
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// QueryCreateInput describes query creation payload.
type QueryCreateInput struct {
	StudentID   string
	Title       string
	Description string
	Tags        []domain.QueryTag
	Files       []FileUpload
}

// QueryUpdateInput describes a partial update. Nil fields are untouched.
type QueryUpdateInput struct {
	Title       *string
	Description *string
	Response    *string
	Tags        []domain.QueryTag
}

// Actor identifies who performs a mutation.
type Actor struct {
	ID          string
	Role        domain.Role
	DisplayName string
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	return &QueryService{
		queries:    deps.QueryRepo,
		blobs:      deps.BlobStore,
		extractor:  deps.Extractor,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create validates and persists a new query. Attachment uploads happen
// before the query row is written and any upload failure aborts the whole
// creation. Mention fan-out runs after the row is durable, detached from
// the request, and cannot fail the create.
func (s *QueryService) Create(ctx context.Context, input QueryCreateInput) (*domain.Query, error) {
	if strings.TrimSpace(input.StudentID) == "" {
		return nil, apperrors.NewValidationError("student missing/invalid", nil)
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	author, err := s.directory.ResolveByID(ctx, input.StudentID)
	if err != nil {
		return nil, apperrors.NewValidationError("student missing/invalid", map[string]any{"student": input.StudentID})
	}
	if author.Role != domain.RoleStudent {
		return nil, apperrors.NewValidationError("author must be a student", nil)
	}
	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	mentions, err := s.extractor.Extract(ctx, input.Description)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("mention resolution failed", err)
	}

	attachments := make([]domain.Attachment, 0, len(input.Files))
	for _, f := range input.Files {
		blobID, err := s.blobs.Upload(ctx, f.FileName, f.ContentType, f.Data)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("attachment upload failed", err)
		}
		attachments = append(attachments, domain.Attachment{
			BlobID:   blobID,
			FileName: f.FileName,
			FileType: f.ContentType,
			Size:     int64(len(f.Data)),
		})
	}

	query := &domain.Query{
		StudentID:   input.StudentID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      domain.QueryStatusPending,
		Tags:        tags,
		Mentions:    mentions,
		Attachments: attachments,
	}
	if err := s.queries.Create(ctx, query); err != nil {
		return nil, err
	}

	if len(mentions) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventQueryCreated,
			QueryID: query.ID,
			ActorID: input.StudentID,
			Payload: events.QueryMentionsPayload{
				Title:       query.Title,
				Description: query.Description,
				Mentions:    mentions,
			},
		})
	}
	return query, nil
}

// Update applies a partial update. When the description changes the mention
// cache is recomputed from scratch (never merged with stale values) and the
// new mention set is fanned out again.
func (s *QueryService) Update(ctx context.Context, actorID, queryID string, input QueryUpdateInput) (*domain.Query, error) {
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("query", map[string]any{"id": queryID})
		}
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewValidationError("title required", nil)
		}
		query.Title = strings.TrimSpace(*input.Title)
	}
	if input.Response != nil {
		query.Response = *input.Response
	}
	if input.Tags != nil {
		tags, err := normalizeTags(input.Tags)
		if err != nil {
			return nil, err
		}
		query.Tags = tags
	}

	descriptionChanged := false
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, apperrors.NewValidationError("description required", nil)
		}
		query.Description = *input.Description
		mentions, err := s.extractor.Extract(ctx, query.Description)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("mention resolution failed", err)
		}
		query.Mentions = mentions
		descriptionChanged = true
	}

	if err := s.queries.Update(ctx, query); err != nil {
		return nil, err
	}

	// Re-mentioning the same person on every edit re-notifies them; no
	// diffing against the previous mention set.
	if descriptionChanged && len(query.Mentions) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventQueryUpdated,
			QueryID: query.ID,
			ActorID: actorID,
			Payload: events.QueryMentionsPayload{
				Title:       query.Title,
				Description: query.Description,
				Mentions:    query.Mentions,
			},
		})
	}
	return query, nil
}

// UpdateStatus appends a status transition. Any from->to pair is legal;
// callers gate this to faculty actors. The author is notified best-effort.
func (s *QueryService) UpdateStatus(ctx context.Context, actor Actor, queryID string, status domain.QueryStatus, note, updatedBy string) (*domain.Query, error) {
	if !domain.ValidQueryStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("query", map[string]any{"id": queryID})
		}
		return nil, err
	}

	oldStatus := query.Status
	query.Status = status
	query.StatusHistory = append(query.StatusHistory, domain.StatusTransition{
		At:               time.Now(),
		ByUserID:         actor.ID,
		ByRole:           actor.Role,
		From:             oldStatus,
		To:               status,
		Note:             note,
		UpdatedByDisplay: updatedBy,
	})
	if err := s.queries.Update(ctx, query); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueryStatusChanged,
		QueryID: query.ID,
		ActorID: actor.ID,
		Payload: events.QueryStatusChangedPayload{
			StudentID: query.StudentID,
			Title:     query.Title,
			From:      oldStatus,
			To:        status,
			Note:      note,
		},
	})
	return query, nil
}

// Delete removes the query and best-effort deletes its attachment blobs in
// parallel: every delete is attempted even when some fail. Notifications
// referencing the query are left in place.
func (s *QueryService) Delete(ctx context.Context, queryID string) error {
	query, err := s.queries.Delete(ctx, queryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("query", map[string]any{"id": queryID})
		}
		return err
	}

	var wg sync.WaitGroup
	for _, att := range query.Attachments {
		if att.BlobID == "" {
			continue
		}
		wg.Add(1)
		go func(att domain.Attachment) {
			defer wg.Done()
			if err := s.blobs.Delete(ctx, att.BlobID); err != nil {
				s.logger.Warn("attachment blob delete failed",
					zap.String("query_id", queryID),
					zap.String("blob_id", att.BlobID),
					zap.Error(err))
			}
		}(att)
	}
	wg.Wait()
	return nil
}

// GetByID fetches one query.
func (s *QueryService) GetByID(ctx context.Context, queryID string) (*domain.Query, error) {
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("query", map[string]any{"id": queryID})
		}
		return nil, err
	}
	return query, nil
}

// ListByStudent returns a student's queries, newest first.
func (s *QueryService) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]domain.Query, error) {
	return s.queries.ListByStudent(ctx, studentID, limit, offset)
}

// ListLatest returns the newest queries across all students.
func (s *QueryService) ListLatest(ctx context.Context, limit int) ([]domain.Query, error) {
	return s.queries.ListLatest(ctx, limit)
}

// Stats returns aggregate counts for dashboards.
func (s *QueryService) Stats(ctx context.Context) (*repository.QueryStats, error) {
	return s.queries.Stats(ctx)
}

// AuthorProjection joins directory data into query responses at read time;
// display names are never denormalized into the query rows.
func (s *QueryService) AuthorProjection(ctx context.Context, queries []domain.Query) (map[string]domain.Identity, error) {
	ids := make([]string, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for i := range queries {
		if _, ok := seen[queries[i].StudentID]; ok {
			continue
		}
		seen[queries[i].StudentID] = struct{}{}
		ids = append(ids, queries[i].StudentID)
	}
	return s.directory.ResolveManyByIDs(ctx, ids)
}

// publishEvent hands the event to the dispatcher on a context detached from
// the request: a client disconnecting after the query write does not abort
// the fan-out. Publish happens strictly after the query row is durable.
func (s *QueryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		_ = s.dispatcher.Publish(detached, event)
	}()
}

func normalizeTags(tags []domain.QueryTag) ([]domain.QueryTag, error) {
	if len(tags) == 0 {
		return []domain.QueryTag{domain.TagOther}, nil
	}
	out := make([]domain.QueryTag, 0, len(tags))
	for _, t := range tags {
		if !domain.ValidQueryTag(t) {
			return nil, apperrors.NewValidationError("invalid tag", map[string]any{"tag": string(t)})
		}
		out = append(out, t)
	}
	return out, nil
}
