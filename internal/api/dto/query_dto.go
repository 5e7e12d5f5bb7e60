package dto

import (
	"time"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

// CreateQueryRequest payload. Attachments arrive as multipart files, not in
// the JSON body.
type CreateQueryRequest struct {
	Title       string   `json:"title" form:"title" validate:"required"`
	Description string   `json:"description" form:"description" validate:"required"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,dive,oneof=water mess internet washroom electricity maintenance other"`
}

// UpdateQueryRequest carries a partial update; nil fields are untouched.
type UpdateQueryRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Response    *string  `json:"response"`
	Tags        []string `json:"tags" validate:"omitempty,dive,oneof=water mess internet washroom electricity maintenance other"`
}

// UpdateStatusRequest payload for the faculty status endpoint.
type UpdateStatusRequest struct {
	Status    string `json:"status" validate:"required,oneof=pending in-progress resolved"`
	Note      string `json:"note"`
	UpdatedBy string `json:"updated_by"`
}

// AuthorSummary is the read-side projection of the query's author.
type AuthorSummary struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// MentionResponse is one resolved mention with highlight offsets.
type MentionResponse struct {
	UserID   string      `json:"user_id"`
	Role     domain.Role `json:"role"`
	Username string      `json:"username"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
}

// StatusTransitionResponse is one history entry.
type StatusTransitionResponse struct {
	At        time.Time          `json:"at"`
	By        string             `json:"by"`
	Role      domain.Role        `json:"role"`
	From      domain.QueryStatus `json:"from"`
	To        domain.QueryStatus `json:"to"`
	Note      string             `json:"note"`
	UpdatedBy string             `json:"updated_by,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	BlobID   string `json:"blob_id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
}

// QueryResponse provides full query info.
type QueryResponse struct {
	ID            string                     `json:"id"`
	Student       AuthorSummary              `json:"student"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	Status        domain.QueryStatus         `json:"status"`
	Response      string                     `json:"response,omitempty"`
	Tags          []domain.QueryTag          `json:"tags"`
	Mentions      []MentionResponse          `json:"mentions"`
	StatusHistory []StatusTransitionResponse `json:"status_history"`
	Attachments   []AttachmentResponse       `json:"documents"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}
