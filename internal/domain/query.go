package domain

import "time"

// QueryStatus enumerates lifecycle states for student queries.
type QueryStatus string

const (
	QueryStatusPending    QueryStatus = "pending"
	QueryStatusInProgress QueryStatus = "in-progress"
	QueryStatusResolved   QueryStatus = "resolved"
)

// ValidQueryStatus reports whether s is one of the three lifecycle states.
func ValidQueryStatus(s QueryStatus) bool {
	switch s {
	case QueryStatusPending, QueryStatusInProgress, QueryStatusResolved:
		return true
	}
	return false
}

// QueryTag categorizes the facility issue a query is about.
type QueryTag string

const (
	TagWater       QueryTag = "water"
	TagMess        QueryTag = "mess"
	TagInternet    QueryTag = "internet"
	TagWashroom    QueryTag = "washroom"
	TagElectricity QueryTag = "electricity"
	TagMaintenance QueryTag = "maintenance"
	TagOther       QueryTag = "other"
)

// ValidQueryTag reports whether t belongs to the canonical tag set.
func ValidQueryTag(t QueryTag) bool {
	switch t {
	case TagWater, TagMess, TagInternet, TagWashroom, TagElectricity, TagMaintenance, TagOther:
		return true
	}
	return false
}

// Mention is a resolved @username reference found inside a query description.
// Start/End are byte offsets into the description as it was at extraction
// time; they are advisory for highlighting and go stale if the description
// is edited without re-extraction.
type Mention struct {
	IdentityID string `json:"user_id"`
	Role       Role   `json:"role"`
	Username   string `json:"username"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// StatusTransition records one status change. Entries are append-only and
// never mutated after insertion.
type StatusTransition struct {
	At               time.Time   `json:"at"`
	ByUserID         string      `json:"by"`
	ByRole           Role        `json:"role"`
	From             QueryStatus `json:"from"`
	To               QueryStatus `json:"to"`
	Note             string      `json:"note"`
	UpdatedByDisplay string      `json:"updated_by,omitempty"`
}

// Attachment references an uploaded document stored in the blob store.
type Attachment struct {
	BlobID   string `json:"blob_id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
}

// Query is the aggregate for student complaints. Mentions are a cache: they
// are always recomputable from Description at the time of last save.
type Query struct {
	ID            string
	StudentID     string
	Title         string
	Description   string
	Status        QueryStatus
	Response      string
	Tags          []QueryTag
	Mentions      []Mention
	StatusHistory []StatusTransition
	Attachments   []Attachment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
