package dto

import (
	"time"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
)

// CreateApplicationRequest payload.
type CreateApplicationRequest struct {
	JobTitle string   `json:"job_title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	URL      string   `json:"url"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

// UpdateDetailsRequest payload. Nil fields keep their stored value.
type UpdateDetailsRequest struct {
	JobTitle *string  `json:"job_title,omitempty"`
	Company  *string  `json:"company,omitempty"`
	Location *string  `json:"location,omitempty"`
	URL      *string  `json:"url,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ApplicationSummary response.
type ApplicationSummary struct {
	ID              string                   `json:"id"`
	JobTitle        string                   `json:"job_title"`
	Company         string                   `json:"company"`
	Location        string                   `json:"location,omitempty"`
	Status          domain.ApplicationStatus `json:"status"`
	Category        domain.StatusCategory    `json:"category"`
	StatusChangedAt time.Time                `json:"status_changed_at"`
	Tags            []string                 `json:"tags,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ApplicationDetailResponse provides full record info including history.
type ApplicationDetailResponse struct {
	ID              string                   `json:"id"`
	JobTitle        string                   `json:"job_title"`
	Company         string                   `json:"company"`
	Location        string                   `json:"location,omitempty"`
	URL             string                   `json:"url,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	Tags            []string                 `json:"tags,omitempty"`
	Status          domain.ApplicationStatus `json:"status"`
	Category        domain.StatusCategory    `json:"category"`
	StatusChangedAt time.Time                `json:"status_changed_at"`
	StatusHistory   []StatusHistoryResponse  `json:"status_history"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// StatusHistoryResponse is one audit trail entry.
type StatusHistoryResponse struct {
	Status    domain.ApplicationStatus `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Note      *string                  `json:"note,omitempty"`
}
