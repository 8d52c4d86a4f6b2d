package events

import (
	"time"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationCreated       EventType = "application_created"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventApplicationDeleted       EventType = "application_deleted"
)

// Event represents a domain event emitted by services. OwnerID identifies
// the user whose record changed; downstream consumers scope delivery by it.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ApplicationID string      `json:"application_id"`
	OwnerID       string      `json:"owner_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationCreatedPayload payload.
type ApplicationCreatedPayload struct {
	JobTitle string                   `json:"job_title"`
	Company  string                   `json:"company"`
	Status   domain.ApplicationStatus `json:"status"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
	Note      *string                  `json:"note,omitempty"`
}

// ApplicationDeletedPayload payload.
type ApplicationDeletedPayload struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
}
