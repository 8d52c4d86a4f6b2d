package domain

import "time"

// StatusHistoryEntry is one element of the append-only audit trail.
type StatusHistoryEntry struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Note      *string           `json:"note,omitempty"`
}

// NewStatusHistoryEntry builds the audit entry for a committed transition.
// The timestamp is always generated server-side at commit time; callers
// never supply it.
func NewStatusHistoryEntry(status ApplicationStatus, note *string) StatusHistoryEntry {
	entry := StatusHistoryEntry{
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if note != nil && *note != "" {
		entry.Note = note
	}
	return entry
}
