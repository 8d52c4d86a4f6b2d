package domain

import "time"

// TrackedApplication is the aggregate for one job-application pursuit.
// Status, StatusChangedAt, StatusHistory and Version are managed exclusively
// by the status-update path; everything else is descriptive payload.
type TrackedApplication struct {
	ID              string
	OwnerID         string
	JobTitle        string
	Company         string
	Location        string
	URL             string
	Notes           string
	Tags            []string
	Status          ApplicationStatus
	StatusChangedAt time.Time
	StatusHistory   []StatusHistoryEntry
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTrackedApplication seeds a record in the initial lifecycle state with
// its one-entry history.
func NewTrackedApplication(ownerID, jobTitle, company, location string) *TrackedApplication {
	seed := NewStatusHistoryEntry(StatusApplied, nil)
	return &TrackedApplication{
		OwnerID:         ownerID,
		JobTitle:        jobTitle,
		Company:         company,
		Location:        location,
		Status:          StatusApplied,
		StatusChangedAt: seed.Timestamp,
		StatusHistory:   []StatusHistoryEntry{seed},
		Version:         1,
	}
}

// LastHistoryEntry returns the tail of the audit trail.
func (a *TrackedApplication) LastHistoryEntry() *StatusHistoryEntry {
	if len(a.StatusHistory) == 0 {
		return nil
	}
	return &a.StatusHistory[len(a.StatusHistory)-1]
}
