package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
)

// MemoryApplicationRepository is an in-process ApplicationRepository with
// the same conditional-write semantics as the Postgres implementation. It
// backs tests and the DSN-less development mode.
type MemoryApplicationRepository struct {
	mu   sync.Mutex
	apps map[string]*domain.TrackedApplication
}

// NewMemoryApplicationRepository creates an empty store.
func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{apps: make(map[string]*domain.TrackedApplication)}
}

func (r *MemoryApplicationRepository) Create(_ context.Context, app *domain.TrackedApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.apps[app.ID] = cloneApplication(app)
	return nil
}

func (r *MemoryApplicationRepository) GetByID(_ context.Context, ownerID, id string) (*domain.TrackedApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok || app.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return cloneApplication(app), nil
}

func (r *MemoryApplicationRepository) List(_ context.Context, ownerID string, filter ApplicationFilter) ([]domain.TrackedApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[domain.ApplicationStatus]struct{}{}
	for _, status := range expandStatuses(filter) {
		wanted[status] = struct{}{}
	}

	var result []domain.TrackedApplication
	for _, app := range r.apps {
		if app.OwnerID != ownerID {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[app.Status]; !ok {
				continue
			}
		}
		result = append(result, *cloneApplication(app))
	}

	sort.Slice(result, func(i, j int) bool {
		var a, b time.Time
		if filter.SortBy == SortByCreatedAt {
			a, b = result[i].CreatedAt, result[j].CreatedAt
		} else {
			a, b = result[i].StatusChangedAt, result[j].StatusChangedAt
		}
		if filter.SortDir == SortAsc {
			return a.Before(b)
		}
		return a.After(b)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryApplicationRepository) CommitStatus(_ context.Context, app *domain.TrackedApplication, entry domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok || stored.OwnerID != app.OwnerID {
		return ErrNotFound
	}
	if stored.Version != app.Version {
		return ErrVersionConflict
	}

	stored.Status = entry.Status
	stored.StatusChangedAt = entry.Timestamp
	stored.StatusHistory = append(stored.StatusHistory, entry)
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()

	app.Status = stored.Status
	app.StatusChangedAt = stored.StatusChangedAt
	app.StatusHistory = append(app.StatusHistory, entry)
	app.Version = stored.Version
	app.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryApplicationRepository) UpdateDetails(_ context.Context, app *domain.TrackedApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok || stored.OwnerID != app.OwnerID {
		return ErrNotFound
	}
	stored.JobTitle = app.JobTitle
	stored.Company = app.Company
	stored.Location = app.Location
	stored.URL = app.URL
	stored.Notes = app.Notes
	stored.Tags = append([]string(nil), app.Tags...)
	stored.UpdatedAt = time.Now().UTC()
	app.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryApplicationRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok || app.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func cloneApplication(app *domain.TrackedApplication) *domain.TrackedApplication {
	clone := *app
	clone.Tags = append([]string(nil), app.Tags...)
	clone.StatusHistory = append([]domain.StatusHistoryEntry(nil), app.StatusHistory...)
	return &clone
}
