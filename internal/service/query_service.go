package service

import (
	"context"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	apperrors "github.com/cffrank/jobmatchAI-sub016/pkg/util/errorutil"
)

// QueryService provides read-only, owner-scoped listings. It never mutates
// and takes no locks; each call returns the snapshot visible at read time.
type QueryService struct {
	apps repository.ApplicationRepository
}

// ApplicationListFilter describes listing parameters as received from the
// transport layer, before enum validation.
type ApplicationListFilter struct {
	Statuses []string
	Category string
	SortBy   string
	SortDir  string
	Limit    int
	Offset   int
}

// NewQueryService constructs the service.
func NewQueryService(apps repository.ApplicationRepository) *QueryService {
	return &QueryService{apps: apps}
}

// List returns the owner's tracked applications, optionally filtered by
// status or category and sorted by status_changed_at or created_at.
func (s *QueryService) List(ctx context.Context, ownerID string, filter ApplicationListFilter) ([]domain.TrackedApplication, error) {
	repoFilter := repository.ApplicationFilter{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	for _, raw := range filter.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": raw})
		}
		repoFilter.Statuses = append(repoFilter.Statuses, status)
	}

	if filter.Category != "" {
		category, err := domain.ParseCategory(filter.Category)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"category": filter.Category})
		}
		repoFilter.Category = &category
	}

	switch filter.SortBy {
	case "", string(repository.SortByStatusChangedAt):
		repoFilter.SortBy = repository.SortByStatusChangedAt
	case string(repository.SortByCreatedAt):
		repoFilter.SortBy = repository.SortByCreatedAt
	default:
		return nil, apperrors.NewValidationError("sort must be status_changed_at or created_at", map[string]any{"sort": filter.SortBy})
	}

	switch filter.SortDir {
	case "", string(repository.SortDesc):
		repoFilter.SortDir = repository.SortDesc
	case string(repository.SortAsc):
		repoFilter.SortDir = repository.SortAsc
	default:
		return nil, apperrors.NewValidationError("order must be asc or desc", map[string]any{"order": filter.SortDir})
	}

	result, err := s.apps.List(ctx, ownerID, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
