package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
	"github.com/cffrank/jobmatchAI-sub016/internal/events"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	apperrors "github.com/cffrank/jobmatchAI-sub016/pkg/util/errorutil"
)

// defaultUpdateAttempts bounds the optimistic-concurrency retry loop.
const defaultUpdateAttempts = 3

// StatusService orchestrates lifecycle transitions: load, validate against
// the transition table, commit conditionally, retry on version conflict.
type StatusService struct {
	apps        repository.ApplicationRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	maxAttempts int
}

// NewStatusService constructs the service.
func NewStatusService(apps repository.ApplicationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *StatusService {
	return &StatusService{
		apps:        apps,
		dispatcher:  dispatcher,
		logger:      logger,
		maxAttempts: defaultUpdateAttempts,
	}
}

// UpdateStatus moves an application to the requested status. Exactly one
// winning transition per race: the conditional write is guarded by the
// version marker read at load time, and a losing attempt re-validates the
// request against the fresh state before trying again.
func (s *StatusService) UpdateStatus(ctx context.Context, ownerID, applicationID string, rawStatus string, note *string) (*domain.TrackedApplication, error) {
	requested, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": rawStatus})
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		app, err := s.apps.GetByID(ctx, ownerID, applicationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
			}
			return nil, apperrors.MapError(err)
		}

		if app.Status == requested {
			return nil, apperrors.NewNoOp("application already has the requested status", map[string]any{
				"status": requested,
			})
		}

		if err := domain.ValidateTransition(app.Status, requested); err != nil {
			var unknown *domain.UnknownStatusError
			if errors.As(err, &unknown) {
				return nil, apperrors.NewValidationError(err.Error(), nil)
			}
			return nil, apperrors.NewInvalidTransition(err.Error(), map[string]any{
				"current":   app.Status,
				"requested": requested,
			})
		}

		oldStatus := app.Status
		entry := domain.NewStatusHistoryEntry(requested, note)
		err = s.apps.CommitStatus(ctx, app, entry)
		if err == nil {
			s.publishStatusChanged(ctx, app, oldStatus, note)
			return app, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.MapError(err)
		}

		s.logger.Debug("status commit lost version race, retrying",
			zap.String("application_id", applicationID),
			zap.Int("attempt", attempt))
	}

	return nil, apperrors.NewConflict("application was modified concurrently, retries exhausted", map[string]any{
		"id":       applicationID,
		"attempts": s.maxAttempts,
	})
}

func (s *StatusService) publishStatusChanged(ctx context.Context, app *domain.TrackedApplication, oldStatus domain.ApplicationStatus, note *string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventApplicationStatusChanged,
		ApplicationID: app.ID,
		OwnerID:       app.OwnerID,
		Timestamp:     time.Now().UTC(),
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: app.Status,
			Note:      note,
		},
	})
}
