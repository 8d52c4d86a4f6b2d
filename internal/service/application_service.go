package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
	"github.com/cffrank/jobmatchAI-sub016/internal/events"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	apperrors "github.com/cffrank/jobmatchAI-sub016/pkg/util/errorutil"
)

// ApplicationService handles creation, retrieval, descriptive updates and
// deletion of tracked applications. Status changes go through StatusService
// exclusively.
type ApplicationService struct {
	apps       repository.ApplicationRepository
	dispatcher events.Dispatcher
}

// ApplicationCreateInput describes creation payload. Status is not part of
// the input; every record starts at "applied" with a seeded history entry.
type ApplicationCreateInput struct {
	JobTitle string
	Company  string
	Location string
	URL      string
	Notes    string
	Tags     []string
}

// ApplicationDetailsInput describes a descriptive (note-only) update. It is
// a distinct operation outside the state machine and never touches status,
// status_changed_at or status_history.
type ApplicationDetailsInput struct {
	JobTitle *string
	Company  *string
	Location *string
	URL      *string
	Notes    *string
	Tags     []string
}

// NewApplicationService constructs the service.
func NewApplicationService(apps repository.ApplicationRepository, dispatcher events.Dispatcher) *ApplicationService {
	return &ApplicationService{apps: apps, dispatcher: dispatcher}
}

// Create initializes a tracked application for an owner.
func (s *ApplicationService) Create(ctx context.Context, ownerID string, input ApplicationCreateInput) (*domain.TrackedApplication, error) {
	jobTitle := strings.TrimSpace(input.JobTitle)
	company := strings.TrimSpace(input.Company)
	if jobTitle == "" || company == "" {
		return nil, apperrors.NewValidationError("job_title and company are required", nil)
	}

	app := domain.NewTrackedApplication(ownerID, jobTitle, company, strings.TrimSpace(input.Location))
	app.URL = strings.TrimSpace(input.URL)
	app.Notes = input.Notes
	// tags column is NOT NULL; a nil slice would encode as SQL NULL
	app.Tags = append([]string{}, input.Tags...)

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:          events.EventApplicationCreated,
		ApplicationID: app.ID,
		OwnerID:       app.OwnerID,
		Payload: events.ApplicationCreatedPayload{
			JobTitle: app.JobTitle,
			Company:  app.Company,
			Status:   app.Status,
		},
	})
	return app, nil
}

// Get fetches an application ensuring ownership.
func (s *ApplicationService) Get(ctx context.Context, ownerID, applicationID string) (*domain.TrackedApplication, error) {
	app, err := s.apps.GetByID(ctx, ownerID, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return nil, apperrors.MapError(err)
	}
	return app, nil
}

// UpdateDetails applies a descriptive update. Fields left nil keep their
// stored value.
func (s *ApplicationService) UpdateDetails(ctx context.Context, ownerID, applicationID string, input ApplicationDetailsInput) (*domain.TrackedApplication, error) {
	app, err := s.Get(ctx, ownerID, applicationID)
	if err != nil {
		return nil, err
	}

	if input.JobTitle != nil {
		if strings.TrimSpace(*input.JobTitle) == "" {
			return nil, apperrors.NewValidationError("job_title cannot be empty", nil)
		}
		app.JobTitle = strings.TrimSpace(*input.JobTitle)
	}
	if input.Company != nil {
		if strings.TrimSpace(*input.Company) == "" {
			return nil, apperrors.NewValidationError("company cannot be empty", nil)
		}
		app.Company = strings.TrimSpace(*input.Company)
	}
	if input.Location != nil {
		app.Location = strings.TrimSpace(*input.Location)
	}
	if input.URL != nil {
		app.URL = strings.TrimSpace(*input.URL)
	}
	if input.Notes != nil {
		app.Notes = *input.Notes
	}
	if input.Tags != nil {
		app.Tags = input.Tags
	}
	if app.Tags == nil {
		app.Tags = []string{}
	}

	if err := s.apps.UpdateDetails(ctx, app); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return nil, apperrors.MapError(err)
	}
	return app, nil
}

// Delete removes a record entirely. No cascading side effects; the history
// lives inside the record and goes with it.
func (s *ApplicationService) Delete(ctx context.Context, ownerID, applicationID string) error {
	app, err := s.Get(ctx, ownerID, applicationID)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, ownerID, applicationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:          events.EventApplicationDeleted,
		ApplicationID: applicationID,
		OwnerID:       ownerID,
		Payload: events.ApplicationDeletedPayload{
			JobTitle: app.JobTitle,
			Company:  app.Company,
		},
	})
	return nil
}

func (s *ApplicationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
