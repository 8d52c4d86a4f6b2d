package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
	"github.com/cffrank/jobmatchAI-sub016/internal/events"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	apperrors "github.com/cffrank/jobmatchAI-sub016/pkg/util/errorutil"
)

const testOwner = "owner-1"

// conflictingRepo wraps the memory repository and forces a configurable
// number of version conflicts before letting commits through.
type conflictingRepo struct {
	repository.ApplicationRepository
	mu        sync.Mutex
	conflicts int
}

func (r *conflictingRepo) CommitStatus(ctx context.Context, app *domain.TrackedApplication, entry domain.StatusHistoryEntry) error {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return repository.ErrVersionConflict
	}
	r.mu.Unlock()
	return r.ApplicationRepository.CommitStatus(ctx, app, entry)
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newStatusFixture(t *testing.T) (*StatusService, *repository.MemoryApplicationRepository, *recordingDispatcher, *domain.TrackedApplication) {
	t.Helper()
	repo := repository.NewMemoryApplicationRepository()
	dispatcher := &recordingDispatcher{}
	svc := NewStatusService(repo, dispatcher, zap.NewNop())

	app := domain.NewTrackedApplication(testOwner, "Backend Engineer", "Acme", "Berlin")
	require.NoError(t, repo.Create(context.Background(), app))
	return svc, repo, dispatcher, app
}

func domainErrorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	return domainErr.Code
}

func TestUpdateStatus_Success(t *testing.T) {
	svc, repo, dispatcher, app := newStatusFixture(t)
	note := "phone screen booked"

	updated, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "screening", &note)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusScreening, updated.Status)
	assert.EqualValues(t, 2, updated.Version)
	require.Len(t, updated.StatusHistory, 2)

	last := updated.LastHistoryEntry()
	assert.Equal(t, updated.Status, last.Status)
	assert.Equal(t, updated.StatusChangedAt, last.Timestamp)
	require.NotNil(t, last.Note)
	assert.Equal(t, note, *last.Note)

	stored, err := repo.GetByID(context.Background(), testOwner, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreening, stored.Status)
	assert.Len(t, stored.StatusHistory, 2)

	changed := dispatcher.byType(events.EventApplicationStatusChanged)
	require.Len(t, changed, 1)
	payload, ok := changed[0].Payload.(events.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusApplied, payload.OldStatus)
	assert.Equal(t, domain.StatusScreening, payload.NewStatus)
}

func TestUpdateStatus_NoOp(t *testing.T) {
	svc, repo, _, app := newStatusFixture(t)

	_, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "applied", nil)
	assert.Equal(t, "NO_OP", domainErrorCode(t, err))

	stored, getErr := repo.GetByID(context.Background(), testOwner, app.ID)
	require.NoError(t, getErr)
	assert.Len(t, stored.StatusHistory, 1)
	assert.EqualValues(t, 1, stored.Version)
}

func TestUpdateStatus_InvalidTransition_RecordUnchanged(t *testing.T) {
	svc, repo, _, app := newStatusFixture(t)

	// accepted is only reachable from offer_accepted
	_, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "accepted", nil)
	assert.Equal(t, "INVALID_TRANSITION", domainErrorCode(t, err))

	stored, getErr := repo.GetByID(context.Background(), testOwner, app.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusApplied, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestUpdateStatus_UnknownStatusIsValidationError(t *testing.T) {
	svc, _, _, app := newStatusFixture(t)

	_, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "ghosted", nil)
	assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _, _ := newStatusFixture(t)

	_, err := svc.UpdateStatus(context.Background(), testOwner, "missing-id", "screening", nil)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestUpdateStatus_OtherOwnerLooksAbsent(t *testing.T) {
	svc, _, _, app := newStatusFixture(t)

	_, err := svc.UpdateStatus(context.Background(), "owner-2", app.ID, "screening", nil)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestUpdateStatus_SequentialChainToTerminal(t *testing.T) {
	svc, repo, _, app := newStatusFixture(t)
	ctx := context.Background()

	chain := []string{"screening", "interview_scheduled", "interview_completed", "offer", "offer_accepted", "accepted"}
	for _, status := range chain {
		_, err := svc.UpdateStatus(ctx, testOwner, app.ID, status, nil)
		require.NoError(t, err, "transition to %s", status)
	}

	stored, err := repo.GetByID(ctx, testOwner, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	assert.Len(t, stored.StatusHistory, len(chain)+1)
	assert.Equal(t, stored.Status, stored.LastHistoryEntry().Status)
	assert.Equal(t, stored.StatusChangedAt, stored.LastHistoryEntry().Timestamp)

	// terminal state denies every target
	for _, status := range domain.AllStatuses() {
		if status == domain.StatusAccepted {
			continue
		}
		_, err := svc.UpdateStatus(ctx, testOwner, app.ID, string(status), nil)
		assert.Equal(t, "INVALID_TRANSITION", domainErrorCode(t, err), "from accepted to %s", status)
	}

	stored, err = repo.GetByID(ctx, testOwner, app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, len(chain)+1)
}

func TestUpdateStatus_InterviewLoopAllowed(t *testing.T) {
	svc, _, _, app := newStatusFixture(t)
	ctx := context.Background()

	for _, status := range []string{"screening", "interview_scheduled", "interview_completed", "interview_scheduled", "interview_completed"} {
		_, err := svc.UpdateStatus(ctx, testOwner, app.ID, status, nil)
		require.NoError(t, err, "transition to %s", status)
	}
}

func TestUpdateStatus_RetriesOnVersionConflict(t *testing.T) {
	repo := repository.NewMemoryApplicationRepository()
	wrapped := &conflictingRepo{ApplicationRepository: repo, conflicts: 2}
	svc := NewStatusService(wrapped, nil, zap.NewNop())

	app := domain.NewTrackedApplication(testOwner, "SRE", "Acme", "")
	require.NoError(t, repo.Create(context.Background(), app))

	updated, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "screening", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreening, updated.Status)

	stored, err := repo.GetByID(context.Background(), testOwner, app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
}

func TestUpdateStatus_ConflictRetriesExhausted(t *testing.T) {
	repo := repository.NewMemoryApplicationRepository()
	wrapped := &conflictingRepo{ApplicationRepository: repo, conflicts: 100}
	svc := NewStatusService(wrapped, nil, zap.NewNop())

	app := domain.NewTrackedApplication(testOwner, "SRE", "Acme", "")
	require.NoError(t, repo.Create(context.Background(), app))

	_, err := svc.UpdateStatus(context.Background(), testOwner, app.ID, "screening", nil)
	assert.Equal(t, "CONFLICT", domainErrorCode(t, err))

	stored, getErr := repo.GetByID(context.Background(), testOwner, app.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusApplied, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestUpdateStatus_ConcurrentRace_ExactlyOneWins(t *testing.T) {
	svc, repo, _, app := newStatusFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, testOwner, app.ID, "screening", nil)
	require.NoError(t, err)

	// Both targets are individually legal from screening and both are
	// terminal, so the loser's internal retry must observe a terminal
	// state and fail the transition check.
	targets := []string{"rejected", "withdrawn"}
	results := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, testOwner, app.ID, target, nil)
			results[i] = err
		}(i, target)
	}
	wg.Wait()

	var successes, failures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		failures++
		code := domainErrorCode(t, err)
		assert.Contains(t, []string{"INVALID_TRANSITION", "CONFLICT"}, code)
	}
	assert.Equal(t, 1, successes, "exactly one transition must commit")
	assert.Equal(t, 1, failures)

	stored, err := repo.GetByID(ctx, testOwner, app.ID)
	require.NoError(t, err)
	assert.True(t, domain.IsTerminal(stored.Status))
	assert.Len(t, stored.StatusHistory, 3)
	assert.Equal(t, stored.Status, stored.LastHistoryEntry().Status)
	assert.Equal(t, stored.StatusChangedAt, stored.LastHistoryEntry().Timestamp)
}
