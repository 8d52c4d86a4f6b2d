package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
)

// ErrVersionConflict signals that a conditional write lost a race: the
// record's version marker changed between load and commit.
var ErrVersionConflict = errors.New("application version conflict")

// ErrNotFound signals an absent record or one owned by someone else.
var ErrNotFound = errors.New("application not found")

// SortField selects the ordering column for listings.
type SortField string

const (
	SortByStatusChangedAt SortField = "status_changed_at"
	SortByCreatedAt       SortField = "created_at"
)

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ApplicationFilter captures listing parameters. Statuses and Category are
// combined with OR-expansion: a category is expanded to its member statuses.
type ApplicationFilter struct {
	Statuses []domain.ApplicationStatus
	Category *domain.StatusCategory
	SortBy   SortField
	SortDir  SortDirection
	Limit    int
	Offset   int
}

// ApplicationRepository encapsulates tracked-application persistence.
// CommitStatus is the only operation that writes the status field; it
// appends the history entry and bumps the version in the same atomic
// statement, conditioned on the version read at load time.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.TrackedApplication) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.TrackedApplication, error)
	List(ctx context.Context, ownerID string, filter ApplicationFilter) ([]domain.TrackedApplication, error)
	CommitStatus(ctx context.Context, app *domain.TrackedApplication, entry domain.StatusHistoryEntry) error
	UpdateDetails(ctx context.Context, app *domain.TrackedApplication) error
	Delete(ctx context.Context, ownerID, id string) error
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository returns a Postgres-backed implementation.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

const applicationColumns = `id, owner_user_id, job_title, company, location, url, notes, tags,
       status, status_changed_at, status_history, version, created_at, updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.TrackedApplication) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	const query = `
        INSERT INTO tracked_applications
            (owner_user_id, job_title, company, location, url, notes, tags, status, status_changed_at, status_history, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		app.OwnerID,
		app.JobTitle,
		app.Company,
		app.Location,
		app.URL,
		app.Notes,
		app.Tags,
		app.Status,
		app.StatusChangedAt,
		history,
		app.Version,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *applicationRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.TrackedApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM tracked_applications WHERE id=$1 AND owner_user_id=$2`, applicationColumns)
	row := r.pool.QueryRow(ctx, query, id, ownerID)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// expandStatuses merges explicit statuses with the category's members into
// a fresh slice, never appending into the caller's backing array.
func expandStatuses(filter ApplicationFilter) []domain.ApplicationStatus {
	statuses := append([]domain.ApplicationStatus(nil), filter.Statuses...)
	if filter.Category != nil {
		statuses = append(statuses, domain.StatusesInCategory(*filter.Category)...)
	}
	return statuses
}

func (r *applicationRepository) List(ctx context.Context, ownerID string, filter ApplicationFilter) ([]domain.TrackedApplication, error) {
	statuses := expandStatuses(filter)

	clauses := []string{"owner_user_id=$1"}
	args := []any{ownerID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	orderBy := "status_changed_at"
	if filter.SortBy == SortByCreatedAt {
		orderBy = "created_at"
	}
	direction := "DESC"
	if filter.SortDir == SortAsc {
		direction = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tracked_applications WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		applicationColumns, strings.Join(clauses, " AND "), orderBy, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TrackedApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

// CommitStatus performs the conditional write: status, status_changed_at,
// appended history entry and version bump land in one UPDATE guarded by the
// version marker. Zero rows affected means a concurrent writer won.
func (r *applicationRepository) CommitStatus(ctx context.Context, app *domain.TrackedApplication, entry domain.StatusHistoryEntry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	const query = `
        UPDATE tracked_applications
        SET status=$1, status_changed_at=$2,
            status_history = status_history || $3::jsonb,
            version = version + 1, updated_at = NOW()
        WHERE id=$4 AND owner_user_id=$5 AND version=$6
        RETURNING updated_at`
	err = r.pool.QueryRow(ctx, query,
		entry.Status,
		entry.Timestamp,
		encoded,
		app.ID,
		app.OwnerID,
		app.Version,
	).Scan(&app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return err
	}

	app.Status = entry.Status
	app.StatusChangedAt = entry.Timestamp
	app.StatusHistory = append(app.StatusHistory, entry)
	app.Version++
	return nil
}

// UpdateDetails writes descriptive payload only. It deliberately leaves
// status, status_changed_at, status_history and version untouched, so a
// racing status commit is never invalidated by a notes edit.
func (r *applicationRepository) UpdateDetails(ctx context.Context, app *domain.TrackedApplication) error {
	const query = `
        UPDATE tracked_applications
        SET job_title=$1, company=$2, location=$3, url=$4, notes=$5, tags=$6, updated_at=NOW()
        WHERE id=$7 AND owner_user_id=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		app.JobTitle,
		app.Company,
		app.Location,
		app.URL,
		app.Notes,
		app.Tags,
		app.ID,
		app.OwnerID,
	).Scan(&app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *applicationRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM tracked_applications WHERE id=$1 AND owner_user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*domain.TrackedApplication, error) {
	var app domain.TrackedApplication
	var history []byte
	if err := row.Scan(
		&app.ID,
		&app.OwnerID,
		&app.JobTitle,
		&app.Company,
		&app.Location,
		&app.URL,
		&app.Notes,
		&app.Tags,
		&app.Status,
		&app.StatusChangedAt,
		&history,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal status history: %w", err)
	}
	return &app, nil
}
