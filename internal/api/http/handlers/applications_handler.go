package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cffrank/jobmatchAI-sub016/internal/api/dto"
	"github.com/cffrank/jobmatchAI-sub016/internal/auth"
	"github.com/cffrank/jobmatchAI-sub016/internal/domain"
	"github.com/cffrank/jobmatchAI-sub016/internal/service"
	apperrors "github.com/cffrank/jobmatchAI-sub016/pkg/util/errorutil"
)

// ApplicationsHandler manages tracked-application endpoints.
type ApplicationsHandler struct {
	applications *service.ApplicationService
	status       *service.StatusService
	queries      *service.QueryService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applications *service.ApplicationService, status *service.StatusService, queries *service.QueryService) *ApplicationsHandler {
	return &ApplicationsHandler{
		applications: applications,
		status:       status,
		queries:      queries,
	}
}

// Create POST /applications.
func (h *ApplicationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	app, err := h.applications.Create(c.Context(), principal.User.ID, service.ApplicationCreateInput{
		JobTitle: req.JobTitle,
		Company:  req.Company,
		Location: req.Location,
		URL:      req.URL,
		Notes:    req.Notes,
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationDetail(app)})
}

// List GET /applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	apps, err := h.queries.List(c.Context(), principal.User.ID, parseListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		items = append(items, applicationSummary(&apps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	app, err := h.applications.Get(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationDetail(app)})
}

// UpdateStatus PATCH /applications/:id/status.
func (h *ApplicationsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Status) == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	app, err := h.status.UpdateStatus(c.Context(), principal.User.ID, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationDetail(app)})
}

// UpdateDetails PATCH /applications/:id/notes.
func (h *ApplicationsHandler) UpdateDetails(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	app, err := h.applications.UpdateDetails(c.Context(), principal.User.ID, c.Params("id"), service.ApplicationDetailsInput{
		JobTitle: req.JobTitle,
		Company:  req.Company,
		Location: req.Location,
		URL:      req.URL,
		Notes:    req.Notes,
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationDetail(app)})
}

// Delete DELETE /applications/:id.
func (h *ApplicationsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.applications.Delete(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseListQuery(c *fiber.Ctx) service.ApplicationListFilter {
	filter := service.ApplicationListFilter{
		Category: c.Query("category"),
		SortBy:   c.Query("sort"),
		SortDir:  c.Query("order"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, strings.TrimSpace(part))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func applicationSummary(app *domain.TrackedApplication) dto.ApplicationSummary {
	category, _ := domain.Category(app.Status)
	return dto.ApplicationSummary{
		ID:              app.ID,
		JobTitle:        app.JobTitle,
		Company:         app.Company,
		Location:        app.Location,
		Status:          app.Status,
		Category:        category,
		StatusChangedAt: app.StatusChangedAt,
		Tags:            app.Tags,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

func applicationDetail(app *domain.TrackedApplication) dto.ApplicationDetailResponse {
	category, _ := domain.Category(app.Status)
	history := make([]dto.StatusHistoryResponse, 0, len(app.StatusHistory))
	for _, entry := range app.StatusHistory {
		history = append(history, dto.StatusHistoryResponse{
			Status:    entry.Status,
			Timestamp: entry.Timestamp,
			Note:      entry.Note,
		})
	}
	return dto.ApplicationDetailResponse{
		ID:              app.ID,
		JobTitle:        app.JobTitle,
		Company:         app.Company,
		Location:        app.Location,
		URL:             app.URL,
		Notes:           app.Notes,
		Tags:            app.Tags,
		Status:          app.Status,
		Category:        category,
		StatusChangedAt: app.StatusChangedAt,
		StatusHistory:   history,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}
