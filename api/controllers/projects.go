package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/api/validators"
	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// ProjectReader lists a client's projects with their progress children.
type ProjectReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
}

// ProjectWriter is the admin-facing slice of the projects repo.
type ProjectWriter interface {
	AddUpdate(ctx context.Context, update *models.ProjectUpdate) error
	SetProgress(ctx context.Context, projectID uuid.UUID, status string, progressPct int) error
}

// ProjectsList returns the caller's projects, updates and milestones included.
func ProjectsList(repo ProjectReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		projects, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects"))
			return
		}
		responses.WriteSuccess(w, projects)
	}
}

type adminProjectUpdateRequest struct {
	ProjectID   uuid.UUID `json:"projectId" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Body        *string   `json:"body" validate:"omitempty,max=5000"`
	Status      *string   `json:"status" validate:"omitempty,oneof=in_progress review completed on_hold"`
	ProgressPct *int      `json:"progressPct" validate:"omitempty,min=0,max=100"`
}

// AdminProjectUpdate appends a progress update and optionally moves the
// project's status or completion percentage in the same request.
func AdminProjectUpdate(repo ProjectWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects unavailable"))
			return
		}

		var body adminProjectUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ProjectID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "projectId is required"))
			return
		}

		update := &models.ProjectUpdate{
			ProjectID: body.ProjectID,
			Title:     validators.SanitizeString(body.Title, 200),
			Body:      body.Body,
		}
		if err := repo.AddUpdate(r.Context(), update); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add project update"))
			return
		}

		if body.Status != nil || body.ProgressPct != nil {
			status := "in_progress"
			if body.Status != nil {
				status = *body.Status
			}
			pct := 0
			if body.ProgressPct != nil {
				pct = *body.ProgressPct
			}
			if err := repo.SetProgress(r.Context(), body.ProjectID, status, pct); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set project progress"))
				return
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, update)
	}
}
