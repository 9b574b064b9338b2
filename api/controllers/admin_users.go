package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/api/validators"
	"github.com/mateoquiroga/agencydesk-backend/internal/accounts"
	"github.com/mateoquiroga/agencydesk-backend/internal/deletion"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// UserCascadeDeleter is the slice of the deletion runner the admin endpoint needs.
type UserCascadeDeleter interface {
	DeleteUser(ctx context.Context, targetUserID uuid.UUID, actorID *uuid.UUID, reason *string) (*deletion.Report, error)
}

type adminDeleteUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Reason *string   `json:"reason" validate:"omitempty,max=500"`
}

const (
	filterActionCheckEmail       = "check_email"
	filterActionRemoveClientData = "remove_client_data"
)

type adminFilterUsersRequest struct {
	Action string `json:"action" validate:"required,oneof=check_email remove_client_data"`
	Email  string `json:"email" validate:"required,email"`
}

// AdminDeleteUser runs the full cascade: every dependent table first, the
// identity row last. Partial failures come back in the report, not as a 500.
func AdminDeleteUser(runner UserCascadeDeleter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deletion runner unavailable"))
			return
		}

		var body adminDeleteUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.UserID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId is required"))
			return
		}

		var actorID *uuid.UUID
		if parsed, err := uuid.Parse(middleware.UserIDFromContext(r.Context())); err == nil {
			actorID = &parsed
		}

		report, err := runner.DeleteUser(r.Context(), body.UserID, actorID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// AdminFilterUsers multiplexes the admin maintenance actions behind one route.
func AdminFilterUsers(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var body adminFilterUsersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		email := strings.ToLower(validators.SanitizeString(body.Email, 320))

		var actorID *uuid.UUID
		if parsed, err := uuid.Parse(middleware.UserIDFromContext(r.Context())); err == nil {
			actorID = &parsed
		}

		switch body.Action {
		case filterActionCheckEmail:
			check, err := svc.CheckEmail(r.Context(), email)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, check)
		case filterActionRemoveClientData:
			report, err := svc.RemoveClientData(r.Context(), email, actorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, report)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown action"))
		}
	}
}
