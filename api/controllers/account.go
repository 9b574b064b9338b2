package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/api/validators"
	"github.com/mateoquiroga/agencydesk-backend/internal/accounts"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

type deleteAccountRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// AccountDelete soft-deletes the caller's own account and signs them out.
// The identity row survives; only the admin cascade removes it for good.
func AccountDelete(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())

		var body deleteAccountRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if body.Reason != nil {
			trimmed := validators.SanitizeString(*body.Reason, 500)
			body.Reason = &trimmed
		}

		if err := svc.SoftDeleteAccount(r.Context(), userID, sessionID, body.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "account_deleted"})
	}
}
