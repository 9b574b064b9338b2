package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/api/validators"
	cartsvc "github.com/mateoquiroga/agencydesk-backend/internal/cart"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// cartTokenHeader carries the anonymous session token issued to browsers
// before login. Authenticated requests ignore it except on sync.
const cartTokenHeader = "X-Cart-Token"

func cartOwnerFromRequest(r *http.Request) (cartsvc.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cartsvc.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cartsvc.UserOwner(userID), nil
	}

	owner := cartsvc.AnonymousOwner(r.Header.Get(cartTokenHeader))
	if !owner.IsValid() {
		return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner is required")
	}
	return owner, nil
}

// CartFetch returns the owner's cart, creating an empty one on first use.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type cartAddPackRequest struct {
	PackID uuid.UUID `json:"packId" validate:"required"`
}

func CartAddPack(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartAddPackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.PackID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "packId is required"))
			return
		}

		if err := svc.AddPack(r.Context(), owner, body.PackID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, r, svc, logg, owner)
	}
}

type cartAddServiceRequest struct {
	ServiceID uuid.UUID `json:"serviceId" validate:"required"`
}

func CartAddService(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartAddServiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ServiceID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "serviceId is required"))
			return
		}

		if err := svc.AddService(r.Context(), owner, body.ServiceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, r, svc, logg, owner)
	}
}

type cartUpdateQuantityRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartUpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ItemID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "itemId is required"))
			return
		}

		if err := svc.UpdateItemQuantity(r.Context(), owner, body.ItemID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, r, svc, logg, owner)
	}
}

type cartRemoveItemRequest struct {
	ItemID uuid.UUID `json:"itemId" validate:"required"`
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartRemoveItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ItemID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "itemId is required"))
			return
		}

		if err := svc.RemoveItem(r.Context(), owner, body.ItemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, r, svc, logg, owner)
	}
}

// CartSync folds the anonymous cart named by X-Cart-Token into the
// authenticated user's cart. Requires auth; missing token is a no-op merge.
func CartSync(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		token := r.Header.Get(cartTokenHeader)
		if token != "" {
			if err := svc.MergeAnonymousCart(r.Context(), token, userID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		writeCartView(w, r, svc, logg, cartsvc.UserOwner(userID))
	}
}

func writeCartView(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger, owner cartsvc.Owner) {
	view, err := svc.GetCart(r.Context(), owner)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}
