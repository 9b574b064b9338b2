package controllers

import (
	"context"
	"net/http"

	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// CatalogLister is the read-only slice of the catalog repo the storefront needs.
type CatalogLister interface {
	ListActivePacks(ctx context.Context) ([]models.Pack, error)
	ListActiveServices(ctx context.Context) ([]models.ServiceAddon, error)
}

func CatalogPacks(repo CatalogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		packs, err := repo.ListActivePacks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list packs"))
			return
		}
		responses.WriteSuccess(w, packs)
	}
}

func CatalogServices(repo CatalogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		services, err := repo.ListActiveServices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services"))
			return
		}
		responses.WriteSuccess(w, services)
	}
}
