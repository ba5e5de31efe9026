package controllers

import (
	"net/http"

	"github.com/mwhitaker/stockroom/api/responses"
	"github.com/mwhitaker/stockroom/api/validators"
	"github.com/mwhitaker/stockroom/internal/reconcile"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

// ReceiveStock records a manual receipt of parts that arrived outside a
// parsed receipt.
func ReceiveStock(svc *reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input reconcile.ReceiveInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.ReceiveStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, part)
	}
}

// RemoveStock logs pulling parts for a project.
func RemoveStock(svc *reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input reconcile.RemoveInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.RemoveStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// RecentIngests lists the latest registered receipt files.
func RecentIngests(reg *registry.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := reg.Recent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
