package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mwhitaker/stockroom/api/responses"
	"github.com/mwhitaker/stockroom/api/validators"
	"github.com/mwhitaker/stockroom/internal/store"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// ListInventory returns the on-hand snapshot, optionally filtered by a text
// query (q) and vendor.
func ListInventory(st *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := st.SearchInventory(r.Context(), store.InventoryFilter{
			Query:  r.URL.Query().Get("q"),
			Vendor: r.URL.Query().Get("vendor"),
			Limit:  limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetInventoryPart returns one snapshot row by part key.
func GetInventoryPart(st *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partKey := strings.TrimSpace(chi.URLParam(r, "partKey"))
		if partKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "part key required"))
			return
		}

		row, err := st.InventoryByPartKey(r.Context(), partKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
