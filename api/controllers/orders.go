package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mwhitaker/stockroom/api/responses"
	"github.com/mwhitaker/stockroom/api/validators"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/db/models"
	pkgerrors "github.com/mwhitaker/stockroom/pkg/errors"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

// ListOrders returns order headers, newest first.
func ListOrders(st *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := st.Orders(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type orderDetail struct {
	Order     *models.Order     `json:"order"`
	LineItems []models.LineItem `json:"line_items"`
}

// GetOrder returns one order header with its line items.
func GetOrder(st *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderUID := strings.TrimSpace(chi.URLParam(r, "orderUID"))
		if orderUID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order uid required"))
			return
		}

		order, items, err := st.OrderByUID(r.Context(), orderUID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderDetail{Order: order, LineItems: items})
	}
}
