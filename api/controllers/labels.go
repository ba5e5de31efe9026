package controllers

import (
	"net/http"

	"github.com/mwhitaker/stockroom/api/responses"
	"github.com/mwhitaker/stockroom/internal/export"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

// ListLabelRows returns the flat feed the label renderer consumes.
func ListLabelRows(st *store.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts, err := st.PartsReceived(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, export.LabelRows(parts))
	}
}
