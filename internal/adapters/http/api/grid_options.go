package api

import (
	"net/http"

	"github.com/okian/medalgrid/internal/grid"
)

// GridOptionsHandler serves the grid configuration to browser front-ends.
type GridOptionsHandler struct {
	options grid.GridOptions
}

// NewGridOptionsHandler builds the handler. No values hook is attached: with
// server filter values on, the front-end fetches them from /setFilterValues.
func NewGridOptionsHandler(opts grid.Options) *GridOptionsHandler {
	return &GridOptionsHandler{options: grid.NewGridOptions(opts, nil)}
}

// HandleGridOptions handles GET /gridOptions requests.
func (h *GridOptionsHandler) HandleGridOptions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, "api.grid_options", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.options)
}
