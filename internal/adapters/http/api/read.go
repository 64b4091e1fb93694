package api

import (
	"net/http"

	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
)

// ReadHandler serves the server-side row model reads.
type ReadHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewReadHandler creates a new read handler.
func NewReadHandler(deps Dependencies, l logger.Logger) *ReadHandler {
	return &ReadHandler{deps: deps, logger: l}
}

// HandleRead handles POST /read requests.
func (h *ReadHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	const op = "api.read"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var req rowmodel.ReadRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		fail(r.Context(), w, h.logger, err)
		return
	}
	resp, err := h.deps.Read(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, nil, err))
		return
	}
	if resp.Rows == nil {
		resp.Rows = []rowmodel.Row{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFilterValues handles POST /setFilterValues requests.
func (h *ReadHandler) HandleFilterValues(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_filter_values"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var req rowmodel.FilterValuesRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		fail(r.Context(), w, h.logger, err)
		return
	}
	values, err := h.deps.FilterValues(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, nil, err))
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, values)
}
