package api

import (
	"net/http"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/internal/domain/rowmodel"
	"github.com/okian/medalgrid/pkg/logger"
)

// Ack statuses.
const (
	statusUpdated = "updated"
	statusDeleted = "deleted"
)

// RecordsHandler serves record mutations.
type RecordsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies, l logger.Logger) *RecordsHandler {
	return &RecordsHandler{deps: deps, logger: l}
}

// HandleCreate handles POST /create requests. Any id in the body is ignored.
func (h *RecordsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var rec model.Record
	if err := decodeJSON(w, r, op, &rec); err != nil {
		fail(r.Context(), w, h.logger, err)
		return
	}
	rec.ID = 0
	created, err := h.deps.Create(r.Context(), rec)
	if err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, nil, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate handles POST /update requests.
func (h *RecordsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var req rowmodel.UpdateRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		fail(r.Context(), w, h.logger, err)
		return
	}
	if req.ID <= 0 {
		fail(r.Context(), w, h.logger, NewKind(op, ErrBadRequest))
		return
	}
	if _, err := h.deps.Update(r.Context(), req.ID, req.UpdateData); err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, nil, err))
		return
	}
	writeJSON(w, http.StatusOK, rowmodel.Ack{Status: statusUpdated, ID: req.ID})
}

// HandleDelete handles POST /delete requests.
func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var req rowmodel.DeleteRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		fail(r.Context(), w, h.logger, err)
		return
	}
	if req.ID <= 0 {
		fail(r.Context(), w, h.logger, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.Delete(r.Context(), req.ID); err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, nil, err))
		return
	}
	writeJSON(w, http.StatusOK, rowmodel.Ack{Status: statusDeleted, ID: req.ID})
}
