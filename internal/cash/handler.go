package cash

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/australsoft/comercia/internal/platform/httpx"
	"github.com/australsoft/comercia/internal/shared"
)

// Handler wires HTTP endpoints for the cash register.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers cash routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cash/current", h.current)
	r.Post("/cash/open", h.open)
	r.Post("/cash/close", h.close)
	r.Post("/cash/movements", h.recordMovement)
	r.Get("/cash/sessions", h.history)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (businessID, actorID uuid.UUID, ok bool) {
	businessID, ok = shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return uuid.Nil, uuid.Nil, false
	}
	actorID, ok = shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing actor")
		return uuid.Nil, uuid.Nil, false
	}
	return businessID, actorID, true
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	businessID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	session, err := h.service.Open(r.Context(), businessID, actorID, req)
	if err != nil {
		h.logger.Error("open cash session failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	businessID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req CloseSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	view, err := h.service.Close(r.Context(), businessID, actorID, req)
	if err != nil {
		h.logger.Error("close cash session failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request) {
	businessID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req RecordMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	movement, err := h.service.RecordMovement(r.Context(), businessID, actorID, req)
	if err != nil {
		h.logger.Error("record cash movement failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return
	}

	view, err := h.service.GetCurrent(r.Context(), businessID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	items, total, err := h.service.History(r.Context(), businessID, page, perPage)
	if err != nil {
		h.logger.Error("list cash sessions failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}
