package paymentmethods

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/australsoft/comercia/internal/platform/httpx"
	"github.com/australsoft/comercia/internal/shared"
)

// Handler wires HTTP endpoints for payment methods.
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

// MountRoutes registers payment method routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/payment-methods", h.list)
	r.Post("/payment-methods", h.create)
	r.Patch("/payment-methods/{id}", h.update)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return
	}

	var req CreatePaymentMethodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	method, err := h.service.Create(r.Context(), businessID, req)
	if err != nil {
		h.logger.Error("create payment method failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, method)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return
	}

	var (
		methods []PaymentMethod
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		methods, err = h.service.ListActive(r.Context(), businessID)
	} else {
		methods, err = h.service.List(r.Context(), businessID)
	}
	if err != nil {
		h.logger.Error("list payment methods failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": methods})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing business scope")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment method id")
		return
	}

	var req UpdatePaymentMethodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	method, err := h.service.Update(r.Context(), businessID, id, req)
	if err != nil {
		h.logger.Error("update payment method failed", "error", err, "method_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, method)
}
