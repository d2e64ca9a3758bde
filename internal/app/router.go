package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/australsoft/comercia/internal/cash"
	"github.com/australsoft/comercia/internal/catalog/clients"
	"github.com/australsoft/comercia/internal/catalog/paymentmethods"
	"github.com/australsoft/comercia/internal/catalog/products"
	"github.com/australsoft/comercia/internal/documents"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ProductHandler       *products.Handler
	ClientHandler        *clients.Handler
	PaymentMethodHandler *paymentmethods.Handler
	DocumentHandler      *documents.Handler
	CashHandler          *cash.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.ProductHandler.MountRoutes(r)
		params.ClientHandler.MountRoutes(r)
		params.PaymentMethodHandler.MountRoutes(r)
		params.DocumentHandler.MountRoutes(r)
		params.CashHandler.MountRoutes(r)
	})

	return r
}
