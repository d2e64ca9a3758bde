package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/australsoft/comercia/internal/app"
	"github.com/australsoft/comercia/internal/cash"
	"github.com/australsoft/comercia/internal/catalog/clients"
	"github.com/australsoft/comercia/internal/catalog/paymentmethods"
	"github.com/australsoft/comercia/internal/catalog/products"
	"github.com/australsoft/comercia/internal/documents"
	"github.com/australsoft/comercia/internal/fiscal"
	"github.com/australsoft/comercia/internal/platform/cache"
	"github.com/australsoft/comercia/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, payment method cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var authorizer fiscal.Authorizer
	switch cfg.FiscalMode {
	case "arca":
		authorizer = fiscal.NewArcaClient(cfg.FiscalBaseURL, cfg.FiscalToken, cfg.FiscalTimeout)
	default:
		logger.Info("fiscal authority in static mode")
		authorizer = fiscal.NewStaticAuthorizer()
	}

	productService := products.NewService(products.NewRepository(pool))
	productHandler := products.NewHandler(logger, productService)

	clientService := clients.NewService(clients.NewRepository(pool))
	clientHandler := clients.NewHandler(logger, clientService)

	methodCache := paymentmethods.NewCache(redisClient, cfg.PaymentMethodCacheTTL)
	methodService := paymentmethods.NewService(paymentmethods.NewRepository(pool), methodCache)
	methodHandler := paymentmethods.NewHandler(logger, methodService)

	documentService := documents.NewService(documents.NewRepository(pool), authorizer)
	documentHandler := documents.NewHandler(logger, documentService)

	cashService := cash.NewService(cash.NewRepository(pool))
	cashHandler := cash.NewHandler(logger, cashService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		ProductHandler:       productHandler,
		ClientHandler:        clientHandler,
		PaymentMethodHandler: methodHandler,
		DocumentHandler:      documentHandler,
		CashHandler:          cashHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
