package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/config"
	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/delivery"
	"github.com/vandien284/scenta-sub000/internal/mailer"
	"github.com/vandien284/scenta-sub000/internal/repository"
	"github.com/vandien284/scenta-sub000/internal/usecase"
)

const (
	productsDocument      = "products"
	cartsDocument         = "carts"
	ordersDocument        = "orders"
	verificationsDocument = "verifications"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting storefront core service...")

	stores, err := buildStores(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize blob stores: %v", err)
	}

	// --- Dependency Injection ---
	productRepo := repository.NewBlobProductRepository(stores[productsDocument], logger)
	cartRepo := repository.NewBlobCartRepository(stores[cartsDocument], logger)
	orderRepo := repository.NewBlobOrderRepository(stores[ordersDocument], logger)
	verificationRepo := repository.NewBlobVerificationRepository(stores[verificationsDocument], logger)
	logger.Info("Repositories initialized.")

	codeMailer := mailer.NewLogMailer(logger)

	checkoutUseCase := usecase.NewCheckoutUseCase(productRepo, cartRepo, orderRepo, verificationRepo, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, logger)
	verificationUseCase := usecase.NewVerificationUseCase(verificationRepo, codeMailer, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, productRepo, logger)
	logger.Info("Use cases initialized.")

	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	delivery.NewCheckoutHandler(checkoutUseCase, logger).RegisterRoutes(api)
	delivery.NewOrderHandler(orderUseCase, logger).RegisterRoutes(api)
	delivery.NewVerificationHandler(verificationUseCase, logger).RegisterRoutes(api)
	delivery.NewCartHandler(cartUseCase, logger).RegisterRoutes(api)
	delivery.NewProductHandler(productRepo, logger).RegisterRoutes(api)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}

// buildStores picks a blob backend from config and wraps every document in a
// short-lived snapshot cache.
func buildStores(cfg *config.Config, logger *logrus.Logger) (map[string]blob.Store, error) {
	names := []string{productsDocument, cartsDocument, ordersDocument, verificationsDocument}
	stores := make(map[string]blob.Store, len(names))

	switch {
	case cfg.DatabaseURL != "":
		db, err := blob.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := blob.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		logger.Info("Using Postgres blob backend.")
		for _, name := range names {
			stores[name] = blob.Cached(blob.NewPostgresStore(db, name), cfg.CacheTTL)
		}
	case cfg.BlobBaseURL != "":
		logger.Infof("Using HTTP blob backend at %s.", cfg.BlobBaseURL)
		for _, name := range names {
			stores[name] = blob.Cached(blob.NewHTTPStore(cfg.BlobBaseURL+"/"+name, logger), cfg.CacheTTL)
		}
	default:
		logger.Infof("Using file blob backend in %s.", cfg.BlobDir)
		for _, name := range names {
			stores[name] = blob.Cached(blob.NewFileStore(filepath.Join(cfg.BlobDir, name+".json")), cfg.CacheTTL)
		}
	}
	return stores, nil
}
