package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/fkhayef/ensamble/docs"
	"github.com/fkhayef/ensamble/internal/company"
	"github.com/fkhayef/ensamble/internal/config"
	"github.com/fkhayef/ensamble/internal/database"
	"github.com/fkhayef/ensamble/internal/directory"
	"github.com/fkhayef/ensamble/internal/metrics"
	"github.com/fkhayef/ensamble/internal/objectstore"
	"github.com/fkhayef/ensamble/internal/project"
	"github.com/fkhayef/ensamble/internal/session"
	"github.com/fkhayef/ensamble/pkg/log"
	mw "github.com/fkhayef/ensamble/pkg/middleware"
)

// @title           Ensamble API
// @version         1.0
// @description     Draft and commit flows for founding theater companies and launching productions.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Sugar().Fatalw("invalid configuration", "error", err)
	}

	logger, err := log.New(&log.Conf{
		Output: cfg.Log.Output,
		Path:   cfg.Log.Path,
		Level:  cfg.Log.Level,
	})
	if err != nil {
		zap.NewExample().Sugar().Fatalw("failed to build logger", "error", err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	logger.Info("Connected to database successfully")

	objects, err := newObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatalw("Failed to create object store", "driver", cfg.Storage.Driver, "error", err)
	}

	recorder := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Draft sessions
	companyDrafts := session.NewStore[company.Draft](cfg.DraftTTL)
	projectDrafts := session.NewStore[project.Draft](cfg.DraftTTL)
	sweep := max(cfg.DraftTTL/4, time.Second)
	go companyDrafts.Janitor(ctx, sweep)
	go projectDrafts.Janitor(ctx, sweep)

	// Directory feature
	directoryRepo := directory.NewRepository(db)
	directoryService := directory.NewService(directoryRepo, logger, recorder)
	directoryHandler := directory.NewHandler(directoryService)

	// Company feature
	companyRepo := company.NewRepository(db)
	companyService := company.NewService(companyRepo, objects, cfg.AppOrigin, logger, recorder)
	companyHandler := company.NewHandler(companyDrafts, companyService, directoryService, recorder, logger)

	// Project feature
	projectRepo := project.NewRepository(db)
	projectService := project.NewService(projectRepo, objects, logger, recorder)
	projectHandler := project.NewHandler(projectDrafts, projectService, directoryService, recorder, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", recorder.Handler())

	docs.SwaggerInfo.BasePath = "/api/v1"
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.DevAuth {
			logger.Warn("DEV_AUTH enabled: identities are taken from X-Test-User-ID")
			r.Use(mw.TestUserMiddleware)
		} else {
			r.Use(mw.Auth(cfg.JWTSecret))
		}

		// Mount feature routers
		r.Mount("/profiles", directoryHandler.Routes())
		r.Mount("/companies", companyHandler.Routes())
		r.Mount("/projects", projectHandler.Routes())
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("Server starting", "port", cfg.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server failed to start", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server shutdown failed", "error", err)
	}
}

func newObjectStore(cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.Driver {
	case "minio":
		return objectstore.NewMinioStore(objectstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseTLS:    cfg.MinioUseTLS,
			PublicURL: cfg.MinioPublicURL,
		})
	default:
		return objectstore.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey), nil
	}
}
