package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coursehub/internal/auth"
	"coursehub/internal/config"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/handler"
	"coursehub/internal/middleware"
	"coursehub/internal/repository/postgres"
	postgresCourse "coursehub/internal/repository/postgres/course"
	serviceAuth "coursehub/internal/service/auth"
	serviceCourse "coursehub/internal/service/course"
	"coursehub/internal/service/course/converter"
	"coursehub/internal/service/course/converter/pdf"
	"coursehub/internal/service/upload"
	"coursehub/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage", cfg.StorageDriver,
		"pdf_renderer", cfg.PDFRenderer,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier
	jwtVerifier, err := auth.NewVerifier(cfg.JWKSURL, cfg.JWTSecret, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured")
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	courseRepo := postgresCourse.NewCourseRepository(repoConfig)
	communityRepo := postgresCourse.NewCommunityRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Object storage for uploads and generated PDFs
	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}

	policy, err := upload.LoadPolicy(cfg.UploadPolicyFile, map[courseModels.UploadKind]int64{
		courseModels.UploadKindVideo:     cfg.MaxVideoBytes,
		courseModels.UploadKindThumbnail: cfg.MaxThumbnailBytes,
		courseModels.UploadKindPDF:       cfg.MaxPDFBytes,
	})
	if err != nil {
		log.Fatalf("Failed to load upload policy: %v", err)
	}
	authorizer := serviceAuth.NewMembershipAuthorizer()
	uploadService := upload.NewService(store, policy, authorizer, logger)

	// PDF renderer
	renderer, err := pdf.New(cfg.PDFRenderer, pdf.ChromeOptions{
		ExecPath:    cfg.ChromePath,
		Concurrency: cfg.PDFRenderConcurrency,
		NoSandbox:   cfg.ChromeNoSandbox,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create PDF renderer: %v", err)
	}
	defer renderer.Close()

	if chrome, ok := renderer.(*pdf.ChromeRenderer); ok {
		// Fail fast on a missing browser rather than on the first publish
		startCtx, cancel := context.WithTimeout(ctx, cfg.PDFRenderTimeout)
		err := chrome.Start(startCtx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to start headless browser: %v", err)
		}
	}

	// Create services
	chapterConverter := converter.NewConverter(renderer, uploadService, cfg.PDFRenderTimeout, logger)
	courseService := serviceCourse.NewCourseService(
		courseRepo,
		communityRepo,
		txManager,
		chapterConverter,
		authorizer,
		logger,
	)

	// Create handlers
	courseHandler := handler.NewCourseHandler(courseService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)
	healthHandler := handler.NewHealthHandler(pool, renderer.Name(), store.Name(), logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Course routes
	mux.HandleFunc("POST /api/courses", courseHandler.CreateCourse)
	mux.HandleFunc("GET /api/courses", courseHandler.ListCourses)
	mux.HandleFunc("PATCH /api/courses/reorder", courseHandler.ReorderCourses) // More specific than {id}/publish
	mux.HandleFunc("GET /api/courses/{id}", courseHandler.GetCourse)
	mux.HandleFunc("PUT /api/courses/{id}", courseHandler.UpdateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", courseHandler.ArchiveCourse)
	mux.HandleFunc("PATCH /api/courses/{id}/publish", courseHandler.PublishCourse)
	mux.HandleFunc("POST /api/courses/{courseId}/enroll/{studentId}", courseHandler.EnrollStudent)
	mux.HandleFunc("POST /api/courses/{courseId}/rate", courseHandler.RateCourse)

	// Upload routes
	mux.HandleFunc("POST /api/upload/{kind}", uploadHandler.Upload)
	mux.HandleFunc("DELETE /api/upload/{filename}", uploadHandler.DeleteUpload)

	// Stored files
	mux.Handle("GET "+cfg.UploadPublicPath, http.StripPrefix(cfg.UploadPublicPath, store.Handler()))

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → AccessLog → Auth → Recovery → Routes
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.OptionalAuth(jwtVerifier, logger)(handler)
	handler = middleware.AccessLog(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // Disabled: video uploads and PDF conversion can run long
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// newObjectStore builds the configured storage backend
func newObjectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (courseSvc.ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicPath: cfg.UploadPublicPath,
		}, logger)
	case "", "local":
		return storage.NewLocal(cfg.UploadDir, cfg.UploadPublicPath)
	default:
		return nil, errors.New("STORAGE_DRIVER must be local or s3")
	}
}
