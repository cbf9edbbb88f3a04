package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"coursehub/internal/config"
	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
	"coursehub/internal/repository/postgres"
	postgresCourse "coursehub/internal/repository/postgres/course"
	serviceAuth "coursehub/internal/service/auth"
	serviceCourse "coursehub/internal/service/course"
	"coursehub/internal/service/course/converter"
	"coursehub/internal/service/course/converter/pdf"
	"coursehub/internal/service/upload"
	"coursehub/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed courses")
	clearData := flag.Bool("clear-data", false, "Clear all communities and courses (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData || !*schemaOnly) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables, --clear-data or seeding) in production environment")
	}

	// Setup logger
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	fixtures, err := loadFixtures(fixturesYAML)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Clear existing data; in clear-data mode that is all we do
	log.Println("⚠️  Clearing existing communities and courses...")
	if err := postgres.TruncateAll(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
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

	// Seeded rich text goes through the same conversion pipeline as the server.
	// Generated PDFs land in the local upload directory.
	store, err := storage.NewLocal(cfg.UploadDir, cfg.UploadPublicPath)
	if err != nil {
		log.Fatalf("Failed to open upload directory: %v", err)
	}
	policy, err := upload.LoadPolicy(cfg.UploadPolicyFile, nil)
	if err != nil {
		log.Fatalf("Failed to load upload policy: %v", err)
	}
	authorizer := serviceAuth.NewMembershipAuthorizer()
	uploadService := upload.NewService(store, policy, authorizer, logger)
	renderer := pdf.NewFPDFRenderer()
	defer renderer.Close()

	courseService := serviceCourse.NewCourseService(
		courseRepo,
		communityRepo,
		txManager,
		converter.NewConverter(renderer, uploadService, cfg.PDFRenderTimeout, logger),
		authorizer,
		logger,
	)

	created, failed := 0, 0
	for _, c := range fixtures.Communities {
		community := &courseModels.Community{ID: c.ID, Name: c.Name, Slug: c.Slug}
		if err := communityRepo.Create(ctx, community); err != nil {
			var conflict *domain.ConflictError
			if !errors.As(err, &conflict) {
				log.Fatalf("Failed to create community '%s': %v", c.Slug, err)
			}
		}
		log.Printf("🏘️  Community %s (ID: %s)", c.Name, community.ID)

		actor := &models.Actor{UserID: c.Instructor, CommunityID: community.ID, Role: "instructor"}
		for _, fc := range c.Courses {
			course, err := courseService.CreateCourse(ctx, actor, fc.request(community.ID))
			if err != nil {
				log.Printf("❌ Failed to create course '%s': %v", fc.Title, err)
				failed++
				continue
			}
			created++
			log.Printf("✅ Created course '%s' (ID: %s, order: %d, status: %s)",
				course.Title, course.ID, course.Order, course.Status)
		}
	}

	log.Printf("🎉 Seeding complete! %d courses created, %d failed", created, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
