package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docindex/internal/config"
	"docindex/internal/database"
	"docindex/internal/database/migration"
	"docindex/internal/embeddings"
	handlers "docindex/internal/http/handler"
	"docindex/internal/http/middleware"
	"docindex/internal/otel"
	"docindex/internal/repository/postgres"
	"docindex/internal/search"
	"docindex/internal/semantic"
	"docindex/internal/service"
	"docindex/internal/storage"
	"docindex/internal/vectordb"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Content archive is optional; the metadata store stays canonical without it.
	var archive storage.Storage
	if cfg.MinIO.Endpoint != "" {
		archive, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	// Vector retrieval is optional; without it semantic search reports an error
	// instead of returning empty results.
	var retriever semantic.Retriever
	var indexer semantic.Indexer
	if cfg.Vector.OpenAIAPIKey != "" {
		embedder := embeddings.NewOpenAIEmbedder(cfg.Vector.OpenAIAPIKey, embeddings.OpenAIModel(cfg.Vector.EmbeddingModel))
		store, err := vectordb.NewChromemStore(embedder, cfg.Vector.PersistPath)
		if err != nil {
			log.Fatalf("failed to initialize vector store: %v", err)
		}
		retriever = store
		indexer = store
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(docRepo, archive, indexer, cfg.Catalog)
	searchSvc := service.NewSearchService(search.NewEngine(docRepo), retriever)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Register global middleware
	app.Use(fiberrecover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.UserContext())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.New(db, docSvc, searchSvc).RegisterRoutes(app)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
