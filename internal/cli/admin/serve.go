package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/quercia-ai/docpilot/internal/api/handlers"
	"github.com/quercia-ai/docpilot/internal/assist"
	"github.com/quercia-ai/docpilot/internal/cache"
	"github.com/quercia-ai/docpilot/internal/config"
	"github.com/quercia-ai/docpilot/internal/database"
	"github.com/quercia-ai/docpilot/internal/openai"
	"github.com/quercia-ai/docpilot/internal/repository"
	"github.com/quercia-ai/docpilot/internal/server"
	"github.com/quercia-ai/docpilot/internal/service"
	"github.com/quercia-ai/docpilot/internal/splitter"
	"github.com/quercia-ai/docpilot/internal/storage"
	"github.com/quercia-ai/docpilot/internal/telemetry"
	"github.com/quercia-ai/docpilot/internal/websearch"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docpilot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sentryOn := false
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			sentryOn = true
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL must be set")
	}
	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
	})

	var rawStore service.RawStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		rawStore = s3Client
	}

	answerCache, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open answer cache: %w", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)
	index := service.NewIndex(chunkRepo, aiClient)
	registry := service.NewRegistry(index, service.DefaultSearchPolicy())
	synth := service.NewSynthesizer(aiClient)

	var assistant service.AssistantClient
	if cfg.HasAssistant() {
		assistant = assist.NewClient(cfg.AssistantURL, cfg.AssistantTimeout)
		log.Println("external assistant configured")
	}

	providers := []websearch.Provider{}
	if cfg.HasSerper() {
		providers = append(providers, websearch.NewSerper(cfg.SerperAPIKey, cfg.WebSearchTimeout))
	}
	providers = append(providers, websearch.NewDuckDuckGo(cfg.WebSearchTimeout))
	var web service.WebSearcher = websearch.NewEngine(providers...)

	controller := service.NewController(answerCache, registry, synth, assistant, web)
	ingestor := service.NewIngestor(index, registry, rawStore, splitter.Config{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})

	router := server.NewRouter(server.RouterConfig{
		AskHandler:   handlers.NewAskHandler(controller),
		FilesHandler: handlers.NewFilesHandler(ingestor),
		SentryOn:     sentryOn,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Printf("migrations applied (version: %d, dirty: %v)", version, dirty)
	return nil
}
