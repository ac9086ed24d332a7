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

	"agentdeck/internal/auth"
	"agentdeck/internal/config"
	"agentdeck/internal/events"
	"agentdeck/internal/handler"
	"agentdeck/internal/middleware"
	"agentdeck/internal/repository/postgres"
	serviceOrg "agentdeck/internal/service/organization"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"batch_mode", cfg.BatchMode,
	)

	// Without a JWKS endpoint every request is served as anonymous
	var verifier auth.TokenVerifier
	if cfg.SupabaseJWKSURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwksVerifier.Close()
		verifier = jwksVerifier
	} else {
		logger.Warn("SUPABASE_URL not set, all requests are anonymous")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected", "folders_table", tables.Folders, "agents_table", tables.Agents)

	publisher, err := events.Connect(ctx, cfg.RedisURL, cfg.EventsStream, logger)
	if err != nil {
		log.Fatalf("Failed to connect event publisher: %v", err)
	}
	defer publisher.Close()

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	agentRepo := postgres.NewAgentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	batchService := serviceOrg.NewBatchService(folderRepo, agentRepo, txManager, publisher, cfg.BatchMode, cfg.BatchConcurrency, logger)
	treeService := serviceOrg.NewTreeService(folderRepo, agentRepo, logger)
	moveService := serviceOrg.NewMoveService(folderRepo, agentRepo, batchService, logger)
	folderService := serviceOrg.NewFolderService(folderRepo, txManager, publisher, logger)
	recycleBinService := serviceOrg.NewRecycleBinService(folderRepo, agentRepo, txManager, publisher, logger)

	// Handlers
	orgHandler := handler.NewOrganizationHandler(treeService, moveService, folderService, recycleBinService, logger)
	batchHandler := handler.NewBatchHandler(batchService, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, orgHandler, batchHandler)

	// Order: CORS → RequestID → Recovery → Auth → Routes
	var h http.Handler = middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.OptionalAuth(verifier, logger),
	)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
