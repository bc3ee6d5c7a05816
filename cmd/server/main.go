package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"derender-backend/internal/config"
	"derender-backend/internal/database"
	"derender-backend/internal/gemini"
	"derender-backend/internal/handlers"
	"derender-backend/internal/middleware"
	"derender-backend/internal/services"
	"derender-backend/internal/supabase"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Gemini client. Without a key the derender endpoint reports a
	// configuration error per request; sync still works.
	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. Derender requests will fail until it is configured.")
	} else {
		geminiClient, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
	}

	// Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Database client for session and generation records
	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Records will not be persisted and sync endpoints will not work.")
	} else {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	}

	var syncService *services.SyncService
	if dbClient != nil {
		syncService = services.NewSyncService(storageClient, dbClient, cfg.GeminiModel)
	}

	// Interface-typed handler deps must stay nil when the clients are
	// unavailable, not hold nil concrete pointers.
	var generationStore handlers.GenerationStore
	if dbClient != nil {
		generationStore = dbClient
	}
	var derenderer handlers.Derenderer
	if geminiClient != nil {
		derenderer = geminiClient
	}
	var syncer handlers.SessionSyncer
	if syncService != nil {
		syncer = syncService
	}

	derenderHandler := handlers.NewDerenderHandler(derenderer, storageClient, generationStore, realtimeClient)
	syncHandler := handlers.NewSyncHandler(syncer, cfg.SyncSecret, realtimeClient)

	router := gin.Default()
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes; bearer auth only when a JWT secret is configured
	api := router.Group("/api/v1")
	if cfg.SupabaseJWTSecret != "" {
		api.Use(middleware.AuthMiddleware(cfg))
	}
	api.POST("/derender", derenderHandler.Derender)

	// Sync endpoints sit outside the JWT group; the sweep carries its own
	// shared secret in the request body.
	router.POST("/api/v1/sessions/sync", syncHandler.Sync)
	router.GET("/api/v1/sessions/sync/status", syncHandler.SyncStatus)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
