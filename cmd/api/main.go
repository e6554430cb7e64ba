package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/config"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/analytics"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/auth"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/catalog"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/checkout"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/purchase"
	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/database"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/discord"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/imaging"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/jwt"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/logger"
	pkgresponse "github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting HamsterHub API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	files, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	// ---------- Discord ----------
	discordClient := discord.NewClient(discord.Config{
		BaseURL:      cfg.DiscordAPIBaseURL,
		BotToken:     cfg.DiscordBotToken,
		GuildID:      cfg.DiscordGuildID,
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURL,
		Timeout:      time.Duration(cfg.DiscordTimeoutSeconds) * time.Second,
	})
	roles := discord.NewRoleCache(discordClient, redis, cfg.RoleCacheTTL)
	oracle := discord.NewOracle(roles, cfg.DiscordAdminRoleID)

	// ---------- Repositories ----------
	balanceRepo := balance.NewRepository(db, cfg.StartingBalance)
	catalogRepo := catalog.NewRepository(db)
	purchaseRepo := purchase.NewRepository(db)
	analyticsRepo := analytics.NewRepository(db)

	// ---------- Services ----------
	balanceService := balance.NewService(balanceRepo)
	ledger := checkout.NewSQLLedger(db, balanceRepo, purchaseRepo, catalogRepo)
	checkoutService := checkout.NewService(catalogRepo, oracle, purchaseRepo, balanceRepo, ledger)
	analyticsService := analytics.NewService(analyticsRepo, redis, cfg.ReportCacheTTL)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(discordClient, jwtService, balanceRepo, oracle)
	balanceHandler := balance.NewHandler(balanceService, oracle)
	catalogHandler := catalog.NewHandler(catalogRepo, oracle, files, imaging.NewProcessor(imaging.DefaultConfig()))
	checkoutHandler := checkout.NewHandler(checkoutService)
	purchaseHandler := purchase.NewHandler(purchaseRepo, files)
	analyticsHandler := analytics.NewHandler(analyticsService, oracle)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Mount("/auth", authHandler.Routes(authMiddleware))

	r.Route("/shop", func(r chi.Router) {
		r.Mount("/items", catalogHandler.Routes())
		r.Mount("/checkout", checkoutHandler.Routes(authMiddleware))
		r.Mount("/purchases", purchaseHandler.Routes(authMiddleware))
		r.Mount("/orders", purchaseHandler.OrderRoutes(authMiddleware))
		r.Mount("/balance", balanceHandler.Routes(authMiddleware))
		r.Mount("/analytics", analyticsHandler.Routes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/items", catalogHandler.AdminRoutes(authMiddleware))
			r.Mount("/balance", balanceHandler.AdminRoutes(authMiddleware))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newStorage picks S3-compatible object storage when credentials are set,
// local disk otherwise.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		return storage.NewS3Storage(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewLocalStorage(cfg.LocalDir, "/files")
}
