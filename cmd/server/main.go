package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgo/setlist/api/internal/config"
	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/handler"
	"github.com/forgo/setlist/api/internal/identity"
	"github.com/forgo/setlist/api/internal/middleware"
	"github.com/forgo/setlist/api/internal/repository"
	"github.com/forgo/setlist/api/internal/service"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (overrides CONFIG_PATH)")
	flag.Parse()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Open the document store
	ctx := context.Background()
	store, err := database.Open(ctx, cfg.Database.StoreConfig())
	if err != nil {
		slog.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	slog.Info("store ready", slog.String("driver", cfg.Database.Driver))

	// Initialize repositories
	bandRepo := repository.NewBandRepository(store)
	concertRepo := repository.NewConcertRepository(store)
	userRepo := repository.NewUserRepository(store)
	stateRepo := repository.NewOAuthStateRepository(store)

	// Initialize services
	engine := service.NewIntegrityEngine(service.IntegrityEngineConfig{
		BandRepo:    bandRepo,
		ConcertRepo: concertRepo,
		UserRepo:    userRepo,
	})
	bandService := service.NewBandService(service.BandServiceConfig{
		BandRepo: bandRepo,
		Engine:   engine,
	})
	concertService := service.NewConcertService(service.ConcertServiceConfig{
		ConcertRepo: concertRepo,
		BandRepo:    bandRepo,
		Engine:      engine,
	})
	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo: userRepo,
		Engine:   engine,
	})

	handlers := handler.Handlers{
		Bands:    handler.NewBandHandler(bandService),
		Concerts: handler.NewConcertHandler(concertService),
		Users:    handler.NewUserHandler(userService),
		Health:   handler.NewHealthHandler(store),
	}

	// Identity provider; without one, logins are unavailable and every
	// protected route answers 401
	var verifier middleware.TokenVerifier = identity.Disabled{}
	if cfg.Identity.IsConfigured() {
		relyingParty, err := identity.NewRelyingParty(ctx, identity.Config{
			Issuer:       cfg.Identity.Issuer,
			ClientID:     cfg.Identity.ClientID,
			ClientSecret: cfg.Identity.ClientSecret,
			RedirectURL:  cfg.Identity.RedirectURL,
			Scopes:       cfg.Identity.Scopes,
		})
		if err != nil {
			slog.Error("failed to initialize identity provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		verifier = relyingParty

		oauthService := service.NewOAuthService(service.OAuthServiceConfig{
			Flow:        relyingParty,
			StateRepo:   stateRepo,
			UserService: userService,
			StateTTL:    cfg.Identity.StateTTL,
		})
		handlers.OAuth = handler.NewOAuthHandler(oauthService)

		slog.Info("identity provider ready", slog.String("issuer", cfg.Identity.Issuer))
	} else {
		slog.Warn("no identity provider configured; login is disabled")
	}

	// Routes
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	handler.RegisterRoutes(mux, handlers)

	// Apply global middleware; Logger sits innermost so it sees the
	// matched route pattern
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Recovery,
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:  cfg.RateLimit.Enabled,
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}),
		middleware.Identity(verifier),
		middleware.Logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
