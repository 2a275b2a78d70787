package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-arena/brackets"
	"github.com/Dosada05/tournament-arena/config"
	"github.com/Dosada05/tournament-arena/db"
	"github.com/Dosada05/tournament-arena/handlers"
	"github.com/Dosada05/tournament-arena/repositories"
	"github.com/Dosada05/tournament-arena/routes"
	"github.com/Dosada05/tournament-arena/services"
	"github.com/Dosada05/tournament-arena/storage"
	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "arena",
		Usage: "tournament bracket server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run migrations and start the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func migrate(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	dbConn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	return db.Migrate(c.Context, dbConn, logger)
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn, logger); err != nil {
		return err
	}

	fileAdmins, err := config.LoadAdminFile(cfg.AdminPolicyFile)
	if err != nil {
		return err
	}
	admins := services.NewStaticAdminPolicy(cfg.AdminUserIDs, fileAdmins)
	logger.Info("admin policy loaded", slog.Int("admins", admins.Len()))

	// Хранилище изображений (Cloudflare R2) необязательно.
	var uploader storage.FileUploader = storage.DisabledUploader{}
	r2Cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage is not configured; badge images are disabled")
	}

	// WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	metrics := services.NewMetrics()

	// Репозитории
	tx := repositories.NewSQLTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	badgeRepo := repositories.NewPostgresBadgeRepository(dbConn)

	// Сервисы
	staff := services.NewStaffGate(tournamentRepo, admins)
	roster := services.NewRosterService(tournamentRepo, userRepo, logger)
	rewards := services.NewRewardService(badgeRepo, tournamentRepo, metrics, logger)

	authService := services.NewAuthService(userRepo, admins)
	tournamentService := services.NewTournamentService(tournamentRepo, userRepo, badgeRepo, staff, logger)
	badgeService := services.NewBadgeService(badgeRepo, uploader, admins, staff, logger)
	bracketService := services.NewBracketService(services.BracketServiceDeps{
		Tx:             tx,
		BracketRepo:    bracketRepo,
		TournamentRepo: tournamentRepo,
		Roster:         roster,
		Generator:      brackets.NewSingleEliminationGenerator(brackets.NewRandomSeeding(nil)),
		Staff:          staff,
		Events:         wsHub,
		Metrics:        metrics,
		Logger:         logger,
	})
	matchService := services.NewMatchService(services.MatchServiceDeps{
		Tx:             tx,
		BracketRepo:    bracketRepo,
		TournamentRepo: tournamentRepo,
		Staff:          staff,
		Rewards:        rewards,
		Events:         wsHub,
		Metrics:        metrics,
		Logger:         logger,
	})
	logger.Info("services initialized")

	reconciler := services.NewRewardReconciler(tournamentRepo, bracketRepo, rewards,
		cfg.RewardReconcileInterval, cfg.RewardReconcileWindow, metrics, logger)
	if err := reconciler.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := reconciler.Stop(); err != nil {
			logger.Error("failed to stop reward reconciler", slog.Any("error", err))
		}
	}()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Registry:       metrics.Registry,
	}, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Bracket:    handlers.NewBracketHandler(bracketService, matchService),
		Badge:      handlers.NewBadgeHandler(badgeService),
		User:       handlers.NewUserHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, bracketService, cfg.CORSAllowedOrigins),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
