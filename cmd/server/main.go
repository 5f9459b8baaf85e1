package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/config"
	"github.com/Dias221467/Threads_Backend/internal/database"
	"github.com/Dias221467/Threads_Backend/internal/handlers"
	"github.com/Dias221467/Threads_Backend/internal/jobs"
	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/Dias221467/Threads_Backend/internal/notifier"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	cron "github.com/Dias221467/Threads_Backend/internal/scheduler"
	"github.com/Dias221467/Threads_Backend/internal/services"
	"github.com/Dias221467/Threads_Backend/internal/session"
	"github.com/Dias221467/Threads_Backend/pkg/email"
	"github.com/Dias221467/Threads_Backend/pkg/logger"
	"github.com/Dias221467/Threads_Backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	idxCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db, cfg.MongoTransactions)
	sessionRepo := repository.NewSessionRepository(db)

	// --- Email ---
	sender := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword, cfg.SMTPTimeout)
	mailer := notifier.NewEmailNotifier(sender, cfg.BaseURL)

	// --- Services ---
	issuer := session.NewIssuer(cfg.JWTSecret, cfg.TokenExpiry, cfg.CookieSecure, sessionRepo)
	userService := services.NewUserService(userRepo, mailer)
	profileService := services.NewProfileService(userRepo)
	followService := services.NewFollowService(userRepo, followRepo)

	// --- Handlers ---
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	handlers.Router{
		Users:     handlers.NewUserHandler(userService, issuer),
		Profiles:  handlers.NewProfileHandler(profileService),
		Follows:   handlers.NewFollowHandler(followService),
		Auth:      issuer,
		AuthLimit: middleware.RateLimitByIP(cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.TrustProxyHeaders),
	}.RegisterRoutes(router)

	router.HandleFunc("/healthz", handlers.HealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// --- Background jobs ---
	var reconciler *jobs.FollowReconciler
	if !cfg.MongoTransactions {
		reconciler = jobs.NewFollowReconciler(followRepo, jobs.DefaultFollowGrace)
	}
	scheduler, err := cron.StartMaintenanceCronJobs(reconciler, jobs.NewPurger(userRepo, sessionRepo, cfg.UnverifiedTTL))
	if err != nil {
		logger.Log.Fatalf("Failed to schedule jobs: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down")
	<-scheduler.Stop().Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}
