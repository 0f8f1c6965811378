package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ship-swift-backend/internal/cache"
	"ship-swift-backend/internal/config"
	"ship-swift-backend/internal/handlers"
	"ship-swift-backend/internal/models"
	"ship-swift-backend/internal/repository"
	"ship-swift-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// Connect to database
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse database config")
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	pgRepo := repository.NewStore(db)
	store := services.NewPostgresStore(pgRepo)

	// Role cache is optional
	var roleCache services.RoleCache
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		roleCache = cache.NewRoleCache(rdb, cfg.Redis.RoleCacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Role cache enabled")
	}

	wsHub := services.NewWSHub()

	pushers := make(map[models.Platform]services.Pusher)
	if apns := cfg.Push.APNs; apns.KeyFile != "" {
		p, err := services.NewAPNsPusher(apns.KeyFile, apns.KeyID, apns.TeamID, apns.Topic, apns.Production)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs pusher")
		}
		pushers[models.PlatformIOS] = p
	}
	if fcm := cfg.Push.FCM; fcm.CredentialsFile != "" {
		p, err := services.NewFCMPusher(ctx, fcm.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create FCM pusher")
		}
		pushers[models.PlatformAndroid] = p
		pushers[models.PlatformWeb] = p
	}
	if len(pushers) == 0 {
		log.Warn().Msg("No push gateway configured, offline users get no notifications")
	}

	// Initialize services
	notifications := services.NewNotificationService(store, wsHub, pushers)
	authService := services.NewAuthService(cfg.JWT.Secret)
	roleService := services.NewRoleService(store, roleCache, cfg.Admin.UserIDs)
	jobService := services.NewJobService(store, roleService, notifications)
	requestService := services.NewRequestService(store, roleService, notifications)
	activeJobService := services.NewActiveJobService(store, notifications)
	deliveryService := services.NewDeliveryService(store, notifications)
	chatService := services.NewChatService(store, roleService, notifications, wsHub)
	reviewService := services.NewReviewService(store, roleService)
	locationService := services.NewLocationService(store,
		services.NewNominatimGeocoder(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent))

	var uploadService *services.UploadService
	if cfg.AWS.S3Bucket != "" {
		uploadService, err = services.NewUploadService(ctx, store, services.UploadConfig{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			Endpoint:        cfg.AWS.Endpoint,
			AccessKeyID:     cfg.AWS.AccessKey,
			SecretAccessKey: cfg.AWS.SecretKey,
			PresignTTL:      cfg.AWS.PresignTTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create upload service")
		}
	} else {
		log.Warn().Msg("No S3 bucket configured, proof uploads disabled")
	}

	var paymentService *services.PaymentService
	if cfg.Stripe.SecretKey != "" {
		paymentService = services.NewPaymentService(store,
			services.NewStripeCheckout(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
			cfg.Server.PublicURL, cfg.Stripe.Currency)
	} else {
		log.Warn().Msg("No Stripe key configured, payments disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Auth:          authService,
		Roles:         roleService,
		Jobs:          jobService,
		Requests:      requestService,
		ActiveJobs:    activeJobService,
		Deliveries:    deliveryService,
		Uploads:       uploadService,
		Chat:          chatService,
		Reviews:       reviewService,
		Locations:     locationService,
		Notifications: notifications,
		Payments:      paymentService,
		Hub:           wsHub,
		Ping:          pgRepo.Ping,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger. level was validated by config.Load.
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
