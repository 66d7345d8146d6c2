package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foundersnexus/cascade"
	"foundersnexus/chatid"
	"foundersnexus/config"
	"foundersnexus/database"
	"foundersnexus/handlers"
	"foundersnexus/integrity"
	"foundersnexus/logging"
	"foundersnexus/media"
	"foundersnexus/middleware"
	"foundersnexus/notify"
	"foundersnexus/relations"
	"foundersnexus/resolver"
	"foundersnexus/routes"
	"foundersnexus/store"
	"foundersnexus/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	log.Info(ctx, "starting FoundersNexus API", "port", cfg.Port)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	client, db, err := database.Connect(connectCtx, database.Config{URI: cfg.MongoURI, Name: cfg.MongoDatabase}, log)
	cancel()
	if err != nil {
		log.Error(ctx, "failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer database.Disconnect(client, log)

	s := store.NewMongoStore(db)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.EnsureIndexes(indexCtx, s)
	cancel()
	if err != nil {
		log.Error(ctx, "failed to create indexes", "error", err)
		os.Exit(1)
	}

	uploader, err := newUploader(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to configure file storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	var notifier notify.Sender = notify.Nop{}
	if cfg.PushEnabled() {
		notifier = notify.NewWebPush(s, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, log)
	} else {
		log.Warn(ctx, "VAPID keys not set, push notifications disabled")
	}

	var identity chatid.Registrar = chatid.Nop{}
	if cfg.ChatEnabled() {
		identity = chatid.NewClient(chatid.Config{BaseURL: cfg.ChatBaseURL, AppID: cfg.ChatAppID, APIKey: cfg.ChatAPIKey}, log)
	}

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize, 30*time.Second, log)
	defer pool.Shutdown()

	coordinator := cascade.New(cascade.Deps{
		Store:    s,
		Mutator:  relations.New(s, log),
		Uploader: uploader,
		Notifier: notifier,
		Identity: identity,
		Tasks:    pool,
		Log:      log,
	})

	var limiter middleware.Limiter = middleware.NewIPRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer rdb.Close()
		limiter = middleware.NewRedisRateLimiter(rdb, cfg.RateLimit, cfg.RateLimitWindow)
	}

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(handlers.Options{
		Cascade:        coordinator,
		Resolver:       resolver.New(s, log),
		Checker:        integrity.New(s, log),
		Store:          s,
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		VAPIDPublicKey: cfg.VAPIDPublicKey,
	})
	router := routes.SetupRouter(h, routes.Config{
		CORSOrigins: cfg.CORSOrigins,
		JWTSecret:   cfg.JWTSecret,
		Limiter:     limiter,
		Log:         log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "forced shutdown", "error", err)
	}
	log.Info(ctx, "server stopped")
}

// newUploader picks the pitch deck storage backend. Without credentials the
// server still runs and deck uploads fail with an upload error.
func newUploader(ctx context.Context, cfg config.Config, log logging.Logger) (media.Uploader, error) {
	switch cfg.StorageBackend {
	case "s3":
		return media.NewS3Uploader(ctx, media.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, log)
	default:
		if cfg.CloudinaryURL == "" {
			log.Warn(ctx, "CLOUDINARY_URL not set, pitch deck uploads disabled")
			return nil, nil
		}
		return media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryFolder, log)
	}
}
