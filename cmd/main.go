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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/mavrick-auth/config"
	"github.com/oksasatya/mavrick-auth/internal/container"
	"github.com/oksasatya/mavrick-auth/internal/infrastructure/audit"
	pginfra "github.com/oksasatya/mavrick-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/mavrick-auth/internal/router"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	if cfg.JWTSecret == "your-secret-key" {
		if cfg.Env == "production" {
			log.Fatal("JWT_SECRET must be set in production")
		}
		logger.Warn("JWT_SECRET is the development default; do not use it outside local runs")
	}

	ctx := context.Background()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTTL))

	// Postgres (STORE_DRIVER=postgres)
	if cfg.StoreDriver == "postgres" {
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
	}

	// Redis: OTP store (OTP_DRIVER=redis) and rate limiting
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
			if cfg.OTPDriver == "redis" {
				log.Fatalf("failed to connect to redis: %v", err)
			}
			logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
		} else {
			container.SetRedis(rdb)
		}
	} else if cfg.OTPDriver == "redis" {
		log.Fatal("OTP_DRIVER=redis requires REDIS_ADDR")
	}

	// RabbitMQ: reset code emails are queued for cmd/email_worker
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; reset codes will only be logged")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	// Elasticsearch audit index
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; audit index disabled")
		} else {
			if err := helpers.EnsureESIndex(ctx, es, cfg.ESAuditIndex, audit.IndexMapping); err != nil {
				logger.WithError(err).Warn("elasticsearch audit index not ready")
			}
			container.SetES(es)
		}
	}

	r := router.NewEngine(cfg)
	reg := router.NewRegistry(r, "/api")
	deps := router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(ctxShutdown)
	if cerr := deps.Close(ctxShutdown); cerr != nil {
		logger.Warnf("audit flush incomplete: %v", cerr)
	}
	if err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}
