package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/handler"
	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/pkg/logger"
	"github.com/GoPolymarket/econgate/internal/repository"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/GoPolymarket/econgate/internal/stream"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Initialize Persistence
	// Redis > Memory for idempotency and usage
	var idempotencyStore middleware.IdempotencyStore
	var usageRepo service.UsageRepo
	var auditRepo service.AuditRepo
	var redisClient *repository.RedisClient
	idemTTL := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient, idemTTL)
			usageRepo = redisClient
			auditRepo = repository.NewRedisAuditRepo(redisClient, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax)
		} else {
			logger.Error("Failed to connect to Redis, falling back to memory", "error", err)
			redisClient = nil
		}
	}

	// Postgres > Redis > file-only for audit; Postgres > memory for rejections
	var rejectionRepo service.RejectionRepo
	var cleanupTargets []repository.CleanupTarget
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(rootCtx, cfg.Database)
		if err == nil {
			logger.Info("Connected to PostgreSQL")
			pgAudit := repository.NewPostgresAuditRepo(db)
			auditRepo = pgAudit
			cleanupTargets = append(cleanupTargets, repository.CleanupTarget{
				Name: "audit_logs", Store: pgAudit, Retention: days(cfg.Database.AuditRetentionDays),
			})
			if idempotencyStore == nil {
				pgIdem := repository.NewPostgresIdempotencyStore(db)
				idempotencyStore = pgIdem
				cleanupTargets = append(cleanupTargets, repository.CleanupTarget{
					Name:      "idempotency_keys",
					Store:     pgIdem,
					Retention: time.Duration(cfg.Database.IdempotencyRetentionHours) * time.Hour,
				})
			}
			if gdb, err := repository.NewGormDB(db); err != nil {
				logger.Error("Failed to open gorm, rejections kept in memory", "error", err)
			} else if repo, err := repository.NewGormRejectionRepo(gdb); err != nil {
				logger.Error("Failed to migrate rejections, kept in memory", "error", err)
			} else {
				rejectionRepo = repo
				cleanupTargets = append(cleanupTargets, repository.CleanupTarget{
					Name: "contract_rejections", Store: repo, Retention: days(cfg.Database.RejectionRetentionDays),
				})
			}
			defer db.Close()
		} else {
			logger.Error("Failed to connect to DB, falling back", "error", err)
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore(idemTTL)
	}
	if usageRepo == nil {
		usageRepo = repository.NewMemoryUsageRepo()
	}
	if rejectionRepo == nil {
		mem := repository.NewMemoryRejectionRepo(1000)
		rejectionRepo = mem
		cleanupTargets = append(cleanupTargets, repository.CleanupTarget{
			Name: "contract_rejections", Store: mem, Retention: days(cfg.Database.RejectionRetentionDays),
		})
	}
	go repository.RunCleanup(rootCtx, time.Duration(cfg.Database.CleanupIntervalMinutes)*time.Minute, cleanupTargets...)

	// 4. Initialize Core Services
	hub := stream.NewHub(stream.Config{
		BufferSize:   cfg.Stream.BufferSize,
		WriteTimeout: time.Duration(cfg.Stream.WriteTimeoutMs) * time.Millisecond,
		PingPeriod:   time.Duration(cfg.Stream.PingIntervalSeconds) * time.Second,
	})

	auditSvc, err := service.NewAuditService(cfg.Server.AuditDir, auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	contractSvc := service.NewContractService(model.Contracts(), service.ContractOptions{
		DisallowUnknownFields: cfg.Contracts.DisallowUnknownFields,
		SchemaPrecheck:        cfg.Contracts.SchemaPrecheck,
	}).
		WithRejections(rejectionRepo).
		WithUsage(usageRepo).
		WithPublisher(hub)

	// 5. Setup Router
	r := handler.NewRouter(handler.RouterDeps{
		Config:      cfg,
		Contracts:   contractSvc,
		Audit:       auditSvc,
		Hub:         hub,
		Idempotency: idempotencyStore,
		Limiter:     middleware.NewClientLimiter(cfg.Rate.QPS, cfg.Rate.Burst),
	})

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("econgate started", "port", cfg.Server.Port, "contracts", len(contractSvc.Catalog()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop()
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	auditSvc.Close()
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exiting")
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
