package handler

import (
	"net/http"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/GoPolymarket/econgate/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Config      *config.Config
	Contracts   *service.ContractService
	Audit       *service.AuditService
	Hub         *stream.Hub
	Idempotency middleware.IdempotencyStore
	Limiter     *middleware.ClientLimiter
}

func NewRouter(d RouterDeps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(gin.Recovery())

	// ErrorHandler sits inside Audit so rendered errors reach the audit record
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(d.Audit))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "econgate",
			"contracts":   len(d.Contracts.Catalog()),
			"subscribers": d.Hub.Subscribers(),
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	contracts := NewContractHandler(d.Contracts)
	enums := NewEnumHandler(d.Contracts)
	events := NewEventHandler(d.Contracts, d.Hub)
	usage := NewUsageHandler(d.Contracts)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(d.Limiter))
	v1.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))
	v1.Use(middleware.IdempotencyMiddleware(d.Idempotency))
	{
		v1.GET("/contracts", contracts.List)
		v1.GET("/contracts/:name/schema", contracts.Schema)
		v1.POST("/contracts/:name/validate", contracts.Validate)
		v1.POST("/contracts/:name/normalize", contracts.Normalize)
		v1.POST("/contracts/:name/render", contracts.Render)

		v1.GET("/enums", enums.List)
		v1.GET("/enums/:name/:label", enums.Parse)

		v1.GET("/events/stream", events.Stream)
		v1.POST("/events/:name", events.Publish)

		v1.GET("/usage", usage.Get)
	}

	audit := NewAuditHandler(d.Audit)
	rejections := NewRejectionHandler(d.Contracts)

	admin := r.Group("/v1/admin")
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.GET("/audit", audit.List)
		admin.GET("/rejections", rejections.List)
	}

	return r
}
