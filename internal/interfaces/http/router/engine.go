package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"github.com/sellerpulse/backend/internal/interfaces/http/handler"
	"github.com/sellerpulse/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware stack
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string
}

// Handlers are the route targets of the engine
type Handlers struct {
	Analytics *handler.AnalyticsHandler
	System    *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack and all routes.
//
// Middleware order:
//  1. Tracing - server span around the whole request
//  2. RequestID - generate/propagate request ID
//  3. SpanEnricher - tag the span once the handler finished
//  4. Logger - access log with request and shop ids
//  5. Recovery - catch panics
//  6. BodyLimit - limit request body size
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodyLimit(maxBody))

	if h.System != nil {
		// health check lives outside API versioning
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if h.System != nil {
		r.Register(SystemRoutes(h.System))
	}
	if h.Analytics != nil {
		r.Register(ShopRoutes(h.Analytics))
	}
	r.Setup()

	return engine, nil
}

// ShopRoutes registers the per-shop analytics endpoints
func ShopRoutes(h *handler.AnalyticsHandler) *DomainGroup {
	shops := NewDomainGroup("shops", "/shops")
	shops.GET("/:id/product-analytics", h.GetProductAnalytics)
	shops.GET("/:id/product-analytics/export", h.ExportProductAnalytics)
	shops.POST("/:id/sync", h.TriggerSync)
	return shops
}

// SystemRoutes registers the system info endpoint
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").GET("/info", h.GetSystemInfo)
}
