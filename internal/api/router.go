package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"door-alarm-backend/config"
	"door-alarm-backend/internal/mw"
	"door-alarm-backend/internal/pipeline"
	"door-alarm-backend/internal/store"
	"door-alarm-backend/internal/ws"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, p *pipeline.Pipeline, hub *ws.Hub, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, p, webpushOptions)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Live event feed; not rate limited, a dashboard holds one connection open.
	r.GET("/events", ws.Serve(hub))

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/status", caching, handler.GetStatus)
		api.GET("/statistics", caching, handler.GetStatistics)
		api.GET("/events", caching, handler.GetEvents)
		api.POST("/test-event", handler.PostTestEvent)

		api.GET("/settings/timer", handler.GetTimerSetting)
		api.PUT("/settings/timer", handler.PutTimerSetting)

		api.GET("/mail-config", handler.GetMailConfig)
		api.PUT("/mail-config", handler.PutMailConfig)

		api.POST("/login", handler.Login)
		api.GET("/users", handler.GetUsers)
		api.POST("/users", handler.CreateUser)
		api.GET("/users/:id", handler.GetUser)
		api.PUT("/users/:id", handler.UpdateUser)
		api.DELETE("/users/:id", handler.DeleteUser)

		api.GET("/report/csv", handler.GetReportCSV)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
