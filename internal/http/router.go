// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge/internal/http/handlers"
	"concierge/internal/http/middleware"
	"concierge/internal/infra"
	"concierge/internal/service"
)

type RouterDeps struct {
	Concierge *service.Concierge
	// Verifier enables bearer auth on /api routes; nil leaves them open.
	Verifier       infra.TokenVerifier
	Logger         *zap.Logger
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
}

func NewRouter(d RouterDeps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(
		middleware.NewRateLimiter(d.RatePerSecond, d.RateBurst).Middleware(logger),
		middleware.Auth(d.Verifier),
	)

	chat := handlers.NewChatHandler(d.Concierge, d.RequestTimeout)
	api.POST("/threads", chat.CreateThread)
	api.GET("/threads/:id", chat.GetThread)
	api.GET("/threads/:id/history", chat.History)
	api.DELETE("/threads/:id", chat.DeleteThread)
	api.POST("/threads/:id/messages", chat.PostMessage)
	api.POST("/chat", chat.Chat)

	return r
}
