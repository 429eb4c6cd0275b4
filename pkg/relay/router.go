package relay

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"notification-hub/relay/pkg/config"
	"notification-hub/relay/pkg/logger"
	"notification-hub/relay/pkg/metrics"
)

const orderPath = "/order"

// NewRouter wires CORS, health, metrics and the order endpoint.
func NewRouter(cfg *config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic while serving %s: %v", c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errResp{Error: fmt.Sprint(recovered)})
	}))

	// Browsers post straight from the storefront page: echo the caller's origin.
	c := cors.DefaultConfig()
	c.AllowOriginFunc = func(origin string) bool { return true }
	c.AllowHeaders = []string{"Content-Type", "Authorization"}
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(c), wildcardOrigin)

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Every method reaches the handler so it can answer 405 itself. Any only
	// covers gin's fixed list, so extension methods come through NoRoute.
	r.Any(orderPath, h.Order)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.URL.Path == orderPath {
			h.Order(c)
			return
		}
		c.JSON(http.StatusNotFound, errResp{Error: "Not Found"})
	})
	return r
}

// wildcardOrigin covers requests without an Origin header, which the cors
// middleware leaves untouched.
func wildcardOrigin(c *gin.Context) {
	if c.GetHeader("Origin") == "" {
		c.Header("Access-Control-Allow-Origin", "*")
	}
	c.Next()
}
