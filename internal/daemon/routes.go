package daemon

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/observability"
)

// AdminRouter builds the admin endpoint for a running server.
func (s *Server) AdminRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	if len(s.cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.CorsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     s.cfg.Name,
			"uptime":      time.Since(started).String(),
			"protocol":    handshake.MaxProtocolVersion,
			"min_version": handshake.MinProtocolVersion,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sessions": s.Sessions(),
		})
	})
	return r
}

// ServeAdmin runs the admin endpoint; it blocks like Serve does.
func (s *Server) ServeAdmin() error {
	if s.cfg.AdminAddr == "" {
		return nil
	}
	return s.AdminRouter().Run(s.cfg.AdminAddr)
}
