// Package api exposes the relay over HTTP: the websocket endpoint, the
// read-only history endpoint, health and metrics.
package api

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"chat-relay/ws"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
	registry   contract.IRegistry
	origins    ws.OriginPolicy
}

func NewServer(log *slog.Logger, repository repositories.IMessageRepository,
	registry contract.IRegistry, origins ws.OriginPolicy) *Server {
	return &Server{log: log, repository: repository, registry: registry, origins: origins}
}

// Router wires every route. realtime serves the websocket upgrade.
func (s *Server) Router(realtime http.Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.cors())

	r.GET("/ws", gin.WrapH(realtime))
	// Legacy clients open the socket on the root path.
	r.GET("/", upgradeOnly(realtime))
	r.GET("/messages", s.listMessages)
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return r
}

func upgradeOnly(realtime http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		realtime.ServeHTTP(c.Writer, c.Request)
	}
}

// listMessages returns the whole history, oldest first.
func (s *Server) listMessages(c *gin.Context) {
	messages, err := s.repository.RetrieveAll(c.Request.Context())
	if err != nil {
		s.log.Error("Read endpoint failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event.ToWireMessages(messages))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.registry.Count(),
	})
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.origins.Allows(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
