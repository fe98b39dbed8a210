package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeywatch/console/internal/config"
	"github.com/honeywatch/console/internal/router"
)

// Server is the local HTTP API.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	logger *slog.Logger

	engine *gin.Engine
	hub    *Hub

	httpServer *http.Server
	addr       net.Addr

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the server and registers its routes.
func New(cfg config.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		engine: gin.New(),
		hub:    NewHub(logger),
	}

	s.engine.Use(gin.Recovery(), requestLogger(logger), cors())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.getHealth)

	api := s.engine.Group("/api")
	api.GET("/assets", s.getAssets)
	api.GET("/assets/:id", s.getAsset)
	api.GET("/status", s.getStatus)
	api.GET("/events", s.getEvents)
	api.GET("/version", s.getVersion)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the live relay.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Attach relays every envelope dispatched by r to WebSocket clients.
func (s *Server) Attach(r *router.Router) (unsubscribe func()) {
	return s.hub.Attach(r)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr()

	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("http server started", "addr", s.addr.String())
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop gracefully shuts down.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("http server stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// cors allows the dashboard dev server on localhost to call the API.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if isLocalOrigin(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
