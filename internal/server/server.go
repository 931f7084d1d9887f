// Package server wires the gin router and owns the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/config"
	"github.com/backmassage/fundusort/internal/handler"
)

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// New builds the router and server from the configured listen address.
func New(cfg *config.Config, h *handler.Handler, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	api := router.Group("/api")
	{
		api.POST("/batch_process", h.BatchProcess)
		api.GET("/status", h.Status)
	}

	return &Server{
		// No WriteTimeout: a batch over a large folder legitimately takes
		// minutes to answer.
		httpServer: &http.Server{
			Addr:           cfg.Server.Addr(),
			Handler:        router,
			ReadTimeout:    10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		log: log,
	}
}

// Run blocks serving requests until Shutdown is called or the listener
// fails. A clean shutdown returns nil.
func (s *Server) Run() error {
	s.log.Info("server listening", zap.String("address", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
