// Package server wraps gin into a generic, self-installing API server
// with health checking, pprof and graceful close.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/internal/pkg/middleware"
	"github.com/mentatproj/mentat/pkg/logger"
)

// GenericAPIServer is the HTTP half of the api server: a gin engine plus
// the generic routes every binary gets for free.
type GenericAPIServer struct {
	*gin.Engine

	address      string
	healthz      bool
	enablePprof  bool
	middlewares  []string
	readTimeout  time.Duration
	writeTimeout time.Duration

	insecureServer *http.Server
}

func initGenericAPIServer(s *GenericAPIServer) {
	s.Setup()
	s.InstallMiddlewares()
	s.InstallAPIs()
}

// Setup wires gin debug output into our logger.
func (s *GenericAPIServer) Setup() {
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, _ int) {
		logger.Debug("%-6s %-s --> %s", httpMethod, absolutePath, handlerName)
	}
}

// InstallMiddlewares installs the generic middleware chain.
func (s *GenericAPIServer) InstallMiddlewares() {
	s.Use(gin.Recovery())
	s.Use(middleware.RequestID())
	s.Use(middleware.AccessLogger())

	for _, m := range s.middlewares {
		mw, ok := middleware.Middlewares[m]
		if !ok {
			logger.Warn("can not find middleware: %s", m)
			continue
		}
		logger.Info("install middleware: %s", m)
		s.Use(mw)
	}
}

// InstallAPIs installs the generic routes (healthz, pprof).
func (s *GenericAPIServer) InstallAPIs() {
	if s.healthz {
		s.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	if s.enablePprof {
		pprof.Register(s.Engine)
	}
}

// Run spawns the HTTP server and blocks until it exits.
func (s *GenericAPIServer) Run() error {
	s.insecureServer = &http.Server{
		Addr:         s.address,
		Handler:      s,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	logger.Info("start to listening the incoming requests on http address: %s", s.address)

	if err := s.insecureServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server on %s stopped", s.address)

	return nil
}

// Close gracefully shuts the HTTP server down.
func (s *GenericAPIServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.insecureServer == nil {
		return
	}
	if err := s.insecureServer.Shutdown(ctx); err != nil {
		logger.Warn("shutdown insecure server failed: %s", err.Error())
	}
}
