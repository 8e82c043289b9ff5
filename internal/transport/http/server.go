// Package httpapi provides the HTTP surface of the settlement core: the
// order/fund API, the admin triggers, health, and metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fundcore/internal/engine"
	"fundcore/internal/logger"
	"fundcore/internal/metrics"
	"fundcore/internal/store"
)

// timeNow is swapped by tests.
var timeNow = time.Now

type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(addr string, st store.Store, eng *engine.Service) (*Server, error) {
	if st == nil || eng == nil {
		return nil, errors.New("http server requires a store and an engine")
	}
	if addr == "" {
		addr = ":9983"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := NewRouter(st, eng)
	api.Register(router.Group("/api/v1"))

	return &Server{addr: addr, router: router}, nil
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
