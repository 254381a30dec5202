// Package fakepuush is an in-memory stand-in for the puush API, used by
// tests and for local development without a real account.
package fakepuush

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ochronus/gopuush/internal/config"
	"github.com/sirupsen/logrus"
)

// Server represents the fake puush HTTP server
type Server struct {
	config  config.FakeServerConfig
	handler *Handler
	logger  *logrus.Logger
	router  *gin.Engine
	store   *Store
	srv     *http.Server
	addr    chan string
}

// NewServer creates a new fake server backed by store
func NewServer(cfg config.FakeServerConfig, store *Store, logger *logrus.Logger) *Server {
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	handler := NewHandler(store, logger)

	api := router.Group("/api")
	api.POST("/auth", handler.Auth)
	api.POST("/up", handler.Upload)
	api.POST("/del", handler.Delete)
	api.POST("/thumb", handler.Thumbnail)
	api.POST("/hist", handler.History)
	router.GET("/p/:id", handler.View)

	return &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
		router:  router,
		store:   store,
		addr:    make(chan string, 1),
	}
}

// Start starts the server with a background context.
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server and shuts down gracefully when the context is canceled.
func (s *Server) StartWithContext(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.logger.Infof("Fake puush API listening at http://%s/api/", ln.Addr())
	s.addr <- ln.Addr().String()

	s.srv = &http.Server{
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr blocks until the server is listening and returns its address.
func (s *Server) Addr() string {
	addr := <-s.addr
	s.addr <- addr
	return addr
}

// Store returns the backing store
func (s *Server) Store() *Store {
	return s.store
}

// GetRouter returns the underlying gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
		}).Info("fake puush request")
	}
}
