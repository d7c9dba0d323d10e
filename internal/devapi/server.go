// Package devapi is a small in-memory stand-in for the warehouse backend. It
// serves the list, batch-delete, edit and create endpoints stockroom uses so
// the client can be developed and tested without the real service.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/resource"
)

// BasePath is where the API is mounted, matching the default api.base_url.
const BasePath = "/api"

// Server holds the fixture collections.
type Server struct {
	token string
	csrf  string

	mu       sync.Mutex
	colls    map[string]*collection
	failNext map[string]int
}

type collection struct {
	name      string
	idField   string
	wrap      string // non-empty: list is {"<wrap>": [...]}
	needsCSRF bool
	records   []map[string]any
	nextID    int
}

// New returns a server seeded with fixture data that accepts token.
func New(token string) *Server {
	s := &Server{
		token:    token,
		csrf:     uuid.NewString(),
		colls:    make(map[string]*collection),
		failNext: make(map[string]int),
	}
	s.add(&collection{name: resource.NameInventory, idField: "inventory_id", needsCSRF: true}, seedInventory())
	s.add(&collection{name: resource.NameUsers, idField: "user_id"}, seedUsers())
	s.add(&collection{name: resource.NameTasks, idField: "manufacturing_task_id"}, seedTasks())
	s.add(&collection{name: resource.NameOrders, idField: "order_id", wrap: "results"}, seedOrders())
	return s
}

func (s *Server) add(c *collection, records []map[string]any) {
	c.records = records
	for _, r := range records {
		if id := intValue(r[c.idField]); id >= c.nextID {
			c.nextID = id + 1
		}
	}
	s.colls[c.name] = c
}

// CSRF returns the token the batch-delete endpoints expect.
func (s *Server) CSRF() string { return s.csrf }

// Len returns the number of records in the named collection.
func (s *Server) Len(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colls[name]; ok {
		return len(c.records)
	}
	return 0
}

// FailNext makes the next request touching the named collection fail with
// status.
func (s *Server) FailNext(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[name] = status
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	api := r.Group(BasePath)
	api.Use(s.authenticate())
	api.GET("/csrf/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrfToken": s.csrf})
	})
	for name := range s.colls {
		g := api.Group("/"+name, s.injectFailure(name))
		g.GET("/", s.list(name))
		g.POST("/", s.create(name))
		g.POST("/batch-delete/", s.batchDelete(name))
		g.PATCH("/:id/", s.update(name))
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info("devapi listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("devapi request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) != s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

func (s *Server) injectFailure(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status, ok := s.failNext[name]
		delete(s.failNext, name)
		s.mu.Unlock()
		if ok {
			c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
			return
		}
		c.Next()
	}
}
