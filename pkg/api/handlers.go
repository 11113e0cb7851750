package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"hostspin/pkg/hosts"
	"hostspin/pkg/resolver"
	"hostspin/pkg/storage"
)

// Mapper is the part of resolver.Resolver the handlers use.
type Mapper interface {
	ResolveDomain(ctx context.Context, domain string) (string, error)
	UpdateMapping(ctx context.Context, domain, ip string) (hosts.Outcome, error)
	ResolveURL(ctx context.Context, url string) (string, error)
	History(ctx context.Context, domain string, limit int) ([]storage.Entry, error)
}

// Handlers holds dependencies for API handlers
type Handlers struct {
	Log      *slog.Logger
	Resolver Mapper
}

// NewHandlers creates new API Handlers
func NewHandlers(log *slog.Logger, resolver Mapper) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		Log:      log.With("module", "api"),
		Resolver: resolver,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handlers) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.logRequests)

	router.GET("/healthz", h.Health)

	h.MappingHandler().RegisterRoutes(router.Group("/mappings"))
	h.ResolveHandler().RegisterRoutes(router.Group("/"))
	h.HistoryHandler().RegisterRoutes(router.Group("/history"))

	return router
}

// Health reports that the server is up
// GET /healthz
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.Log.Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

// errorStatus maps the hosts error kinds to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, hosts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hosts.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, hosts.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resolver.ErrNoJournal):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
