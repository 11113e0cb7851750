package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResolveHandler rewrites URLs with pinned addresses.
type ResolveHandler struct {
	*Handlers
}

// ResolveHandler returns the URL resolution routes backed by h.
func (h *Handlers) ResolveHandler() *ResolveHandler {
	return &ResolveHandler{Handlers: h}
}

// RegisterRoutes registers resolve-related routes.
func (r *ResolveHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/resolve", r.ResolveURL)
}

// ResolveURL replaces the domain of the url query parameter with its pinned address
// GET /resolve?url=...
func (r *ResolveHandler) ResolveURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url query parameter"})
		return
	}

	resolved, err := r.Resolver.ResolveURL(c.Request.Context(), url)
	if err != nil {
		r.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "resolved": resolved})
}
