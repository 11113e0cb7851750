package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the update journal.
type HistoryHandler struct {
	*Handlers
}

// HistoryHandler returns the history routes backed by h.
func (h *Handlers) HistoryHandler() *HistoryHandler {
	return &HistoryHandler{Handlers: h}
}

// RegisterRoutes registers history routes.
func (hh *HistoryHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:domain", hh.History)
}

// History lists journaled updates for a domain, newest first
// GET /history/:domain?limit=n
func (hh *HistoryHandler) History(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := hh.Resolver.History(c.Request.Context(), c.Param("domain"), limit)
	if err != nil {
		hh.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"domain": c.Param("domain"), "entries": entries})
}
