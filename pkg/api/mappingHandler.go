package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hostspin/pkg/hosts"
)

// MappingHandler pins domains and reads pinned addresses.
type MappingHandler struct {
	*Handlers
}

type updateRequest struct {
	IP string `json:"ip"`
}

// MappingHandler returns the mapping routes backed by h.
func (h *Handlers) MappingHandler() *MappingHandler {
	return &MappingHandler{Handlers: h}
}

// RegisterRoutes registers mapping routes.
func (m *MappingHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:domain", m.GetMapping)
	group.PUT("/:domain", m.UpdateMapping)
}

// GetMapping returns the pinned address of a domain
// GET /mappings/:domain
func (m *MappingHandler) GetMapping(c *gin.Context) {
	domain := c.Param("domain")

	ip, err := m.Resolver.ResolveDomain(c.Request.Context(), domain)
	if err != nil {
		m.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"domain": domain, "ip": ip})
}

// UpdateMapping pins a domain to the address in the request body
// PUT /mappings/:domain
func (m *MappingHandler) UpdateMapping(c *gin.Context) {
	domain := c.Param("domain")

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := validation.Validate(domain, validation.Required); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain " + err.Error()})
		return
	}

	out, err := m.Resolver.UpdateMapping(c.Request.Context(), domain, req.IP)
	if err != nil {
		m.fail(c, err)
		return
	}

	status := http.StatusOK
	if out.Kind == hosts.Rejected {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, out)
}
