package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cobrato/cobrato/internal/orgcontext"
)

// RunDunning triggers a full dispatch run across every organization in good
// standing. The scheduler drives this daily; the endpoint exists for manual
// re-runs, which are safe because the history ledger makes the batch
// idempotent per calendar day.
func (s *Server) RunDunning(c *gin.Context) {
	summary, err := s.dunningSvc.RunAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// RunDunningForOrganization triggers a dispatch run for the tenant carried
// in the request context.
func (s *Server) RunDunningForOrganization(c *gin.Context) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok || orgID == 0 {
		AbortWithError(c, newValidationError("organization", "invalid_organization", "invalid organization"))
		return
	}

	summary, err := s.dunningSvc.RunForOrganization(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
