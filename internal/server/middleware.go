package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/cobrato/cobrato/internal/orgcontext"
)

const HeaderOrg = "X-Org-ID"

// OrgContext resolves the tenant from the X-Org-ID header and injects it
// into the request context. Every tenant-scoped route sits behind it.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, newValidationError("organization", "invalid_organization", "missing X-Org-ID header"))
			return
		}

		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID == 0 {
			AbortWithError(c, newValidationError("organization", "invalid_organization", "invalid organization"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
