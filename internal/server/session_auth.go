package server

import (
	"strings"

	obscontext "github.com/firsttechlabs/simpleinvoice-be/internal/observability/context"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

// SessionRequired authenticates requests with a bearer session token.
// Tenant identity is derived solely from the sessions table; clients
// can never name a tenant directly.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authSvc.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := tenantcontext.WithTenantID(c.Request.Context(), identity.TenantID)
		ctx = tenantcontext.WithSessionID(ctx, identity.SessionID)
		ctx = obscontext.WithTenantID(ctx, identity.TenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
