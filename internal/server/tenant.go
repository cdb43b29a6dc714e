package server

import (
	"net/http"

	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Get Profile
// @Description  Get the authenticated tenant's profile
// @Tags         tenant
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /me [get]
func (s *Server) GetProfile(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

// @Summary      Update Profile
// @Description  Update display name, company name or address
// @Tags         tenant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body tenantdomain.UpdateProfileRequest true "Update Profile Request"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /me [patch]
func (s *Server) UpdateProfile(c *gin.Context) {
	var req tenantdomain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.tenantSvc.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "tenant.update_profile", "tenant", tenant.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

// @Summary      Update Password
// @Description  Change the account password
// @Tags         tenant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body tenantdomain.UpdatePasswordRequest true "Update Password Request"
// @Success      200  {object}  map[string]string
// @Router       /me/password [put]
func (s *Server) UpdatePassword(c *gin.Context) {
	var req tenantdomain.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.tenantSvc.UpdatePassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "tenant.update_password", "tenant", "", nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Get Settings
// @Description  Get invoice numbering and tax settings
// @Tags         tenant
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tenantdomain.TenantSettings
// @Router       /settings [get]
func (s *Server) GetSettings(c *gin.Context) {
	settings, err := s.tenantSvc.GetSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// @Summary      Update Settings
// @Description  Update invoice prefix, default tax rate or currency
// @Tags         tenant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body tenantdomain.UpdateSettingsRequest true "Update Settings Request"
// @Success      200  {object}  tenantdomain.TenantSettings
// @Router       /settings [patch]
func (s *Server) UpdateSettings(c *gin.Context) {
	var req tenantdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.tenantSvc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "tenant.update_settings", "tenant_settings", settings.TenantID.String(), map[string]any{
		"invoice_prefix": settings.InvoicePrefix,
		"currency":       settings.Currency,
	})
	c.JSON(http.StatusOK, gin.H{"data": settings})
}
