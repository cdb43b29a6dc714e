package server

import (
	"net/http"

	licensedomain "github.com/firsttechlabs/simpleinvoice-be/internal/license/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Get License
// @Description  Get the tenant's current plan and validity
// @Tags         license
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  licensedomain.License
// @Router       /license [get]
func (s *Server) GetLicense(c *gin.Context) {
	resp, err := s.licenseSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Redeem Promo Code
// @Description  Redeem a promo code for licensed time
// @Tags         license
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body licensedomain.RedeemRequest true "Redeem Request"
// @Success      200  {object}  licensedomain.License
// @Router       /license/redeem [post]
func (s *Server) RedeemPromoCode(c *gin.Context) {
	var req licensedomain.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.licenseSvc.Redeem(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "license.redeem", "license", resp.TenantID.String(), map[string]any{
		"plan": resp.Plan,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
