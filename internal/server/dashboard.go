package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// @Summary      Dashboard Summary
// @Description  Totals per status, outstanding and collected amounts
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboarddomain.Summary
// @Router       /dashboard/summary [get]
func (s *Server) GetDashboardSummary(c *gin.Context) {
	resp, err := s.dashboardSvc.GetSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Revenue Series
// @Description  Monthly collected revenue for the trailing period
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        months  query  int  false  "Months (default 12)"
// @Success      200  {object}  dashboarddomain.RevenueSeriesResponse
// @Router       /dashboard/revenue [get]
func (s *Server) GetRevenueSeries(c *gin.Context) {
	months := 0
	if raw := strings.TrimSpace(c.Query("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("months", "invalid_months", "invalid months"))
			return
		}
		months = parsed
	}

	resp, err := s.dashboardSvc.GetRevenueSeries(c.Request.Context(), months)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Recent Activity
// @Description  Latest invoice lifecycle events
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Limit (default 20)"
// @Success      200  {object}  dashboarddomain.ActivityResponse
// @Router       /dashboard/activity [get]
func (s *Server) ListActivity(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	resp, err := s.dashboardSvc.ListActivity(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
