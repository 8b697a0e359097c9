// controllers/dashboard.go
package controllers

import (
	"washcenter-backend/gateway"
	"washcenter-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Gateway *gateway.Gateway
}

// GetDashboardOverview returns booking counts and earnings
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	utils.Respond(c, dc.Gateway.Dashboard(c.Request.Context(), utils.CallerFrom(c)))
}
