// controllers/reminder.go
package controllers

import (
	"washcenter-backend/gateway"
	"washcenter-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReminderController struct {
	Gateway *gateway.Gateway
}

// GetReminderLogs lists sent and failed reminder messages, newest first
func (rc *ReminderController) GetReminderLogs(c *gin.Context) {
	utils.Respond(c, rc.Gateway.ReminderLogs(c.Request.Context(), utils.CallerFrom(c)))
}
