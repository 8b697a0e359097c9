package utils

import "github.com/gin-gonic/gin"

// ApiResponse is the envelope every endpoint answers with.
type ApiResponse struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ApiResponse{
		Success: false,
		Status:  status,
		Message: message,
	})
}

func Respond(c *gin.Context, res ApiResponse) {
	c.JSON(res.Status, res)
}
