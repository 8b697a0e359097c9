// controllers/center.go
package controllers

import (
	"net/http"

	"washcenter-backend/gateway"
	"washcenter-backend/utils"

	"github.com/gin-gonic/gin"
)

type CenterController struct {
	Gateway *gateway.Gateway
}

// GetCenters lists centers, optionally filtered by ?q= and ordered by ?sort=
func (cc *CenterController) GetCenters(c *gin.Context) {
	var input gateway.ListCentersRequest
	if err := decodeQuery(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, cc.Gateway.ListCenters(c.Request.Context(), utils.CallerFrom(c), input))
}

func (cc *CenterController) GetCenter(c *gin.Context) {
	utils.Respond(c, cc.Gateway.GetCenter(c.Request.Context(), utils.CallerFrom(c), c.Param("id")))
}

func (cc *CenterController) CreateCenter(c *gin.Context) {
	var input gateway.CreateCenterRequest
	if err := decodeJSON(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, cc.Gateway.CreateCenter(c.Request.Context(), utils.CallerFrom(c), input))
}

// UpdateCenter applies a partial update; omitted fields keep their values.
func (cc *CenterController) UpdateCenter(c *gin.Context) {
	var input gateway.UpdateCenterRequest
	if err := decodeJSON(c, &input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	utils.Respond(c, cc.Gateway.UpdateCenter(c.Request.Context(), utils.CallerFrom(c), c.Param("id"), input))
}

func (cc *CenterController) DeleteCenter(c *gin.Context) {
	utils.Respond(c, cc.Gateway.RemoveCenter(c.Request.Context(), utils.CallerFrom(c), c.Param("id")))
}
