package api

import (
	"log"
	"net/http"

	"github.com/KYEONGBINKEUM/todo-sub001/middleware"
	"github.com/KYEONGBINKEUM/todo-sub001/models"
	"github.com/KYEONGBINKEUM/todo-sub001/utils"

	"github.com/gin-gonic/gin"
)

// ProcessAIHandler is the single entry point for AI requests. The Auth
// middleware has already verified the caller; everything else (plan,
// quota, enrichment, model call, billing) happens in the service.
func (h *APIHandler) ProcessAIHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req models.AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	log.Printf("INFO: [API] AI request from userID %s: action=%s, language=%s", userID, req.Action, req.Language)

	resp, aiErr := h.aiService.Process(c.Request.Context(), userID, req)
	if aiErr != nil {
		// aiErr.Message is caller-safe; the underlying cause was
		// already logged in the service.
		c.AbortWithStatusJSON(aiErr.HTTPStatus(), gin.H{
			"error": aiErr.Message,
			"code":  string(aiErr.Code),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AIUsageHandler returns the caller's current-month token consumption
// and plan limit.
func (h *APIHandler) AIUsageHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	usage, aiErr := h.aiService.Usage(userID)
	if aiErr != nil {
		c.AbortWithStatusJSON(aiErr.HTTPStatus(), gin.H{
			"error": aiErr.Message,
			"code":  string(aiErr.Code),
		})
		return
	}

	c.JSON(http.StatusOK, usage)
}
