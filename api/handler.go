package api

import (
	"log"
	"net/http"

	"github.com/KYEONGBINKEUM/todo-sub001/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	aiService services.AIService
	db        *gorm.DB
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(aiService services.AIService, db *gorm.DB) *APIHandler {
	return &APIHandler{
		aiService: aiService,
		db:        db,
	}
}

// HealthHandler reports liveness, including whether the database is
// reachable.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		log.Printf("ERROR: [API] Health check failed, database unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
