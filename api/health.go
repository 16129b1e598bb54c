package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health check: verifies the database connection and reports basic
// runtime configuration
// (GET /api/health)
func (impl *ServerImpl) GetHealth(c *gin.Context) {
	const op = "GetHealth"
	var one int
	if result := impl.db.Raw("SELECT 1").Scan(&one); result.Error != nil {
		slog.Error("Health check failed", slog.String("op", op), slog.Any("error", fmt.Errorf("[%s] Fail to ping database, err=%w", op, result.Error)))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database is not reachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"message":     "Server is running and database is connected",
		"uploadDir":   impl.config.Media.Dir,
		"corsOrigins": impl.config.HTTP.CORSOrigins,
	})
}
