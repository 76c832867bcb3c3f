package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefeed/feed-service/internal/source"
)

var healthSource source.Source

// InitHealth wires the product source into the health check
func InitHealth(src source.Source) {
	healthSource = src
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if healthSource != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := healthSource.Product(ctx, 0); err != nil {
			response.Source = "unreachable"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Source = "reachable"
	} else {
		response.Source = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
