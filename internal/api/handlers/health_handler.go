package handlers

import (
	"net/http"

	"apiary-api-server/internal/apiary"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Service *apiary.Service
}

// Live always answers ok; Ready also pings the store.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.Service.Ping(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
