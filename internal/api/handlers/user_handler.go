package handlers

import (
	"net/http"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/auth"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes the identity the Identify middleware resolved.
type UserHandler struct{}

// Me returns the caller's user id and email, or 401 for anonymous requests.
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		respondError(c, apperr.Unauthorized("no valid bearer token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": id.UserID,
		"email":  id.Email,
	})
}
