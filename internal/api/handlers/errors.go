package handlers

import (
	"net/http"

	"apiary-api-server/internal/apperr"

	"github.com/gin-gonic/gin"
)

// StatusFor maps an error kind to the HTTP status the REST endpoints answer with.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "code": apperr.KindOf(err).String()}
	var ae *apperr.Error
	if apperr.As(err, &ae) && ae.Field != "" {
		body["field"] = ae.Field
	}
	c.AbortWithStatusJSON(StatusFor(err), body)
}
