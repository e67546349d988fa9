package handlers

import (
	"net/http"

	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/apperr"

	"github.com/gin-gonic/gin"
)

// PhotoFormField is the multipart field carrying the image.
const PhotoFormField = "foto"

type PhotoHandler struct {
	Service *apiary.Service
}

// Upload handles PUT /colmenas/:id/foto.
func (h *PhotoHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile(PhotoFormField)
	if err != nil {
		respondError(c, apperr.Invalid("colmena", PhotoFormField, "multipart field \"foto\" is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperr.Invalid("colmena", PhotoFormField, "cannot read uploaded file"))
		return
	}
	defer file.Close()

	hive, err := h.Service.SetHivePhoto(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": hive.ID.Hex(), "fotoUrl": hive.PhotoURL})
}

// Delete handles DELETE /colmenas/:id/foto.
func (h *PhotoHandler) Delete(c *gin.Context) {
	hive, err := h.Service.DeleteHivePhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": hive.ID.Hex(), "fotoUrl": nil})
}
