package http

import "github.com/gin-gonic/gin"

// Register attaches the upload and listing routes to the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/projects", h.list)
}
