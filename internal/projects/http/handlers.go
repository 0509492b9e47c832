package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/internal/multipart"
	"github.com/vincentvila/portfolio-backend/internal/projects/service"
	"github.com/vincentvila/portfolio-backend/internal/store"
)

type Handler struct {
	svc    *service.UploadService
	limits multipart.Limits
	log    *zap.Logger
}

func NewHandler(svc *service.UploadService, limits multipart.Limits, log *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		limits: limits,
		log:    log,
	}
}

func (h *Handler) upload(c *gin.Context) {
	boundary, err := multipart.ExtractBoundary(c.GetHeader("Content-Type"))
	if err != nil {
		h.log.Warn("upload rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing multipart boundary in Content-Type"})
		return
	}

	form, err := multipart.Decode(c.Request.Body, boundary, h.limits)
	if err != nil {
		h.log.Warn("multipart decode failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	project, err := h.svc.Upload(c.Request.Context(), form)
	if err != nil {
		h.fail(c, err, "upload failed")
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success: true,
		Message: fmt.Sprintf("%d file(s) uploaded successfully", len(form.Files)),
		Project: project,
	})
}

func (h *Handler) list(c *gin.Context) {
	index, err := h.svc.Listing(c.Request.Context())
	if err != nil {
		h.fail(c, err, "listing failed")
		return
	}
	c.JSON(http.StatusOK, index)
}

// fail maps orchestrator errors onto the taxonomy: client input 400,
// upstream content-store failures 502, everything else 500.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	var remoteErr *store.RemoteError
	switch {
	case errors.Is(err, service.ErrNoFiles):
		h.log.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &remoteErr):
		h.log.Error(msg, zap.Int("upstream_status", remoteErr.Status), zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		h.log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
