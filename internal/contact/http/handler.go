package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vincentvila/portfolio-backend/internal/contact/service"
)

type Handler struct {
	mailer  *service.Mailer
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewHandler wires the contact relay. The limiter caps how fast the public
// form can burn through the outbound-mail quota.
func NewHandler(mailer *service.Mailer, log *zap.Logger) *Handler {
	return &Handler{
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		log:     log,
	}
}

type sendRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) send(c *gin.Context) {
	if !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	result, err := h.mailer.Send(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		h.log.Error("contact relay failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent successfully!",
		"data":    result,
	})
}

// Register attaches the contact route to the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/send-email", h.send)
}
