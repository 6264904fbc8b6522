package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout *service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// Checkout converts the submitted cart into a Sale. On failure the client
// keeps its cart as-is; it must clear it only after a 201 comes back.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sale, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}
