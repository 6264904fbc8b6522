package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
)

// writeError maps service errors onto HTTP responses. Stock conflicts get
// 409 so the storefront can tell "fix your cart" apart from "bad request".
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}

	var shortage *domain.InsufficientStockError
	if errors.As(err, &shortage) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"product_id": shortage.ProductID,
			"name":       shortage.Name,
			"size":       shortage.Size,
			"requested":  shortage.Requested,
			"available":  shortage.Available,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, service.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
	case errors.Is(err, service.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock changed concurrently, retry checkout"})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
